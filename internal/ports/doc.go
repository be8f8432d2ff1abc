// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the processing core and the outside
// world. They define what the pipeline needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Subscriber]: Delivers inbound envelopes from the bus
//   - [Publisher]: Publishes outbound envelopes to the bus
//   - [Bus]: A connected bus client that does both
//   - [EnvelopeCodec]: Decodes inbound and encodes outbound envelopes
//   - [RecordDecoder]: Turns a complete sentence into a typed record
//   - [Observer]: Receives per-delivery outcomes for metrics
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// clients (MQTT, NATS, Prometheus, zerolog).
package ports
