// Package aisdecoder provides an embeddable AIS decoding service.
//
// The service subscribes to a topic carrying raw NMEA sentences wrapped in
// JSON envelopes, reassembles multi-sentence messages, decodes them into
// typed records and publishes each record on {base}/{mmsi}/{msg_type}.
// It can be used through the aisdecoder CLI or embedded as a library.
//
// # Basic Usage
//
//	bus := mqtt.New(mqtt.Config{Host: "localhost", Port: 1883})
//
//	svc, err := aisdecoder.New(aisdecoder.Config{
//	    InputTopic:      "ais/raw",
//	    OutputBaseTopic: "ais/decoded",
//	}, aisdecoder.WithBus(bus))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := svc.Start(ctx); err != nil {
//	    log.Fatal(err) // wraps ErrConnection when the broker is unreachable
//	}
//	defer svc.Stop()
//
// # Bus
//
// Any [Bus] implementation can be injected with [WithBus]. The bus pushes
// deliveries into a bounded queue of [Config.QueueSize] entries and a
// single goroutine drains it, so the reassembly buffer has one writer.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for defaults) and
// pass it via [WithEventHandler] to observe state changes and publishes.
// Events are called synchronously from the processing goroutine.
//
// # Lifecycle States
//
// A Service can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use [Service.Status]
// to query the current state.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package aisdecoder
