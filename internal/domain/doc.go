// Package domain contains the core value types and errors for aisdecoder.
//
// This package is the innermost layer of the service. It has no
// dependencies on infrastructure concerns (bus clients, logging, metrics)
// and carries only the values that cross the port boundaries.
//
// # Values
//
//   - [Delivery]: one inbound message taken off the bus
//   - [Outbound]: one message ready to be published
//   - [Outcome]: the result of processing one delivery
package domain
