package aisdecoder

import (
	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
	"github.com/bft-labs/aisdecoder/pkg/log"
	"github.com/bft-labs/aisdecoder/pkg/reassembly"
)

// Re-exported types so callers outside the module can implement the ports.
type (
	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// Bus is a connected publish/subscribe client.
	Bus = ports.Bus

	// Observer receives per-delivery pipeline events.
	Observer = ports.Observer

	// Delivery is one inbound message.
	Delivery = domain.Delivery

	// Outbound is one message to publish.
	Outbound = domain.Outbound

	// Outcome is the result of processing one delivery.
	Outcome = domain.Outcome
)

// Option configures optional behavior of a Service.
type Option func(*options)

// options holds the optional configuration for a Service.
type options struct {
	logger       Logger
	bus          Bus
	eventHandler EventHandler
	observer     Observer
	plugins      []Plugin
	reassembly   reassembly.Options
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBus sets the bus client. It is required.
func WithBus(bus Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithEventHandler sets a handler for service events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithObserver sets a pipeline observer such as the Prometheus metrics.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithPlugin registers a plugin to be initialized when the service starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithReassemblyOptions overrides the reassembly buffer options.
// MaxPending and MaxAge from Config apply when these leave them zero.
func WithReassemblyOptions(opts reassembly.Options) Option {
	return func(o *options) {
		o.reassembly = opts
	}
}
