package ports

import (
	"context"

	"github.com/bft-labs/aisdecoder/internal/domain"
)

// Subscriber delivers inbound messages from the bus.
type Subscriber interface {
	// Subscribe starts delivering messages on topic into out.
	// Implementations must not block the bus client indefinitely when out
	// is full; they may drop and count the message instead.
	// Returns domain.ErrConnection (wrapped) if the subscription fails.
	Subscribe(ctx context.Context, topic string, out chan<- domain.Delivery) error
}

// Publisher publishes outbound messages to the bus.
type Publisher interface {
	// Publish sends msg and waits until the bus accepts it or ctx expires.
	// Failures wrap domain.ErrPublish.
	Publish(ctx context.Context, msg domain.Outbound) error
}

// Bus is a bus client able to both subscribe and publish.
type Bus interface {
	Subscriber
	Publisher

	// Connect opens the connection to the broker.
	// Failures wrap domain.ErrConnection.
	Connect(ctx context.Context) error

	// Close unsubscribes and disconnects.
	Close() error
}
