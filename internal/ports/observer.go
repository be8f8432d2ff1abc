package ports

import (
	"time"

	"github.com/bft-labs/aisdecoder/internal/domain"
)

// Observer receives pipeline events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// OnDelivery is called once per delivery taken off the queue.
	OnDelivery()

	// OnOutcome is called once per delivery with its final outcome.
	OnOutcome(outcome domain.Outcome)

	// OnPublish is called after every publish attempt.
	OnPublish(duration time.Duration, err error)

	// OnQueueDrop is called when a delivery is dropped because the queue
	// is full.
	OnQueueDrop()
}
