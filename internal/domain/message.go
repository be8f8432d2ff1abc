package domain

import "time"

// Delivery is one inbound message received from the bus.
type Delivery struct {
	// Topic the message arrived on.
	Topic string

	// Payload is the raw envelope bytes.
	Payload []byte

	// ReceivedAt is when the adapter took the message off the bus.
	ReceivedAt time.Time
}

// Outbound is one message ready to be published.
type Outbound struct {
	Topic   string
	Payload []byte
}

// Outcome is the result of processing one delivery.
type Outcome int

const (
	// OutcomePublished means a record was decoded and published.
	OutcomePublished Outcome = iota

	// OutcomeIncomplete means the fragment was buffered or refused and
	// nothing was emitted.
	OutcomeIncomplete

	// OutcomeDroppedEnvelope means the envelope could not be decoded.
	OutcomeDroppedEnvelope

	// OutcomeDroppedDecode means a complete message could not be turned
	// into a routed record.
	OutcomeDroppedDecode

	// OutcomePublishFailed means the bus rejected or timed out the publish.
	OutcomePublishFailed
)

// String returns the label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeDroppedEnvelope:
		return "dropped_envelope"
	case OutcomeDroppedDecode:
		return "dropped_decode"
	case OutcomePublishFailed:
		return "publish_failed"
	default:
		return "unknown"
	}
}
