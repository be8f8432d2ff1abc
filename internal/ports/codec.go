package ports

import (
	"time"

	"github.com/bft-labs/aisdecoder/pkg/ais"
	"github.com/bft-labs/aisdecoder/pkg/envelope"
	"github.com/bft-labs/aisdecoder/pkg/reassembly"
)

// EnvelopeCodec converts between envelope bytes and their contents.
// envelope.Codec satisfies this interface.
type EnvelopeCodec interface {
	Decode(data []byte) (envelope.Inbound, error)
	Encode(message interface{}, now time.Time) ([]byte, error)
}

// RecordDecoder decodes a complete message into a typed record.
// ais.Decoder satisfies this interface.
type RecordDecoder interface {
	Decode(msg reassembly.Message) (ais.Record, error)
}
