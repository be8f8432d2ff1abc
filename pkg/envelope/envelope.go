package envelope

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ErrMalformed is wrapped by every decoding failure.
var ErrMalformed = errors.New("envelope: malformed")

// json is the codec used for envelopes.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the wire form of an outbound message.
type Envelope struct {
	SentAt  string      `json:"sent_at"`
	Message interface{} `json:"message"`
}

// Inbound is a decoded inbound envelope.
type Inbound struct {
	// SentAt is the sender's timestamp as written on the wire.
	SentAt string

	// Payload is the base64-decoded message: one raw sentence line.
	Payload []byte
}

// wireInbound defers decoding of "message" until its type is checked.
type wireInbound struct {
	SentAt  string              `json:"sent_at"`
	Message jsoniter.RawMessage `json:"message"`
}

// Codec implements the envelope encoding. The zero value is ready to use.
type Codec struct{}

// Decode parses an inbound envelope and base64-decodes its message.
func (Codec) Decode(data []byte) (Inbound, error) {
	var w wireInbound
	if err := json.Unmarshal(data, &w); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(w.Message) == 0 || bytes.Equal(w.Message, []byte("null")) {
		return Inbound{}, fmt.Errorf("%w: missing message", ErrMalformed)
	}

	var encoded string
	if err := json.Unmarshal(w.Message, &encoded); err != nil {
		return Inbound{}, fmt.Errorf("%w: message is not a string", ErrMalformed)
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Inbound{}, fmt.Errorf("%w: message is not base64: %v", ErrMalformed, err)
	}

	return Inbound{SentAt: w.SentAt, Payload: payload}, nil
}

// Encode wraps message in an envelope stamped with now (UTC).
func (Codec) Encode(message interface{}, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		SentAt:  FormatTime(now),
		Message: message,
	})
}

// Wrap builds an inbound-style envelope around a raw line.
// It is the inverse of Decode and is used by producers and tests.
func (Codec) Wrap(line []byte, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		SentAt:  FormatTime(now),
		Message: base64.StdEncoding.EncodeToString(line),
	})
}

// timeLayout is ISO 8601 in UTC with microseconds and an explicit offset,
// for example 2024-05-01T10:00:00.000000+00:00.
const timeLayout = "2006-01-02T15:04:05.000000-07:00"

// FormatTime renders an envelope timestamp.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
