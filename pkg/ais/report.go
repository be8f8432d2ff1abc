package ais

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	goais "github.com/BertoldVdb/go-ais"
	jsoniter "github.com/json-iterator/go"
)

// codec decodes the message types that have no dedicated record. It is
// lenient: short payloads are accepted when the missing fields are optional.
var codec = goais.CodecNew(false, false)

var json = jsoniter.Config{
	EscapeHTML:  true,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// Report is any message type without a dedicated record, such as aid to
// navigation reports (21), extended class B reports (19) or SAR aircraft
// reports (9). Packet is the go-ais decoding of the payload.
type Report struct {
	Header
	Packet goais.Packet
}

// MarshalJSON flattens Packet next to the header fields. Packet field
// names are converted to snake_case.
func (r Report) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if r.Packet != nil {
		raw, err := json.Marshal(r.Packet)
		if err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&fields); err != nil {
			return nil, err
		}
	}

	out := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		switch k {
		case "Header", "MessageID", "RepeatIndicator", "UserID", "Valid":
			continue
		}
		out[snakeCase(k)] = snakeKeys(v)
	}
	out["msg_type"] = r.Type
	out["repeat"] = r.Repeat
	out["mmsi"] = r.UserID
	return json.Marshal(out)
}

func decodeReport(h Header, b bitReader) (Record, error) {
	// go-ais reads one bit per byte, the same layout as the payload.
	p := codec.DecodePacket(b)
	if p == nil {
		return nil, fmt.Errorf("%w: %w: %d", ErrDecode, ErrUnsupportedType, h.Type)
	}
	return Report{Header: h, Packet: p}, nil
}

// snakeKeys converts the keys of nested objects.
func snakeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[snakeCase(k)] = snakeKeys(vv)
		}
		return out
	case []any:
		for i := range t {
			t[i] = snakeKeys(t[i])
		}
		return t
	default:
		return v
	}
}

// snakeCase converts a Go field name: PositionAccuracy becomes
// position_accuracy and RAIM becomes raim.
func snakeCase(s string) string {
	rs := []rune(s)
	var sb strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) && i > 0 {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
