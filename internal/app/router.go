package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/aisdecoder/pkg/ais"
)

// Router derives the outbound topic for a record.
type Router struct {
	base string
}

// NewRouter creates a router publishing under base. A trailing slash on
// base is ignored.
func NewRouter(base string) Router {
	return Router{base: strings.TrimRight(base, "/")}
}

// Route returns "{base}/{mmsi}/{msg_type}" for rec.
func (r Router) Route(rec ais.Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("%w: no record to route", ais.ErrDecode)
	}
	if r.base == "" {
		return "", fmt.Errorf("%w: no output base topic", ais.ErrDecode)
	}

	var sb strings.Builder
	sb.Grow(len(r.base) + 16)
	sb.WriteString(r.base)
	sb.WriteByte('/')
	sb.WriteString(strconv.FormatUint(uint64(rec.MMSI()), 10))
	sb.WriteByte('/')
	sb.WriteString(strconv.FormatUint(uint64(rec.MessageType()), 10))
	return sb.String(), nil
}
