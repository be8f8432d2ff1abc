package ais

import (
	"math"
	"strings"
)

// sixbitText maps 6-bit values to the AIS character set.
const sixbitText = "@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_ !\"#$%&'()*+,-./0123456789:;<=>?"

// bitReader reads fields from a payload holding one bit per byte.
// Callers check the payload length before reading.
type bitReader []byte

func (b bitReader) unsigned(off, n int) uint64 {
	var v uint64
	for _, bit := range b[off : off+n] {
		v = v<<1 | uint64(bit&1)
	}
	return v
}

// signed reads a two's complement signed field.
func (b bitReader) signed(off, n int) int64 {
	v := b.unsigned(off, n)
	if v&(1<<(n-1)) != 0 {
		return int64(v) - int64(1)<<n
	}
	return int64(v)
}

func (b bitReader) flag(off int) bool {
	return b[off]&1 == 1
}

// text reads n/6 six-bit characters. Output stops at the first '@'
// and trailing spaces are removed.
func (b bitReader) text(off, n int) string {
	var sb strings.Builder
	for i := 0; i+6 <= n; i += 6 {
		c := sixbitText[b.unsigned(off+i, 6)]
		if c == '@' {
			break
		}
		sb.WriteByte(c)
	}
	return strings.TrimRight(sb.String(), " ")
}

// tail packs the bits from off to the end into bytes, MSB first.
// A trailing partial byte is zero padded on the right.
func (b bitReader) tail(off int) []byte {
	rest := b[off:]
	out := make([]byte, (len(rest)+7)/8)
	for i, bit := range rest {
		if bit&1 == 1 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// coord converts a 1/10000 minute position to degrees.
func coord(v int64) float64 {
	return round(float64(v)/600000.0, 6)
}

// tenths converts a 1/10 unit field, such as speed or course.
func tenths(v uint64) float64 {
	return round(float64(v)/10.0, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
