package reassembly

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// SentinelSeqID stands in for the sequence id when a sentence omits it.
const SentinelSeqID = -1

// ErrMalformedFragment is returned by ParseFragment for lines that are not
// well-formed AIS VDM/VDO sentences.
var ErrMalformedFragment = errors.New("reassembly: malformed fragment")

// Fragment is one parsed VDM/VDO sentence.
type Fragment struct {
	// Count is the declared number of fragments in the message.
	Count int

	// Index is the 1-based position of this fragment.
	Index int

	// SeqID groups fragments of one message. SentinelSeqID when absent.
	SeqID int

	// Channel is the AIS radio channel (A, B, 1, 2) and may be empty.
	Channel string

	// Payload holds the de-armoured payload, one bit per byte, fill bits removed.
	Payload []byte

	// Talker is the talker id, e.g. "AI".
	Talker string

	// Own is true for VDO (own-ship) sentences.
	Own bool

	// Valid reports whether the sentence checksum matched.
	Valid bool

	// Raw is the trimmed input line.
	Raw []byte
}

// Key identifies the message a fragment belongs to.
type Key struct {
	SeqID   int
	Channel string
}

// Key returns the reassembly key for the fragment.
func (f Fragment) Key() Key {
	return Key{SeqID: f.SeqID, Channel: f.Channel}
}

// Single reports whether the fragment is a complete message on its own.
func (f Fragment) Single() bool {
	return f.Count == 1
}

// sentenceParser accepts sentences whose checksum does not match so that the
// mismatch can be carried on the Fragment and rejected by the decoder.
var sentenceParser = nmea.SentenceParser{
	CheckCRC: func(nmea.BaseSentence, string) error { return nil },
}

// ParseFragment parses one raw line into a Fragment.
// Leading and trailing whitespace, including CR/LF, is ignored.
func ParseFragment(line []byte) (Fragment, error) {
	raw := bytes.TrimSpace(line)
	if len(raw) == 0 {
		return Fragment{}, fmt.Errorf("%w: empty line", ErrMalformedFragment)
	}

	s, err := sentenceParser.Parse(string(raw))
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: %v", ErrMalformedFragment, err)
	}

	vdm, ok := s.(nmea.VDMVDO)
	if !ok {
		return Fragment{}, fmt.Errorf("%w: unexpected sentence type %s", ErrMalformedFragment, s.DataType())
	}

	f := Fragment{
		Count:   int(vdm.NumFragments),
		Index:   int(vdm.FragmentNumber),
		SeqID:   SentinelSeqID,
		Channel: vdm.Channel,
		Payload: vdm.Payload,
		Talker:  vdm.TalkerID(),
		Own:     vdm.DataType() == nmea.TypeVDO,
		Valid:   checksumValid(string(raw)),
		Raw:     append([]byte(nil), raw...),
	}

	// The parser reads an empty sequence field as 0, which is a real id.
	if len(vdm.Fields) > 2 && vdm.Fields[2] != "" {
		f.SeqID = int(vdm.MessageID)
	}

	if f.Count < 1 {
		return Fragment{}, fmt.Errorf("%w: fragment count %d", ErrMalformedFragment, f.Count)
	}
	if f.Index < 1 || f.Index > f.Count {
		return Fragment{}, fmt.Errorf("%w: fragment index %d of %d", ErrMalformedFragment, f.Index, f.Count)
	}

	return f, nil
}

// checksumValid compares the XOR checksum of a sentence body with the two
// hex digits after '*'. A leading tag block (\...\) is skipped.
func checksumValid(raw string) bool {
	if strings.HasPrefix(raw, "\\") {
		end := strings.Index(raw[1:], "\\")
		if end < 0 {
			return false
		}
		raw = raw[end+2:]
	}
	if len(raw) < 1 || (raw[0] != '!' && raw[0] != '$') {
		return false
	}
	star := strings.LastIndexByte(raw, '*')
	if star < 0 || len(raw) < star+3 {
		return false
	}
	want, err := strconv.ParseUint(raw[star+1:star+3], 16, 8)
	if err != nil {
		return false
	}
	return checksum(raw[1:star]) == byte(want)
}

// checksum is the NMEA 0183 XOR over the sentence body.
func checksum(body string) byte {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return sum
}
