package ais

import (
	"errors"
	"fmt"

	"github.com/bft-labs/aisdecoder/pkg/reassembly"
)

var (
	// ErrDecode is wrapped by every decoding failure.
	ErrDecode = errors.New("ais: decode failed")

	// ErrChecksum marks a message assembled from a sentence with a bad checksum.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrUnsupportedType marks a message type this package does not decode.
	ErrUnsupportedType = errors.New("unsupported message type")

	// ErrTruncated marks a payload shorter than its message type requires.
	ErrTruncated = errors.New("payload truncated")
)

// headerBits is the length of type, repeat indicator and MMSI.
const headerBits = 38

const (
	staticVoyageBits    = 424
	staticVoyageMinBits = 420
)

// Decoder decodes complete messages. The zero value rejects messages
// assembled from sentences with a bad checksum.
type Decoder struct {
	// IgnoreChecksum decodes messages even when a checksum did not match.
	IgnoreChecksum bool
}

// Decode decodes a complete message with the default Decoder.
func Decode(msg reassembly.Message) (Record, error) {
	return Decoder{}.Decode(msg)
}

// Decode decodes a complete message into a Record.
func (d Decoder) Decode(msg reassembly.Message) (Record, error) {
	if !msg.Valid && !d.IgnoreChecksum {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrChecksum)
	}
	return DecodePayload(msg.Payload)
}

// DecodePayload decodes payload bits (one bit per byte) into a Record.
func DecodePayload(payload []byte) (Record, error) {
	b := bitReader(payload)
	if len(b) < headerBits {
		return nil, truncated(0, len(b), headerBits)
	}

	h := Header{
		Type:   uint8(b.unsigned(0, 6)),
		Repeat: uint8(b.unsigned(6, 2)),
		UserID: uint32(b.unsigned(8, 30)),
	}

	switch h.Type {
	case 1, 2, 3:
		return decodePositionReport(h, b)
	case 4, 11:
		return decodeBaseStationReport(h, b)
	case 5:
		return decodeStaticVoyageData(h, b)
	case 8:
		return decodeBinaryBroadcast(h, b)
	case 18:
		return decodeStandardClassB(h, b)
	case 24:
		return decodeStaticDataReport(h, b)
	default:
		return decodeReport(h, b)
	}
}

func truncated(msgType uint8, got, want int) error {
	return fmt.Errorf("%w: %w: type %d has %d bits, need %d", ErrDecode, ErrTruncated, msgType, got, want)
}

func decodePositionReport(h Header, b bitReader) (Record, error) {
	if len(b) < 168 {
		return nil, truncated(h.Type, len(b), 168)
	}
	return PositionReport{
		Header:   h,
		Status:   uint8(b.unsigned(38, 4)),
		Turn:     int8(b.signed(42, 8)),
		Speed:    tenths(b.unsigned(50, 10)),
		Accuracy: b.flag(60),
		Lon:      coord(b.signed(61, 28)),
		Lat:      coord(b.signed(89, 27)),
		Course:   tenths(b.unsigned(116, 12)),
		Heading:  uint16(b.unsigned(128, 9)),
		Second:   uint8(b.unsigned(137, 6)),
		Maneuver: uint8(b.unsigned(143, 2)),
		RAIM:     b.flag(148),
		Radio:    uint32(b.unsigned(149, 19)),
	}, nil
}

func decodeBaseStationReport(h Header, b bitReader) (Record, error) {
	if len(b) < 168 {
		return nil, truncated(h.Type, len(b), 168)
	}
	return BaseStationReport{
		Header:   h,
		Year:     uint16(b.unsigned(38, 14)),
		Month:    uint8(b.unsigned(52, 4)),
		Day:      uint8(b.unsigned(56, 5)),
		Hour:     uint8(b.unsigned(61, 5)),
		Minute:   uint8(b.unsigned(66, 6)),
		Second:   uint8(b.unsigned(72, 6)),
		Accuracy: b.flag(78),
		Lon:      coord(b.signed(79, 28)),
		Lat:      coord(b.signed(107, 27)),
		EPFD:     uint8(b.unsigned(134, 4)),
		RAIM:     b.flag(148),
		Radio:    uint32(b.unsigned(149, 19)),
	}, nil
}

func decodeStaticVoyageData(h Header, b bitReader) (Record, error) {
	// Some transponders send 420 or 422 bits, dropping the DTE flag and
	// spare. The missing bits read as zero.
	if len(b) < staticVoyageMinBits {
		return nil, truncated(h.Type, len(b), staticVoyageMinBits)
	}
	if len(b) < staticVoyageBits {
		b = append(append(bitReader(nil), b...), make([]byte, staticVoyageBits-len(b))...)
	}
	return StaticVoyageData{
		Header:      h,
		AISVersion:  uint8(b.unsigned(38, 2)),
		IMO:         uint32(b.unsigned(40, 30)),
		Callsign:    b.text(70, 42),
		Shipname:    b.text(112, 120),
		ShipType:    uint8(b.unsigned(232, 8)),
		ToBow:       uint16(b.unsigned(240, 9)),
		ToStern:     uint16(b.unsigned(249, 9)),
		ToPort:      uint8(b.unsigned(258, 6)),
		ToStarboard: uint8(b.unsigned(264, 6)),
		EPFD:        uint8(b.unsigned(270, 4)),
		Month:       uint8(b.unsigned(274, 4)),
		Day:         uint8(b.unsigned(278, 5)),
		Hour:        uint8(b.unsigned(283, 5)),
		Minute:      uint8(b.unsigned(288, 6)),
		Draught:     tenths(b.unsigned(294, 8)),
		Destination: b.text(302, 120),
		DTE:         b.flag(422),
	}, nil
}

func decodeBinaryBroadcast(h Header, b bitReader) (Record, error) {
	if len(b) < 56 {
		return nil, truncated(h.Type, len(b), 56)
	}
	return BinaryBroadcast{
		Header: h,
		DAC:    uint16(b.unsigned(40, 10)),
		FID:    uint8(b.unsigned(50, 6)),
		Data:   b.tail(56),
	}, nil
}

func decodeStandardClassB(h Header, b bitReader) (Record, error) {
	if len(b) < 168 {
		return nil, truncated(h.Type, len(b), 168)
	}
	return StandardClassBPosition{
		Header:   h,
		Speed:    tenths(b.unsigned(46, 10)),
		Accuracy: b.flag(56),
		Lon:      coord(b.signed(57, 28)),
		Lat:      coord(b.signed(85, 27)),
		Course:   tenths(b.unsigned(112, 12)),
		Heading:  uint16(b.unsigned(124, 9)),
		Second:   uint8(b.unsigned(133, 6)),
		CS:       b.flag(141),
		Display:  b.flag(142),
		DSC:      b.flag(143),
		Band:     b.flag(144),
		Msg22:    b.flag(145),
		Assigned: b.flag(146),
		RAIM:     b.flag(147),
		Radio:    uint32(b.unsigned(148, 20)),
	}, nil
}

func decodeStaticDataReport(h Header, b bitReader) (Record, error) {
	if len(b) < 40 {
		return nil, truncated(h.Type, len(b), 40)
	}

	part := uint8(b.unsigned(38, 2))
	switch part {
	case 0:
		if len(b) < 160 {
			return nil, truncated(h.Type, len(b), 160)
		}
		return StaticDataReportA{
			Header:   h,
			PartNo:   part,
			Shipname: b.text(40, 120),
		}, nil
	case 1:
		if len(b) < 162 {
			return nil, truncated(h.Type, len(b), 162)
		}
		return StaticDataReportB{
			Header:      h,
			PartNo:      part,
			ShipType:    uint8(b.unsigned(40, 8)),
			VendorID:    b.text(48, 18),
			Model:       uint8(b.unsigned(66, 4)),
			Serial:      uint32(b.unsigned(70, 20)),
			Callsign:    b.text(90, 42),
			ToBow:       uint16(b.unsigned(132, 9)),
			ToStern:     uint16(b.unsigned(141, 9)),
			ToPort:      uint8(b.unsigned(150, 6)),
			ToStarboard: uint8(b.unsigned(156, 6)),
		}, nil
	default:
		return nil, fmt.Errorf("%w: type 24 part number %d", ErrDecode, part)
	}
}
