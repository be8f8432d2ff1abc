package reassembly

import (
	"errors"
	"fmt"
	"testing"
)

const (
	singleLine = "!AIVDM,1,1,,A,13u=R1P000PnLpJQ0SJ83l<2080Q,0*5F"
	firstLine  = "!AIVDM,2,1,1,A,53uElH000001<UDB2205<dPthlDr22222222221S1p6334wo031km21C,0*6E"
	secondLine = "!AIVDM,2,2,1,A,PUDQh0000000000,2*6D"
)

// sentence builds a VDM sentence with a correct checksum.
func sentence(count, index int, seq, channel, payload string, fill int) []byte {
	body := fmt.Sprintf("AIVDM,%d,%d,%s,%s,%s,%d", count, index, seq, channel, payload, fill)
	return []byte(fmt.Sprintf("!%s*%02X", body, checksum(body)))
}

func TestParseFragment_Single(t *testing.T) {
	f, err := ParseFragment([]byte(singleLine + "\r\n"))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}

	if f.Count != 1 || f.Index != 1 {
		t.Errorf("count/index = %d/%d, want 1/1", f.Count, f.Index)
	}
	if f.SeqID != SentinelSeqID {
		t.Errorf("SeqID = %d, want sentinel", f.SeqID)
	}
	if f.Channel != "A" {
		t.Errorf("Channel = %q, want A", f.Channel)
	}
	if f.Talker != "AI" || f.Own {
		t.Errorf("Talker/Own = %q/%v, want AI/false", f.Talker, f.Own)
	}
	if !f.Valid {
		t.Error("expected valid checksum")
	}
	if len(f.Payload) != 168 {
		t.Errorf("payload bits = %d, want 168", len(f.Payload))
	}
	if string(f.Raw) != singleLine {
		t.Errorf("Raw = %q, want trimmed line", f.Raw)
	}
	if !f.Single() {
		t.Error("expected single-part fragment")
	}
}

func TestParseFragment_MultiPart(t *testing.T) {
	f, err := ParseFragment([]byte(secondLine))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if f.Count != 2 || f.Index != 2 || f.SeqID != 1 {
		t.Errorf("got count=%d index=%d seq=%d, want 2/2/1", f.Count, f.Index, f.SeqID)
	}
	// 15 characters, 2 fill bits.
	if len(f.Payload) != 15*6-2 {
		t.Errorf("payload bits = %d, want %d", len(f.Payload), 15*6-2)
	}
	if f.Key() != (Key{SeqID: 1, Channel: "A"}) {
		t.Errorf("Key = %+v", f.Key())
	}
}

func TestParseFragment_SeqIDZeroIsNotSentinel(t *testing.T) {
	f, err := ParseFragment(sentence(2, 1, "0", "B", "55NB", 0))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if f.SeqID != 0 {
		t.Errorf("SeqID = %d, want 0", f.SeqID)
	}
}

func TestParseFragment_ChecksumMismatchIsCarried(t *testing.T) {
	f, err := ParseFragment([]byte("!AIVDM,1,1,,A,13u=R1P000PnLpJQ0SJ83l<2080Q,0*00"))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if f.Valid {
		t.Error("expected Valid=false on checksum mismatch")
	}
}

func TestParseFragment_VDO(t *testing.T) {
	body := "AIVDO,1,1,,,13u=R1P000PnLpJQ0SJ83l<2080Q,0"
	line := fmt.Sprintf("!%s*%02X", body, checksum(body))
	f, err := ParseFragment([]byte(line))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if !f.Own {
		t.Error("expected Own=true for VDO")
	}
}

func TestParseFragment_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line []byte
	}{
		{"empty", nil},
		{"whitespace", []byte("  \r\n")},
		{"garbage", []byte("hello world")},
		{"no checksum", []byte("!AIVDM,1,1,,A,13u=R1P000PnLpJQ0SJ83l<2080Q,0")},
		{"index zero", sentence(2, 0, "1", "A", "55NB", 0)},
		{"index beyond count", sentence(2, 3, "1", "A", "55NB", 0)},
		{"count zero", sentence(0, 1, "1", "A", "55NB", 0)},
		{"invalid armour", sentence(1, 1, "", "A", "13u~~", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFragment(tt.line)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMalformedFragment) {
				t.Errorf("error = %v, want ErrMalformedFragment", err)
			}
		})
	}
}

func TestChecksumValid(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{singleLine, true},
		{firstLine, true},
		{"!AIVDM,2,2,1,A,PUDQh0000000000,2*6d", true},
		{"!AIVDM,2,2,1,A,PUDQh0000000000,2*6E", false},
		{`\s:2573345,c:1671620143*0B\` + singleLine, true},
		{`\s:broken` + singleLine, false},
		{"AIVDM,1,1*5F", false},
		{"!AIVDM,1,1*", false},
	}

	for _, tt := range tests {
		if got := checksumValid(tt.line); got != tt.want {
			t.Errorf("checksumValid(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
