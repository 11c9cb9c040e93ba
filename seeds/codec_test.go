package seeds

import (
	"bytes"
	"errors"
	"testing"
)

func TestSeedRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0},
		{0xff},
		[]byte("some seed material"),
		bytes.Repeat([]byte{0xa5}, 1024),
		make([]byte, maxFrameSize),
	}

	for _, seed := range cases {
		enc := NewEncoder()
		if err := enc.WriteSeed(seed); err != nil {
			t.Fatalf("encode failed for %d bytes: %s", len(seed), err)
		}

		dec := NewDecoder(enc.Bytes())
		got, err := dec.ReadSeed()
		if err != nil {
			t.Fatalf("decode failed for %d bytes: %s", len(seed), err)
		}
		if !bytes.Equal(got, seed) {
			t.Errorf("round trip of %d bytes did not restore the input", len(seed))
		}
		if dec.Remaining() != 0 {
			t.Errorf("decoder left %d bytes unread", dec.Remaining())
		}
	}
}

func TestSeedTooLarge(t *testing.T) {
	enc := NewEncoder()
	if err := enc.WriteSeed(make([]byte, maxFrameSize+1)); err == nil {
		t.Error("expected error for oversized seed")
	}
}

func TestTruncatedInput(t *testing.T) {
	enc := NewEncoder()
	if err := enc.WriteSeed([]byte("truncation test payload")); err != nil {
		t.Fatal(err)
	}
	full := enc.Bytes()

	for cut := 0; cut < len(full); cut++ {
		dec := NewDecoder(full[:cut])
		_, err := dec.ReadSeed()
		if err == nil {
			t.Fatalf("truncation at %d bytes was not detected", cut)
		}
		if !errors.Is(err, ErrEndOfData) {
			t.Errorf("truncation at %d bytes: got %v, want ErrEndOfData", cut, err)
		}
	}
}

func TestFrameDeclaresTooMuch(t *testing.T) {
	// a frame declaring more payload than the input holds
	dec := NewDecoder([]byte{0xff, 0xff, 1, 2, 3})
	if _, err := dec.ReadSeed(); !errors.Is(err, ErrEndOfData) {
		t.Errorf("got %v, want ErrEndOfData", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	enc := NewEncoder()
	if err := enc.WriteString("fortuna.seed"); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteString("ünïcode — ok"); err != nil {
		t.Fatal(err)
	}

	dec := NewDecoder(enc.Bytes())
	s1, err := dec.ReadString()
	if err != nil || s1 != "fortuna.seed" {
		t.Errorf("got %q, %v", s1, err)
	}
	s2, err := dec.ReadString()
	if err != nil || s2 != "ünïcode — ok" {
		t.Errorf("got %q, %v", s2, err)
	}
}

func TestStringRejectsNUL(t *testing.T) {
	enc := NewEncoder()
	if err := enc.WriteString("bad\x00string"); !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}

	dec := NewDecoder([]byte{0, 3, 'a', 0, 'b'})
	if _, err := dec.ReadString(); !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	dec := NewDecoder([]byte{0, 2, 0xc3, 0x28})
	if _, err := dec.ReadString(); !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestIntegerWidths(t *testing.T) {
	enc := NewEncoder()
	enc.WriteUint16(0xBEEF)
	enc.WriteUint32(0xDEADBEEF)
	enc.WriteUint64(0x0123456789ABCDEF)

	raw := enc.Bytes()
	if len(raw) != 2+4+8 {
		t.Fatalf("encoded %d bytes, want 14", len(raw))
	}
	// big-endian, fixed width
	if raw[0] != 0xBE || raw[1] != 0xEF {
		t.Error("uint16 is not big-endian")
	}

	dec := NewDecoder(raw)
	if v, _ := dec.ReadUint16(); v != 0xBEEF {
		t.Errorf("uint16: got %x", v)
	}
	if v, _ := dec.ReadUint32(); v != 0xDEADBEEF {
		t.Errorf("uint32: got %x", v)
	}
	if v, _ := dec.ReadUint64(); v != 0x0123456789ABCDEF {
		t.Errorf("uint64: got %x", v)
	}
}

func TestScrambleInvolution(t *testing.T) {
	original := []byte("scramble involution test \x00\x01\xfe\xff")
	data := append([]byte{}, original...)

	Scramble(data)
	if bytes.Equal(data, original) {
		t.Error("scramble left the data unchanged")
	}
	Scramble(data)
	if !bytes.Equal(data, original) {
		t.Error("applying scramble twice did not restore the data")
	}
}

func TestScrambleHasNoFixedPoints(t *testing.T) {
	for i := 0; i < 256; i++ {
		if scrambleTable[i] == byte(i) {
			t.Errorf("byte %#x maps to itself", i)
		}
		if scrambleTable[scrambleTable[i]] != byte(i) {
			t.Errorf("table is not involutory at %#x", i)
		}
	}
}

func TestScrambledPayloadNotPlain(t *testing.T) {
	seed := []byte("clearly recognizable seed bytes!")
	record := &SeedRecord{Name: "test", Timestamp: 1700000000, Data: seed}

	encoded, err := record.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(encoded, seed) {
		t.Error("stored form contains the plain seed bytes")
	}

	decoded, err := DecodeSeedRecord(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded.Data, seed) {
		t.Error("decoded record does not restore the seed")
	}
	if decoded.Name != "test" || decoded.Timestamp != 1700000000 {
		t.Error("decoded record metadata mismatch")
	}
}
