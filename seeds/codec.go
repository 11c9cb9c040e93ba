package seeds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Codec errors. A truncated input always fails with ErrEndOfData, content
// that cannot be interpreted fails with ErrMalformed. The two are kept
// apart so storage backends can tell a short read from corruption.
var (
	ErrEndOfData = errors.New("seeds: unexpected end of data")
	ErrMalformed = errors.New("seeds: malformed data")
)

// maxFrameSize is the largest payload a single length-prefixed frame can
// hold.
const maxFrameSize = 0xFFFF

// Encoder serializes seed record fields into length-prefixed binary frames.
// Integers are big-endian with fixed width.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded data.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// WriteUint16 appends a fixed-width big-endian uint16.
func (e *Encoder) WriteUint16(v uint16) {
	e.buf = binary.BigEndian.AppendUint16(e.buf, v)
}

// WriteUint32 appends a fixed-width big-endian uint32.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

// WriteUint64 appends a fixed-width big-endian uint64.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) writeFrame(data []byte) error {
	if len(data) > maxFrameSize {
		return fmt.Errorf("%w: frame of %d bytes exceeds maximum of %d", ErrMalformed, len(data), maxFrameSize)
	}
	e.WriteUint16(uint16(len(data)))
	e.buf = append(e.buf, data...)
	return nil
}

// WriteSeed appends seed bytes as a frame. The payload is scrambled before
// it is written, the length prefix is not.
func (e *Encoder) WriteSeed(data []byte) error {
	scrambled := Scramble(append([]byte{}, data...))
	return e.writeFrame(scrambled)
}

// WriteString appends a length-prefixed UTF-8 string. Strings containing
// NUL or invalid UTF-8 are rejected.
func (e *Encoder) WriteString(s string) error {
	if err := checkString([]byte(s)); err != nil {
		return err
	}
	return e.writeFrame([]byte(s))
}

// Decoder reads seed record fields back from a byte slice.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder returns a decoder reading from data. The slice is not copied.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of bytes left to read.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, fmt.Errorf("%w: only %d bytes remain, need %d", ErrEndOfData, d.Remaining(), n)
	}
	data := d.data[d.pos : d.pos+n]
	d.pos += n
	return data, nil
}

// ReadUint16 reads a fixed-width big-endian uint16.
func (d *Decoder) ReadUint16() (uint16, error) {
	data, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(data), nil
}

// ReadUint32 reads a fixed-width big-endian uint32.
func (d *Decoder) ReadUint32() (uint32, error) {
	data, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

// ReadUint64 reads a fixed-width big-endian uint64.
func (d *Decoder) ReadUint64() (uint64, error) {
	data, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(data), nil
}

func (d *Decoder) readFrame() ([]byte, error) {
	n, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	return d.take(int(n))
}

// ReadSeed reads a seed frame and unscrambles its payload.
func (d *Decoder) ReadSeed() ([]byte, error) {
	frame, err := d.readFrame()
	if err != nil {
		return nil, err
	}
	return Scramble(append([]byte{}, frame...)), nil
}

// ReadString reads a length-prefixed UTF-8 string. Embedded NUL and
// malformed sequences fail with ErrMalformed.
func (d *Decoder) ReadString() (string, error) {
	frame, err := d.readFrame()
	if err != nil {
		return "", err
	}
	if err := checkString(frame); err != nil {
		return "", err
	}
	return string(frame), nil
}

func checkString(data []byte) error {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return fmt.Errorf("%w: string contains NUL at position %d", ErrMalformed, i)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: string is not valid UTF-8", ErrMalformed)
	}
	return nil
}
