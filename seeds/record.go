package seeds

import (
	"fmt"
)

// SeedRecord is the persisted form of generator state: a name, the time the
// record was written and the seed bytes themselves.
type SeedRecord struct {
	Name      string
	Timestamp int64
	Data      []byte
}

// Encode serializes the record. Only the seed payload is scrambled, the
// frame lengths and the timestamp stay readable.
func (r *SeedRecord) Encode() ([]byte, error) {
	enc := NewEncoder()
	if err := enc.WriteString(r.Name); err != nil {
		return nil, fmt.Errorf("seeds: cannot encode record name: %w", err)
	}
	enc.WriteUint64(uint64(r.Timestamp))
	if err := enc.WriteSeed(r.Data); err != nil {
		return nil, fmt.Errorf("seeds: cannot encode seed data: %w", err)
	}
	return enc.Bytes(), nil
}

// DecodeSeedRecord parses a stored record. Truncated input fails with
// ErrEndOfData, unusable content with ErrMalformed.
func DecodeSeedRecord(data []byte) (*SeedRecord, error) {
	dec := NewDecoder(data)

	name, err := dec.ReadString()
	if err != nil {
		return nil, err
	}
	timestamp, err := dec.ReadUint64()
	if err != nil {
		return nil, err
	}
	seed, err := dec.ReadSeed()
	if err != nil {
		return nil, err
	}
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: record contains no seed data", ErrMalformed)
	}

	return &SeedRecord{
		Name:      name,
		Timestamp: int64(timestamp),
		Data:      seed,
	}, nil
}
