package rng

import (
	"encoding/binary"
	"hash"
	"math/bits"
	"sync"

	"github.com/seehuhn/sha256d"
)

const numPools = 32

// Accumulator collects entropy events from untrusted-quality sources in 32
// pools. Events are routed to pools by their selector, reseeds drain an
// exponentially growing subset of the pools so that even a constant stream
// of attacker-controlled events cannot flush out honest entropy.
type Accumulator struct {
	lock        sync.Mutex
	pools       [numPools]hash.Hash
	pool0Bytes  int
	reseedCount uint64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	acc := &Accumulator{}
	for i := range acc.pools {
		acc.pools[i] = sha256d.New()
	}
	return acc
}

// AddEvent routes a 16-bit entropy event into pool `selector mod 32`.
func (acc *Accumulator) AddEvent(selector int, value int16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(value))
	acc.AddBytes(selector, buf[:])
}

// AddBytes routes a block of raw entropy into pool `selector mod 32`.
func (acc *Accumulator) AddBytes(selector int, data []byte) {
	if len(data) == 0 {
		return
	}
	pool := selector % numPools
	if pool < 0 {
		pool += numPools
	}

	acc.lock.Lock()
	defer acc.lock.Unlock()

	// a pool digest is only ever extended here or reset in ReseedMaterial
	_, _ = acc.pools[pool].Write(data)
	if pool == 0 {
		acc.pool0Bytes += len(data)
	}
	entropyEventsTotal.Inc()
}

// ReadyForReseed reports whether pool 0 has received at least min bytes
// since it was last drained.
func (acc *Accumulator) ReadyForReseed(min int) bool {
	acc.lock.Lock()
	defer acc.lock.Unlock()
	return acc.pool0Bytes >= min
}

// ReseedMaterial increments the reseed counter and drains the pools due for
// the new counter value: pool i contributes when i does not exceed the
// number of trailing zero bits of the counter. Pool 0 is used on every
// reseed, pool 1 on every 2nd, pool 2 on every 4th, and so on. Drained
// pools are reset to empty.
func (acc *Accumulator) ReseedMaterial() []byte {
	acc.lock.Lock()
	defer acc.lock.Unlock()

	acc.reseedCount++
	n := bits.TrailingZeros64(acc.reseedCount) + 1
	if n > numPools {
		n = numPools
	}

	material := make([]byte, 0, n*sha256d.Size)
	for i := 0; i < n; i++ {
		material = acc.pools[i].Sum(material)
		acc.pools[i].Reset()
	}
	acc.pool0Bytes = 0
	return material
}

// ReseedCount returns the number of reseed operations performed so far.
func (acc *Accumulator) ReseedCount() uint64 {
	acc.lock.Lock()
	defer acc.lock.Unlock()
	return acc.reseedCount
}
