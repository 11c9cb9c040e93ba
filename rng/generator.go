package rng

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aead/serpent"
	"github.com/seehuhn/sha256d"
)

// ErrNotSeeded is returned when random bytes are requested before the
// generator has been reseeded for the first time.
var ErrNotSeeded = errors.New("rng: generator has not been seeded yet")

const (
	keySize = sha256d.Size

	// maxBytesPerRekey limits how much keystream is emitted under a single
	// key before the key is re-derived from the keystream itself.
	maxBytesPerRekey = 1 << 20
)

func newCipher(key []byte) (cipher.Block, error) {
	c := rngCipherOption()
	switch c {
	case "aes":
		return aes.NewCipher(key)
	case "serpent":
		return serpent.NewCipher(key)
	default:
		return nil, fmt.Errorf("unknown or unsupported cipher: %s", c)
	}
}

// Generator produces random bytes by running a block cipher in counter mode
// under a key that is replaced wholesale on every reseed.
type Generator struct {
	lock       sync.Mutex
	key        []byte
	counter    [16]byte
	block      cipher.Block
	seeded     bool
	lastReseed time.Time
}

// NewGenerator returns an unseeded generator. It will refuse to produce
// output until Reseed has been called at least once.
func NewGenerator() *Generator {
	return &Generator{
		key: make([]byte, keySize),
	}
}

// Reseed replaces the generator key with the double-SHA256 digest of the
// current key and the given material. The old key cannot be recovered from
// the new one and the output counter starts over for the fresh key.
func (g *Generator) Reseed(material []byte) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	h := sha256d.New()
	_, _ = h.Write(g.key)
	_, _ = h.Write(material)
	newKey := h.Sum(nil)

	block, err := newCipher(newKey)
	if err != nil {
		return fmt.Errorf("rng: failed to create cipher for new key: %w", err)
	}

	g.key = newKey
	g.block = block
	for i := range g.counter {
		g.counter[i] = 0
	}
	g.seeded = true
	g.lastReseed = time.Now()
	reseedsTotal.Inc()
	return nil
}

// reseedDue reports whether a new reseed would currently be accepted.
func (g *Generator) reseedDue(minInterval time.Duration) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return !g.seeded || time.Since(g.lastReseed) >= minInterval
}

// IsSeeded reports whether the generator has been reseeded at least once.
func (g *Generator) IsSeeded() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.seeded
}

// Data produces n random bytes. After every request (and within large
// requests) the key is re-derived from fresh keystream, so a later key
// compromise does not reveal bytes that were already emitted.
func (g *Generator) Data(n int) ([]byte, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if !g.seeded {
		return nil, ErrNotSeeded
	}

	out := make([]byte, 0, n)
	for n > 0 {
		chunk := n
		if chunk > maxBytesPerRekey {
			chunk = maxBytesPerRekey
		}
		out = g.keystream(out, chunk)
		if err := g.rekey(); err != nil {
			return nil, err
		}
		n -= chunk
	}
	return out, nil
}

// keystream appends n bytes of cipher output to dst. Must be called with
// the lock held and the generator seeded.
func (g *Generator) keystream(dst []byte, n int) []byte {
	bs := g.block.BlockSize()
	buf := make([]byte, bs)
	for n > 0 {
		g.block.Encrypt(buf, g.counter[:bs])
		g.incCounter()
		take := n
		if take > bs {
			take = bs
		}
		dst = append(dst, buf[:take]...)
		n -= take
	}
	return dst
}

// rekey replaces the key with the next 32 bytes of keystream.
func (g *Generator) rekey() error {
	newKey := g.keystream(make([]byte, 0, keySize), keySize)
	block, err := newCipher(newKey)
	if err != nil {
		return fmt.Errorf("rng: failed to create cipher while rekeying: %w", err)
	}
	g.key = newKey
	g.block = block
	return nil
}

// incCounter advances the block counter as a little-endian 128-bit integer.
func (g *Generator) incCounter() {
	for i := 0; i < len(g.counter); i++ {
		g.counter[i]++
		if g.counter[i] != 0 {
			return
		}
	}
}
