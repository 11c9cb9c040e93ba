package rng

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vaultrand/prng/config"
	"github.com/vaultrand/prng/log"
)

var (
	rngCipherOption       config.StringOption
	minPoolEntropy        config.IntOption
	minReseedIntervalMsec config.IntOption
)

func init() {
	if err := prep(); err != nil {
		panic(err)
	}
}

func prep() error {
	err := config.Register(&config.Option{
		Name:            "RNG Cipher",
		Key:             "random/rng_cipher",
		Description:     "Cipher to use for the Fortuna RNG.",
		OptType:         config.OptTypeString,
		DefaultValue:    "aes",
		ValidationRegex: "^(aes|serpent)$",
	})
	if err != nil {
		return err
	}
	rngCipherOption = config.GetAsString("random/rng_cipher", "aes")

	err = config.Register(&config.Option{
		Name:            "Minimum Pool Entropy",
		Key:             "random/min_pool_entropy",
		Description:     "The minimum amount of entropy in pool 0 before a reseed is triggered, in bits.",
		OptType:         config.OptTypeInt,
		DefaultValue:    int64(256),
		ValidationRegex: "^[0-9]{1,5}$",
	})
	if err != nil {
		return err
	}
	minPoolEntropy = config.GetAsInt("random/min_pool_entropy", 256)

	err = config.Register(&config.Option{
		Name:            "Minimum Reseed Interval",
		Key:             "random/min_reseed_interval_ms",
		Description:     "Minimum number of milliseconds between two accepted reseeds. Reseed material arriving sooner stays in the pools.",
		OptType:         config.OptTypeInt,
		DefaultValue:    int64(100),
		ValidationRegex: "^[0-9]{1,6}$",
	})
	if err != nil {
		return err
	}
	minReseedIntervalMsec = config.GetAsInt("random/min_reseed_interval_ms", 100)

	return nil
}

// speedResetThreshold is the request size from which on a speed reset is
// requested implicitly, so that collectors catch up with output demand.
const speedResetThreshold = 1024

// CSPRNG combines an entropy accumulator and a reseed-controlled generator
// into one random source. One instance per process is the expected setup,
// independent instances are fully isolated and safe to use in tests.
type CSPRNG struct {
	acc *Accumulator
	gen *Generator

	poolSelector uint32

	reseedLock sync.Mutex

	hookLock       sync.Mutex
	speedResetHook func()
}

// NewCSPRNG returns a new, unseeded CSPRNG instance.
func NewCSPRNG() *CSPRNG {
	return &CSPRNG{
		acc: NewAccumulator(),
		gen: NewGenerator(),
	}
}

// FeedEvent adds a 16-bit entropy event, spreading successive events over
// the pools round-robin.
func (r *CSPRNG) FeedEvent(value int16) {
	selector := atomic.AddUint32(&r.poolSelector, 1)
	r.acc.AddEvent(int(selector), value)
}

// FeedBytes adds a block of raw entropy bytes.
func (r *CSPRNG) FeedBytes(data []byte) {
	selector := atomic.AddUint32(&r.poolSelector, 1)
	r.acc.AddBytes(int(selector), data)
}

// reseedCheck applies accumulated pool material to the generator if the
// minimum reseed interval has elapsed and pool 0 holds enough data. If the
// interval has not elapsed, no pool material is drawn - it stays available
// for the next accepted reseed.
func (r *CSPRNG) reseedCheck() {
	r.reseedLock.Lock()
	defer r.reseedLock.Unlock()

	interval := time.Duration(minReseedIntervalMsec()) * time.Millisecond
	if !r.gen.reseedDue(interval) {
		return
	}
	if !r.acc.ReadyForReseed(int(minPoolEntropy()) / 8) {
		return
	}

	if err := r.gen.Reseed(r.acc.ReseedMaterial()); err != nil {
		log.Errorf("rng: reseed failed: %s", err)
	}
}

// ReadBytes produces n random bytes.
func (r *CSPRNG) ReadBytes(n int) ([]byte, error) {
	if n >= speedResetThreshold {
		r.RequestSpeedReset()
	}
	r.reseedCheck()

	b, err := r.gen.Data(n)
	if err != nil {
		return nil, err
	}
	randomBytesTotal.Add(n)
	return b, nil
}

// Read fills b with random bytes. It implements io.Reader.
func (r *CSPRNG) Read(b []byte) (n int, err error) {
	data, err := r.ReadBytes(len(b))
	if err != nil {
		return 0, err
	}
	return copy(b, data), nil
}

// ApplySeed reseeds the generator directly, bypassing the pools. It is used
// by the seed lifecycle manager to prime the generator from persisted state.
func (r *CSPRNG) ApplySeed(data []byte) error {
	r.reseedLock.Lock()
	defer r.reseedLock.Unlock()
	return r.gen.Reseed(data)
}

// ExportSeed returns 64 bytes of output suitable for persisting as the next
// startup seed. It fails with ErrNotSeeded on a generator that never
// reseeded, so an unseeded state is never written to storage.
func (r *CSPRNG) ExportSeed() ([]byte, error) {
	r.reseedCheck()
	return r.gen.Data(64)
}

// IsSeeded reports whether output is currently available.
func (r *CSPRNG) IsSeeded() bool {
	return r.gen.IsSeeded()
}

// SetSpeedResetHook wires the hint used to temporarily speed entropy
// collection back up, usually the collector scheduler's SpeedReset.
func (r *CSPRNG) SetSpeedResetHook(hook func()) {
	r.hookLock.Lock()
	defer r.hookLock.Unlock()
	r.speedResetHook = hook
}

// RequestSpeedReset hints the entropy collection scheduler to return to
// full collection speed.
func (r *CSPRNG) RequestSpeedReset() {
	r.hookLock.Lock()
	hook := r.speedResetHook
	r.hookLock.Unlock()
	if hook != nil {
		hook()
	}
}

// Default process-wide instance and the package level convenience surface.

var (
	defaultRNG = NewCSPRNG()

	// Reader provides a global instance to read from the default RNG.
	Reader io.Reader = reader{}
)

type reader struct{}

func (r reader) Read(b []byte) (n int, err error) {
	return Read(b)
}

// Default returns the process-wide CSPRNG instance.
func Default() *CSPRNG {
	return defaultRNG
}

// Read fills b with random bytes from the default instance.
func Read(b []byte) (n int, err error) {
	return defaultRNG.Read(b)
}

// Bytes allocates a new byte slice of given length and fills it with random
// data from the default instance.
func Bytes(n int) ([]byte, error) {
	return defaultRNG.ReadBytes(n)
}

// Number returns a random number from 0 to (incl.) max.
func Number(max uint64) (uint64, error) {
	if max == 0 {
		return 0, nil
	}

	secureLimit := math.MaxUint64 - (math.MaxUint64 % max)
	max++

	for {
		randomBytes, err := Bytes(8)
		if err != nil {
			return 0, err
		}

		candidate := binary.LittleEndian.Uint64(randomBytes)
		if candidate < secureLimit {
			return candidate % max, nil
		}
	}
}
