package rng

import (
	"bytes"
	"testing"

	"github.com/vaultrand/prng/config"
)

func TestCSPRNGSurface(t *testing.T) {
	if err := defaultRNG.ApplySeed([]byte("test seed for the default instance")); err != nil {
		t.Fatal(err)
	}

	b := make([]byte, 32)
	if _, err := Read(b); err != nil {
		t.Errorf("Read failed: %s", err)
	}
	if _, err := Reader.Read(b); err != nil {
		t.Errorf("Reader.Read failed: %s", err)
	}

	out1, err := Bytes(32)
	if err != nil {
		t.Errorf("Bytes failed: %s", err)
	}
	out2, err := Bytes(32)
	if err != nil {
		t.Errorf("Bytes failed: %s", err)
	}
	if bytes.Equal(out1, out2) {
		t.Error("two successive outputs are identical")
	}

	n, err := Number(100)
	if err != nil {
		t.Errorf("Number failed: %s", err)
	}
	if n > 100 {
		t.Errorf("Number returned %d, want <= 100", n)
	}
}

func TestNumberZeroMax(t *testing.T) {
	if err := defaultRNG.ApplySeed([]byte("test seed for the default instance")); err != nil {
		t.Fatal(err)
	}

	n, err := Number(0)
	if err != nil {
		t.Fatalf("Number(0) failed: %s", err)
	}
	if n != 0 {
		t.Errorf("Number(0) returned %d, want 0", n)
	}
}

func TestNotSeededSurface(t *testing.T) {
	r := NewCSPRNG()
	if _, err := r.ReadBytes(16); err != ErrNotSeeded {
		t.Errorf("expected ErrNotSeeded, got %v", err)
	}
	if _, err := r.ExportSeed(); err != ErrNotSeeded {
		t.Errorf("expected ErrNotSeeded from ExportSeed, got %v", err)
	}
}

func TestReseedFromPools(t *testing.T) {
	r := NewCSPRNG()

	// feed events round-robin until pool 0 passes the default threshold
	for i := 0; i < 32*32; i++ {
		r.FeedEvent(int16(i))
	}
	if !r.acc.ReadyForReseed(32) {
		t.Fatal("pool 0 did not fill up")
	}

	out, err := r.ReadBytes(32)
	if err != nil {
		t.Fatalf("expected collector entropy to seed the generator: %s", err)
	}
	if len(out) != 32 {
		t.Errorf("got %d bytes, want 32", len(out))
	}
	if r.acc.ReseedCount() != 1 {
		t.Errorf("reseed count %d, want 1", r.acc.ReseedCount())
	}
}

func TestMinReseedInterval(t *testing.T) {
	if err := config.SetConfigOption("random/min_reseed_interval_ms", 60000); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = config.SetConfigOption("random/min_reseed_interval_ms", nil)
	}()

	r := NewCSPRNG()
	r.acc.AddBytes(0, make([]byte, 64))

	// first reseed is always accepted on an unseeded generator
	r.reseedCheck()
	if r.acc.ReseedCount() != 1 {
		t.Fatalf("reseed count %d, want 1", r.acc.ReseedCount())
	}

	// a second request inside the interval must not change the key and
	// must not draw from the pools
	r.acc.AddBytes(0, make([]byte, 64))
	r.reseedCheck()
	if r.acc.ReseedCount() != 1 {
		t.Error("reseed accepted inside the minimum interval")
	}

	// once the interval is out of the way, the retained material is used
	if err := config.SetConfigOption("random/min_reseed_interval_ms", 0); err != nil {
		t.Fatal(err)
	}
	r.reseedCheck()
	if r.acc.ReseedCount() != 2 {
		t.Error("pooled material was lost instead of being applied later")
	}
}

func TestSpeedResetHook(t *testing.T) {
	r := NewCSPRNG()
	if err := r.ApplySeed([]byte("seed")); err != nil {
		t.Fatal(err)
	}

	var calls int
	r.SetSpeedResetHook(func() { calls++ })

	if _, err := r.ReadBytes(16); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Error("small request triggered a speed reset")
	}

	if _, err := r.ReadBytes(4096); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("large request triggered %d speed resets, want 1", calls)
	}
}

func TestFeedEventSpread(t *testing.T) {
	r := NewCSPRNG()
	for i := 0; i < 64; i++ {
		r.FeedEvent(int16(i))
	}
	// 64 events round-robin over 32 pools leave 2 events (4 bytes) in pool 0
	if !r.acc.ReadyForReseed(4) {
		t.Error("round-robin routing did not reach pool 0")
	}
	if r.acc.ReadyForReseed(6) {
		t.Error("pool 0 received more events than its round-robin share")
	}
}
