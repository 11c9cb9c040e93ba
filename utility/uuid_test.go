package utility

import (
	"testing"

	"github.com/vaultrand/prng/rng"
)

func TestNewUUID(t *testing.T) {
	if err := rng.Default().ApplySeed([]byte("uuid test seed material, long enough to matter")); err != nil {
		t.Fatal(err)
	}

	first, err := NewUUID()
	if err != nil {
		t.Fatal(err)
	}
	if first.Version() != 1 {
		t.Fatalf("version is %d, want 1", first.Version())
	}

	second, err := NewUUID()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("consecutive UUIDs are identical")
	}
}

func TestHardwareAddr(t *testing.T) {
	if err := rng.Default().ApplySeed([]byte("uuid test seed material, long enough to matter")); err != nil {
		t.Fatal(err)
	}

	addr, err := hardwareAddr()
	if err != nil {
		t.Fatal(err)
	}
	if len(addr) < 6 {
		t.Fatalf("address too short: %d bytes", len(addr))
	}
}
