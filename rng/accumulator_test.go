package rng

import (
	"bytes"
	"math/bits"
	"testing"
)

func TestPoolRouting(t *testing.T) {
	// the same sequence of selectors and values must produce the same
	// reseed material
	a := NewAccumulator()
	b := NewAccumulator()

	for i := 0; i < 1000; i++ {
		a.AddEvent(i, int16(i*7))
		b.AddEvent(i, int16(i*7))
	}

	ma := a.ReseedMaterial()
	mb := b.ReseedMaterial()
	if !bytes.Equal(ma, mb) {
		t.Error("identical event sequences produced different reseed material")
	}
}

func TestPoolSelectorWrapping(t *testing.T) {
	// selector 33 and selector 1 must hit the same pool
	a := NewAccumulator()
	b := NewAccumulator()

	a.AddEvent(33, 42)
	b.AddEvent(1, 42)

	// drain pools 0 and 1 (counter becomes 2)
	_ = a.ReseedMaterial()
	_ = b.ReseedMaterial()
	ma := a.ReseedMaterial()
	mb := b.ReseedMaterial()
	if !bytes.Equal(ma, mb) {
		t.Error("selector was not reduced mod 32")
	}

	a.AddEvent(-1, 7) // negative selectors must not panic
}

func TestReseedPoolSelection(t *testing.T) {
	acc := NewAccumulator()

	for counter := uint64(1); counter <= 32; counter++ {
		material := acc.ReseedMaterial()
		wantPools := bits.TrailingZeros64(counter) + 1
		gotPools := len(material) / 32
		if gotPools != wantPools {
			t.Errorf("counter=%d: %d pools consumed, want %d", counter, gotPools, wantPools)
		}
		if acc.ReseedCount() != counter {
			t.Errorf("reseed count %d, want %d", acc.ReseedCount(), counter)
		}
	}
}

func TestReadyForReseed(t *testing.T) {
	acc := NewAccumulator()
	if acc.ReadyForReseed(32) {
		t.Error("empty accumulator reported ready")
	}

	acc.AddBytes(0, make([]byte, 32))
	if !acc.ReadyForReseed(32) {
		t.Error("pool 0 with 32 bytes reported not ready")
	}

	// draining resets the pool 0 counter
	_ = acc.ReseedMaterial()
	if acc.ReadyForReseed(32) {
		t.Error("drained accumulator reported ready")
	}

	// data in other pools does not count towards the threshold
	acc.AddBytes(5, make([]byte, 64))
	if acc.ReadyForReseed(32) {
		t.Error("pool 5 data counted towards the pool 0 threshold")
	}
}
