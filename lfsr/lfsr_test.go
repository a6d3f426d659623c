package lfsr

import (
	"testing"

	"github.com/vilshansen/hypercrypt/constants"
)

func TestVerifyFullCycle(t *testing.T) {
	// Scenario: b=15, poly = the first registered 15-bit literal shifted
	// right by one (the un-reversed form), seed=1. This should walk every
	// nonzero value in [1, 2^15-1] exactly once before returning to seed.
	const bits = 15
	poly := rawPolyTable[0][0] >> 1
	if !verify(poly, bits, 1) {
		t.Fatalf("expected poly %#x to produce a full 15-bit cycle from seed 1", poly)
	}
}

func TestVerifyRejectsZeroSeed(t *testing.T) {
	poly := rawPolyTable[0][0] >> 1
	if verify(poly, 15, 0) {
		t.Fatal("verify must reject a zero seed")
	}
}

func TestVerifyRejectsBadPolynomial(t *testing.T) {
	// An arbitrary non-primitive mask should fail to produce a full cycle.
	if verify(0x00000001, 15, 1) {
		t.Fatal("expected a degenerate polynomial to fail verification")
	}
}

func TestAllRegisteredVariantsVerify(t *testing.T) {
	for i, literals := range rawPolyTable {
		bits := uint(constants.MinBits + i)
		variants := buildVariants(literals, bits)
		for vi, poly := range variants {
			if !verify(poly, bits, 1) {
				t.Errorf("bits=%d variant[%d]=%#x failed to verify from seed 1", bits, vi, poly)
			}
		}
	}
}

func TestResetProducesUsableGenerator(t *testing.T) {
	var g Generator
	if err := g.Reset(MinSize, 1, 0); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	spec := g.GetSpec()
	if spec == 0 {
		t.Fatal("expected nonzero spec after Reset")
	}

	buf := make([]uint32, 32767)
	if err := g.FillNext(buf); err != nil {
		t.Fatalf("FillNext failed: %v", err)
	}

	seen := make(map[uint32]bool)
	for _, v := range buf {
		if v == 0 {
			t.Fatal("generator emitted zero state")
		}
		if seen[v] {
			t.Fatalf("generator repeated state %#x before exhausting the cycle", v)
		}
		seen[v] = true
	}
	if len(seen) != len(buf) {
		t.Fatalf("expected %d distinct states, got %d", len(buf), len(seen))
	}
}

func TestResetRejectsNonPowerOfTwo(t *testing.T) {
	var g Generator
	if err := g.Reset(100000, 1, 0); err == nil {
		t.Fatal("expected error for non-power-of-two size")
	}
}

func TestSetSpecRoundTrip(t *testing.T) {
	var g Generator
	if err := g.Reset(MinSize, 1, 0); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	spec := g.GetSpec()

	var h Generator
	if !h.SetSpec(spec) {
		t.Fatal("SetSpec rejected a spec produced by GetSpec")
	}
	if h.GetSpec() != spec {
		t.Fatalf("round-tripped spec mismatch: got %#x, want %#x", h.GetSpec(), spec)
	}

	a, b := g.Next(), h.Next()
	if a != b {
		t.Fatalf("generators seeded from the same spec diverged: %#x vs %#x", a, b)
	}
}

func TestSetSpecRejectsZeroHalves(t *testing.T) {
	var g Generator
	if g.SetSpec(0) {
		t.Fatal("SetSpec must reject an all-zero spec")
	}
	if g.SetSpec(uint64(1)) {
		t.Fatal("SetSpec must reject a spec with a zero polynomial half")
	}
	if g.SetSpec(uint64(1) << 32) {
		t.Fatal("SetSpec must reject a spec with a zero seed half")
	}
}
