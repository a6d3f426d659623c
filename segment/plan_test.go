package segment

import (
	"testing"

	"github.com/vilshansen/hypercrypt/constants"
)

// sumIn returns the sum of InSize across all segments in a plan.
func sumIn(keys []Key) uint64 {
	var total uint64
	for _, k := range keys {
		total += uint64(k.InSize)
	}
	return total
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

func TestBuildPlanSumsToLength(t *testing.T) {
	lengths := []uint64{
		constants.MinSize,
		constants.MinSize + 1,
		3*constants.MinSize + 7,
		10 * constants.MinSize,
	}
	for _, length := range lengths {
		keys, err := BuildPlan(length)
		if err != nil {
			t.Fatalf("BuildPlan(%d) failed: %v", length, err)
		}
		if got := sumIn(keys); got != length {
			t.Errorf("BuildPlan(%d): segment InSize sums to %d, want %d", length, got, length)
		}
	}
}

func TestBuildPlanMinimumThreeSegments(t *testing.T) {
	// Scenario: exactly 3*MinSize bytes. The greedy pass alone only emits
	// one 2*MinSize segment and leaves a MinSize residual; the minimum-count
	// top-up must split the 2*MinSize segment in two, giving 3 equal
	// MinSize segments together with the residual.
	keys, err := BuildPlan(3 * constants.MinSize)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected exactly 3 segments, got %d", len(keys))
	}
	for i, k := range keys {
		if k.InSize != constants.MinSize || k.OutSize != constants.MinSize {
			t.Errorf("segment %d: got InSize=%d OutSize=%d, want both %d", i, k.InSize, k.OutSize, constants.MinSize)
		}
	}
}

func TestBuildPlanResidualScenario(t *testing.T) {
	// Scenario: 3*2^15+7 bytes should produce 3 full MinSize segments plus
	// a 1-segment residual of 7 bytes.
	length := uint64(3*constants.MinSize + 7)
	keys, err := BuildPlan(length)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if len(keys) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(keys))
	}

	var residualCount int
	var fullCount int
	for _, k := range keys {
		if k.InSize == 7 {
			residualCount++
			if k.OutSize != constants.MinSize {
				t.Errorf("residual segment OutSize = %d, want %d", k.OutSize, constants.MinSize)
			}
		} else if k.InSize == constants.MinSize {
			fullCount++
		}
	}
	if residualCount != 1 {
		t.Errorf("expected exactly 1 residual segment, got %d", residualCount)
	}
	if fullCount != 3 {
		t.Errorf("expected exactly 3 full MinSize segments, got %d", fullCount)
	}
}

func TestBuildPlanOutSizeIsPowerOfTwoInRange(t *testing.T) {
	keys, err := BuildPlan(5*constants.MinSize + 123)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	for i, k := range keys {
		if !isPowerOfTwo(k.OutSize) {
			t.Errorf("segment %d: OutSize %d is not a power of two", i, k.OutSize)
		}
		if k.OutSize < constants.MinSize || k.OutSize > constants.MaxSize {
			t.Errorf("segment %d: OutSize %d out of range [%d, %d]", i, k.OutSize, constants.MinSize, constants.MaxSize)
		}
		if k.InSize > k.OutSize {
			t.Errorf("segment %d: InSize %d exceeds OutSize %d", i, k.InSize, k.OutSize)
		}
	}
}

func TestBuildPlanDistinctKeysAndSpecs(t *testing.T) {
	keys, err := BuildPlan(8 * constants.MinSize)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	seenKey := make(map[[constants.KeySize]byte]bool)
	for i, k := range keys {
		if seenKey[k.AESKey] {
			t.Errorf("segment %d reused another segment's AES key", i)
		}
		seenKey[k.AESKey] = true
		if k.LFSR == 0 {
			t.Errorf("segment %d has an unset LFSR spec", i)
		}
	}
}

func TestBuildPlanRejectsZeroLength(t *testing.T) {
	if _, err := BuildPlan(0); err == nil {
		t.Fatal("expected an error for zero-length input")
	}
}

func TestShuffleLeavesLastSegmentFixed(t *testing.T) {
	keys := make([]Key, 6)
	for i := range keys {
		keys[i].InSize = uint32(i)
	}
	last := keys[len(keys)-1]

	shuffle(keys)

	if keys[len(keys)-1] != last {
		t.Error("shuffle must leave the last segment's position fixed")
	}
}
