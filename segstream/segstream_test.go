package segstream

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/vilshansen/hypercrypt/constants"
)

func TestPlanSplitEvenDivision(t *testing.T) {
	// Scenario S2: exactly 2^15 bytes split across 2 files.
	sizes, err := PlanSplit(constants.MinSize, 2)
	if err != nil {
		t.Fatalf("PlanSplit failed: %v", err)
	}
	if len(sizes) != 2 {
		t.Fatalf("got %d sizes, want 2", len(sizes))
	}
	if sizes[0] != constants.MinSize/2 || sizes[1] != constants.MinSize/2 {
		t.Errorf("got sizes %v, want [%d, %d]", sizes, constants.MinSize/2, constants.MinSize/2)
	}
}

func TestPlanSplitSumsToTotal(t *testing.T) {
	total := uint64(3*constants.MinSize + 100)
	for splits := 1; splits <= constants.MaxSplits; splits++ {
		sizes, err := PlanSplit(total, splits)
		if err != nil {
			t.Fatalf("PlanSplit(%d) failed: %v", total, err)
		}
		var sum uint64
		for _, s := range sizes {
			sum += s
		}
		if sum != total {
			t.Errorf("splits=%d: sizes sum to %d, want %d", splits, sum, total)
		}
	}
}

func TestPlanSplitRejectsOutOfRangeCount(t *testing.T) {
	if _, err := PlanSplit(constants.MinSize, 0); err == nil {
		t.Fatal("expected an error for 0 splits")
	}
	if _, err := PlanSplit(constants.MinSize, constants.MaxSplits+1); err == nil {
		t.Fatal("expected an error for too many splits")
	}
}

func namerFor(dir, base string) NamerFunc {
	return func(i, n int) string {
		return filepath.Join(dir, fmt.Sprintf("%s.%02d.hc", base, i+1))
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	namer := namerFor(dir, "test")

	payload := bytes.Repeat([]byte{0xAA}, int(constants.MinSize))

	w, err := CreateWriter(uint64(len(payload)), 4, namer)
	if err != nil {
		t.Fatalf("CreateWriter failed: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := OpenReader(4, namer)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer r.Close()

	if r.TotalSize() != uint64(len(payload)) {
		t.Errorf("TotalSize = %d, want %d", r.TotalSize(), len(payload))
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("joined stream does not match original payload")
	}
}

func TestCreateWriterRefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	namer := namerFor(dir, "test")

	existing := namer(0, 2)
	if err := os.WriteFile(existing, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := CreateWriter(constants.MinSize, 2, namer); err == nil {
		t.Fatal("expected an error when an output file already exists")
	}
}

func TestWriterRejectsOverflow(t *testing.T) {
	dir := t.TempDir()
	namer := namerFor(dir, "test")

	w, err := CreateWriter(256, 1, namer)
	if err != nil {
		t.Fatalf("CreateWriter failed: %v", err)
	}
	defer w.Close()

	if _, err := w.Write(make([]byte, 512)); err == nil {
		t.Fatal("expected an error writing more than the planned total size")
	}
}
