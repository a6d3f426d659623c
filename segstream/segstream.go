// Package segstream writes a concatenated stream of segment ciphertext
// across 1..16 output files of approximately equal size, and reads it
// back by concatenating those files into a single logical stream.
package segstream

import (
	"fmt"
	"io"
	"os"

	"github.com/vilshansen/hypercrypt/constants"
)

// PlanSplit computes the per-file byte count for splitting a total of
// totalSize bytes across splits files: every file but the last gets
// ceil((totalSize/splits)/ChunkSize)*ChunkSize bytes, and the last file
// absorbs the remainder. When that rounding lets an earlier file reach
// totalSize, that file is trimmed to end exactly at totalSize and every
// later file gets zero bytes. splits must be in [1, constants.MaxSplits].
func PlanSplit(totalSize uint64, splits int) ([]uint64, error) {
	if splits < 1 || splits > constants.MaxSplits {
		return nil, fmt.Errorf("segstream: split count %d out of range [1, %d]", splits, constants.MaxSplits)
	}

	perFile := totalSize / uint64(splits)
	if rem := perFile % constants.ChunkSize; rem != 0 {
		perFile += constants.ChunkSize - rem
	}

	sizes := make([]uint64, splits)
	var assigned uint64
	for i := 0; i < splits-1; i++ {
		sizes[i] = perFile
		assigned += perFile
		if assigned >= totalSize {
			// Every later file gets zero bytes; PlanSplit still returns a
			// full-length slice so callers can create (and immediately
			// close) empty trailing files consistently.
			for j := i + 1; j < splits; j++ {
				sizes[j] = 0
			}
			sizes[i] -= assigned - totalSize
			return sizes, nil
		}
	}
	sizes[splits-1] = totalSize - assigned
	return sizes, nil
}

// Writer fans a single logical ciphertext stream out across splits files
// named by namer(index), each sized per PlanSplit.
type Writer struct {
	files   []*os.File
	sizes   []uint64
	written []uint64
	cur     int
}

// NamerFunc returns the path for the i-th output file (0-based) out of a
// total of n.
type NamerFunc func(i, n int) string

// CreateWriter opens splits fresh output files (failing if any already
// exists) sized to hold a totalSize-byte stream.
func CreateWriter(totalSize uint64, splits int, namer NamerFunc) (*Writer, error) {
	sizes, err := PlanSplit(totalSize, splits)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		sizes:   sizes,
		written: make([]uint64, splits),
	}
	for i := 0; i < splits; i++ {
		path := namer(i, splits)
		if _, err := os.Stat(path); err == nil {
			w.closeAll()
			return nil, fmt.Errorf("segstream: output file %s already exists", path)
		}
		f, err := os.Create(path)
		if err != nil {
			w.closeAll()
			return nil, fmt.Errorf("segstream: creating %s: %w", path, err)
		}
		w.files = append(w.files, f)
	}
	return w, nil
}

// Write implements io.Writer, spilling bytes into successive output files
// as each fills to its planned size.
func (w *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if w.cur >= len(w.files) {
			return total, fmt.Errorf("segstream: write exceeds planned total size")
		}
		remaining := w.sizes[w.cur] - w.written[w.cur]
		if remaining == 0 {
			w.cur++
			continue
		}
		n := uint64(len(p))
		if n > remaining {
			n = remaining
		}
		written, err := w.files[w.cur].Write(p[:n])
		total += written
		w.written[w.cur] += uint64(written)
		if err != nil {
			return total, fmt.Errorf("segstream: writing to output file %d: %w", w.cur, err)
		}
		p = p[n:]
	}
	return total, nil
}

// Close closes all output files.
func (w *Writer) Close() error {
	return w.closeAll()
}

func (w *Writer) closeAll() error {
	var firstErr error
	for _, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Remove deletes every output file the writer created. Used to clean up
// after a failed encrypt.
func (w *Writer) Remove(namer NamerFunc) {
	n := len(w.files)
	for i := 0; i < n; i++ {
		os.Remove(namer(i, n))
	}
}

// Reader concatenates joins input files into a single logical io.Reader.
type Reader struct {
	files []*os.File
	sizes []int64
	cur   int
}

// OpenReader opens joins input files in order and records their sizes,
// returning a Reader over their concatenation. It does not check the
// combined size; TotalSize reports it.
func OpenReader(joins int, namer NamerFunc) (*Reader, error) {
	if joins < 1 || joins > constants.MaxSplits {
		return nil, fmt.Errorf("segstream: join count %d out of range [1, %d]", joins, constants.MaxSplits)
	}

	r := &Reader{}
	for i := 0; i < joins; i++ {
		path := namer(i, joins)
		f, err := os.Open(path)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("segstream: opening %s: %w", path, err)
		}
		info, err := f.Stat()
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("segstream: stating %s: %w", path, err)
		}
		r.files = append(r.files, f)
		r.sizes = append(r.sizes, info.Size())
	}
	return r, nil
}

// TotalSize returns the combined size of all joined input files.
func (r *Reader) TotalSize() uint64 {
	var total uint64
	for _, s := range r.sizes {
		total += uint64(s)
	}
	return total
}

// Read implements io.Reader over the concatenation of the joined files.
func (r *Reader) Read(p []byte) (int, error) {
	for {
		if r.cur >= len(r.files) {
			return 0, io.EOF
		}
		n, err := r.files[r.cur].Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("segstream: reading input file %d: %w", r.cur, err)
		}
		r.cur++
	}
}

// Close closes all input files.
func (r *Reader) Close() error {
	var firstErr error
	for _, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
