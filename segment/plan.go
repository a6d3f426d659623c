// Package segment implements HyperCrypt's segment planner and per-segment
// codec: dividing a plaintext into power-of-two-sized pieces, assigning
// each an independent AES-256 key/IV and LFSR permutation, and applying
// the AES-CBC + LFSR scatter/gather transform to each piece.
package segment

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"

	"github.com/vilshansen/hypercrypt/constants"
	"github.com/vilshansen/hypercrypt/lfsr"
)

// Key holds everything needed to encrypt or decrypt one segment: its
// plaintext and ciphertext sizes, the LFSR spec driving its scatter/gather
// permutation, and its AES-256 key and IV. OutSize is always a power of
// two in [constants.MinSize, constants.MaxSize]; InSize may be smaller,
// in which case the codec pads the difference with random bytes before
// encrypting.
type Key struct {
	InSize  uint32
	OutSize uint32
	LFSR    uint64
	IV      [constants.IVSize]byte
	AESKey  [constants.KeySize]byte
}

// maxVerifyRetries bounds how many times a fresh (variant, seed) pair is
// retried for a segment before BuildPlan gives up.
const maxVerifyRetries = 4

// sizePlan is an (inSize, outSize) pair produced by decompose, before AES
// keys and LFSR specs are assigned.
type sizePlan struct {
	inSize  uint32
	outSize uint32
}

// BuildPlan partitions a plaintext of the given length into a sequence of
// segments, each assigned its own LFSR spec, AES key, and IV. It reproduces
// the reference planner's greedy power-of-two decomposition: as many
// maximal segments as fit, then a minimum-segment-count top-up, then a
// residual segment for any non-power-of-two leftover, then a final
// Fisher-Yates shuffle of segment order that leaves the last segment's
// position fixed.
func BuildPlan(length uint64) ([]Key, error) {
	if length == 0 {
		return nil, fmt.Errorf("segment: cannot plan a zero-length file")
	}

	plans, err := decompose(length)
	if err != nil {
		return nil, err
	}

	keys := make([]Key, len(plans))
	for i, p := range plans {
		k, err := newKey(p)
		if err != nil {
			return nil, fmt.Errorf("segment: building key for segment %d: %w", i, err)
		}
		keys[i] = k
	}

	shuffle(keys)
	return keys, nil
}

// decompose splits length into a sequence of segment plaintext sizes. It
// follows the reference planner's three steps:
//
//  1. Greedy power-of-two decomposition: starting from cap = MaxSize, while
//     length remains and cap has not shrunk below MinSize, emit a segment
//     of size cap whenever the remaining length exceeds cap (shrinking
//     length by cap without resetting cap), otherwise halve cap. This
//     yields a list of power-of-two plaintext sizes plus a residual r.
//  2. Minimum segment count: at least 3 power-of-two segments are required
//     once their combined size reaches 3*MinSize; short of that, a
//     residual counts as the third and only 2 are required. Short of the
//     requirement, the first segment larger than MinSize is repeatedly
//     halved, each halving appending one new equal-sized segment, until
//     the count is met or no segment qualifies for another split.
//  3. If r > 0, append one final segment with plaintext size r.
//
// Every segment's OutSize is then set by outSizeFor: the smallest
// registered power of two that can hold its plaintext size, so a residual
// segment's gap is padded.
func decompose(length uint64) ([]sizePlan, error) {
	var sizes []uint32
	segCap := uint64(constants.MaxSize)
	remaining := length

	for remaining > 0 && segCap >= constants.MinSize {
		if remaining > segCap {
			sizes = append(sizes, uint32(segCap))
			remaining -= segCap
		} else {
			segCap /= 2
		}
	}

	hasResidual := remaining > 0

	var covered uint64
	for _, s := range sizes {
		covered += uint64(s)
	}

	minSegments := 3
	if covered < 3*constants.MinSize && hasResidual {
		minSegments = 2
	}

	for len(sizes) < minSegments {
		idx := -1
		for i, s := range sizes {
			if s > constants.MinSize {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}
		half := sizes[idx] / 2
		sizes[idx] = half
		sizes = append(sizes, half)
	}

	if hasResidual {
		sizes = append(sizes, uint32(remaining))
	}

	if len(sizes) == 0 {
		return nil, fmt.Errorf("segment: length %d is too small to plan", length)
	}

	plans := make([]sizePlan, len(sizes))
	for i, in := range sizes {
		plans[i] = sizePlan{inSize: in, outSize: outSizeFor(in)}
	}

	return plans, nil
}

// outSizeFor returns the smallest registered power of two in
// [constants.MinSize, constants.MaxSize] that is at least in.
func outSizeFor(in uint32) uint32 {
	out := uint32(constants.MinSize)
	for out < in {
		out <<= 1
	}
	return out
}

// newKey builds a fresh Key from a size plan: a random AES key and IV, and
// an LFSR spec sized to and verified against p.outSize.
func newKey(p sizePlan) (Key, error) {
	var g lfsr.Generator
	var lastErr error
	for attempt := 0; attempt < maxVerifyRetries; attempt++ {
		err := g.Reset(p.outSize, 0, -1)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if lastErr != nil {
		return Key{}, fmt.Errorf("could not find a verified LFSR spec after %d attempts: %w", maxVerifyRetries, lastErr)
	}

	var k Key
	k.InSize = p.inSize
	k.OutSize = p.outSize
	k.LFSR = g.GetSpec()

	if _, err := rand.Read(k.IV[:]); err != nil {
		return Key{}, fmt.Errorf("segment: generating IV: %w", err)
	}
	if _, err := rand.Read(k.AESKey[:]); err != nil {
		return Key{}, fmt.Errorf("segment: generating AES key: %w", err)
	}

	return k, nil
}

// shuffle randomizes segment order in place using Fisher-Yates restricted
// to the middle of the list: both the swap source and target range over
// [1, n-2], so index 0 and the last index are never selected as either
// side of a swap and end the shuffle exactly where they started. This
// mirrors the reference planner's documented quirk exactly: "the shuffle
// loop leaves the final segment's position fixed."
func shuffle(keys []Key) {
	n := len(keys)
	if n < 3 {
		return
	}
	for i := 1; i < n-1; i++ {
		j := 1 + mrand.IntN(n-2)
		keys[i], keys[j] = keys[j], keys[i]
	}
}
