// Package lfsr implements the maximal-length Galois linear feedback shift
// register HyperCrypt uses to permute segment ciphertext bytes. Given a
// power-of-two size N=2^b, a Generator produces a deterministic permutation
// of [1, N-1] by iterating a primitive polynomial of degree b, seeded by a
// nonzero state.
package lfsr

import (
	"fmt"
	"math/rand/v2"

	"github.com/vilshansen/hypercrypt/constants"
)

// MinSize and MaxSize are the smallest and largest segment sizes a
// Generator can be reset to.
const (
	MinSize = constants.MinSize
	MaxSize = constants.MaxSize
)

// Generator is a single Galois LFSR instance. The zero value is not ready
// to use; call Reset or SetSpec first.
type Generator struct {
	poly  uint32
	seed  uint32
	state uint32
}

// bitsForSize returns the bit-width b such that size == 1<<b, or false if
// size is not a registered power of two in [MinSize, MaxSize].
func bitsForSize(size uint32) (uint, bool) {
	for b := uint(constants.MinBits); b <= constants.MaxBits; b++ {
		if uint32(1)<<b == size {
			return b, true
		}
	}
	return 0, false
}

// verify checks that iterating from seed under poly (a bit-width-bits
// Galois LFSR) visits every index in [1, 2^bits-1] exactly once before
// returning to seed, per spec: index 0 is the "home" slot and is treated
// as pre-marked.
func verify(poly uint32, bits uint, seed uint32) bool {
	period := uint32(1)<<bits - 1
	seed &= period
	if seed == 0 {
		return false
	}

	seen := make([]bool, uint32(1)<<bits)
	seen[0] = true

	x := seed
	var steps uint32
	for {
		if x == 0 || x > period {
			return false
		}
		if seen[x] {
			return false
		}
		seen[x] = true

		x = next(x, poly)
		steps++

		if x == seed {
			break
		}
		if steps >= period {
			return false
		}
	}

	for _, s := range seen {
		if !s {
			return false
		}
	}
	return true
}

// next advances a Galois LFSR state by one step under poly.
func next(x, poly uint32) uint32 {
	if x&1 != 0 {
		return (x >> 1) ^ poly
	}
	return x >> 1
}

// Reset selects a polynomial and seed for the given size and readies the
// generator to emit from that seed. size must equal 2^b for some
// registered b in [constants.MinBits, constants.MaxBits]. If variant is negative, a uniformly
// random registered variant is chosen; otherwise variant mod (number of
// variants for b) is used. If seed is 0, a uniformly random nonzero seed
// in [1, size-1] is chosen. Reset verifies the chosen (poly, seed) pair and
// fails without mutating the generator's state if verification fails.
func (g *Generator) Reset(size uint32, seed uint32, variant int) error {
	bits, ok := bitsForSize(size)
	if !ok {
		return fmt.Errorf("lfsr: size %d is not a power of two in [%d, %d]", size, MinSize, MaxSize)
	}

	variants := variantsFor(bits)
	if len(variants) == 0 {
		return fmt.Errorf("lfsr: no registered polynomials for %d bits", bits)
	}

	if variant < 0 {
		variant = rand.IntN(len(variants))
	} else {
		variant = variant % len(variants)
	}
	poly := variants[variant]

	if seed == 0 {
		seed = uint32(1 + rand.Int64N(int64(size)-1))
	}
	seed &= size - 1

	if !verify(poly, bits, seed) {
		return fmt.Errorf("lfsr: polynomial %#x/seed %#x failed verification for %d bits", poly, seed, bits)
	}

	g.poly = poly
	g.seed = seed
	g.state = seed
	return nil
}

// GetSpec packs the generator's current (seed, poly) into a 64-bit spec:
// low 32 bits are the seed, high 32 bits are the polynomial tap mask.
// Returns 0 (the error sentinel) if either half is zero.
func (g *Generator) GetSpec() uint64 {
	if g.seed == 0 || g.poly == 0 {
		return 0
	}
	return uint64(g.poly)<<32 | uint64(g.seed)
}

// SetSpec unpacks spec into (seed, poly), rejects it if either half is
// zero, and resets the running state to seed. It does not re-verify that
// poly is a valid primitive polynomial for the implied size — callers that
// need that guarantee should call Reset instead, or verify separately.
func (g *Generator) SetSpec(spec uint64) bool {
	seed := uint32(spec)
	poly := uint32(spec >> 32)
	if seed == 0 || poly == 0 {
		return false
	}
	g.seed = seed
	g.poly = poly
	g.state = seed
	return true
}

// Next advances the generator by one step and returns the new state.
// Returns 0 if the generator has no polynomial set.
func (g *Generator) Next() uint32 {
	if g.poly == 0 {
		return 0
	}
	g.state = next(g.state, g.poly)
	return g.state
}

// FillNext advances the generator len(buf) times, writing each successive
// state into buf. It returns an error the first time the state becomes
// zero, which cannot happen with a valid primitive polynomial and nonzero
// seed — this is a defense against an ill-formed spec set via SetSpec.
func (g *Generator) FillNext(buf []uint32) error {
	for i := range buf {
		buf[i] = g.Next()
		if buf[i] == 0 {
			return fmt.Errorf("lfsr: generator produced zero state at index %d, spec is malformed", i)
		}
	}
	return nil
}
