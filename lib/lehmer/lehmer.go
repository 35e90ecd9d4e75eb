// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package lehmer implements the 128-bit multiplicative Lehmer
// pseudorandom generator used to synthesize download payloads.
//
// Each step multiplies a 128-bit state by a fixed odd constant
// (truncating on overflow) and emits the upper 64 bits of the state.
// The high half of the wide product is cheap to compute and looks like
// noise to any byte-counting client, which is all a throughput test
// needs. This is not a cryptographic generator and must never be used
// where unpredictability matters.
//
// Two variants are provided: [Lehmer64], a single state advanced on
// every call, and [Lehmer64X3], three interleaved states advanced in a
// round-robin batch. The batched variant hides the latency of the wide
// multiply on pipelined multiplier units and is the one the streaming
// path uses.
//
// Output words are packed into bytes little-endian by [Fill].
package lehmer

import (
	"encoding/binary"
	"errors"
	"math/bits"
)

// multiplier is the fixed 64-bit-derived constant for the 128-bit
// multiplicative step.
const multiplier = 0xda942042e4dd58b5

// Seed lengths in bytes for the two variants. Seeds are big-endian
// 64-bit integers, each widened into the low half of a 128-bit state.
const (
	SeedLen   = 8
	SeedLenX3 = 24
)

// ErrInvalidSeedLength is returned when a seed slice does not have the
// exact length the variant requires. Seeding is the only operation
// that can fail; generation itself cannot.
var ErrInvalidSeedLength = errors.New("lehmer: invalid seed length")

// Source is a deterministic 64-bit word generator. The order of
// NextWord calls is significant: the byte stream served to clients is
// the little-endian concatenation of successive words.
type Source interface {
	NextWord() uint64
}

// word128 is a 128-bit unsigned integer as a hi/lo pair. Go has no
// native uint128, so the multiplicative step is assembled from
// bits.Mul64 plus the wrapping cross product.
type word128 struct {
	hi, lo uint64
}

// advance multiplies the state by multiplier mod 2^128.
func (w *word128) advance() {
	hi, lo := bits.Mul64(w.lo, multiplier)
	w.hi = hi + w.hi*multiplier
	w.lo = lo
}

// Lehmer64 is the single-state variant: one wide multiply per word.
type Lehmer64 struct {
	state word128
}

// NewLehmer64 seeds a single-state generator from an 8-byte big-endian
// seed. Constructing two generators from the same seed always yields
// identical output sequences.
func NewLehmer64(seed []byte) (*Lehmer64, error) {
	if len(seed) != SeedLen {
		return nil, ErrInvalidSeedLength
	}
	return &Lehmer64{
		state: word128{lo: binary.BigEndian.Uint64(seed)},
	}, nil
}

// NextWord advances the state and returns its upper 64 bits.
func (g *Lehmer64) NextWord() uint64 {
	g.state.advance()
	return g.state.hi
}

// Lehmer64X3 is the pipelined variant: three independent states cycled
// by a modulo-3 cursor. Every third call performs one multiply on each
// of the three states; the three fresh outputs are then handed out one
// per call. Each individual state's sequence is statistically identical
// to a single Lehmer64, but the three multiplies overlap in the CPU
// pipeline, roughly tripling word throughput.
type Lehmer64X3 struct {
	states [3]word128
	pos    int
}

// NewLehmer64X3 seeds the three-state generator from a 24-byte seed:
// three independent big-endian 64-bit seeds, one per state. The cursor
// starts at 2 so the very first NextWord call triggers a batch update.
func NewLehmer64X3(seed []byte) (*Lehmer64X3, error) {
	if len(seed) != SeedLenX3 {
		return nil, ErrInvalidSeedLength
	}
	g := &Lehmer64X3{pos: 2}
	for i := range g.states {
		g.states[i] = word128{lo: binary.BigEndian.Uint64(seed[i*8:])}
	}
	return g, nil
}

// NextWord returns the next output word, advancing all three states in
// a batch once every three calls.
func (g *Lehmer64X3) NextWord() uint64 {
	g.pos++
	if g.pos == 3 {
		g.states[0].advance()
		g.states[1].advance()
		g.states[2].advance()
		g.pos = 0
	}
	return g.states[g.pos].hi
}

// Fill writes successive words from src into p, little-endian. A
// trailing fragment shorter than 8 bytes takes the low bytes of one
// final word. Fill consumes ceil(len(p)/8) words; the mapping from
// word sequence to byte offsets is fixed, so the byte at any offset is
// stable for a given seed.
func Fill(src Source, p []byte) {
	for len(p) >= 8 {
		binary.LittleEndian.PutUint64(p, src.NextWord())
		p = p[8:]
	}
	if len(p) > 0 {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], src.NextWord())
		copy(p, tail[:len(p)])
	}
}
