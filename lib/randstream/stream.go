// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package randstream turns the lehmer generator into bounded-memory,
// exact-length block streams, and guards their delivery with a
// per-block deadline.
//
// The pipeline for one download is:
//
//	New(size, seed) → Guard(..., timeout, clock) → the HTTP handler's
//	write loop
//
// A Stream owns one generator and one fixed buffer for its whole
// lifetime; nothing is shared between requests.
package randstream

import (
	"io"

	"github.com/netgauge/speedfile/lib/lehmer"
)

// The reusable buffer is filled in fixed sub-chunks: four generator
// passes of 4 KiB each. The buffer is regenerated in full on every
// step even when only part of it will be emitted, trading a little
// generator work for a branch-free fill loop.
const (
	subChunkSize = 4096
	numSubChunks = 4

	// BlockSize is the maximum length of a block emitted by a Stream.
	BlockSize = subChunkSize * numSubChunks
)

// A BlockSource is a lazy, finite, non-restartable sequence of byte
// blocks. NextBlock returns the next block, or io.EOF at natural end.
// The returned slice is owned by the caller.
type BlockSource interface {
	NextBlock() ([]byte, error)
}

// Stream produces exactly the requested number of pseudorandom bytes
// as a sequence of blocks. The final block is truncated so the
// concatenated length matches the target exactly.
type Stream struct {
	buf    [BlockSize]byte
	gen    *lehmer.Lehmer64X3
	length uint64
	done   uint64
}

// New creates a Stream of length bytes from a 24-byte generator seed
// (see DeriveSeed). Length zero is valid and yields an immediately
// empty sequence.
func New(length uint64, seed []byte) (*Stream, error) {
	gen, err := lehmer.NewLehmer64X3(seed)
	if err != nil {
		return nil, err
	}
	return &Stream{gen: gen, length: length}, nil
}

// Length returns the total number of bytes the stream will emit.
func (s *Stream) Length() uint64 { return s.length }

// NextBlock regenerates the buffer and returns a copy of the next
// block, or io.EOF once the target length has been emitted.
func (s *Stream) NextBlock() ([]byte, error) {
	if s.done >= s.length {
		return nil, io.EOF
	}

	for i := 0; i < numSubChunks; i++ {
		lehmer.Fill(s.gen, s.buf[i*subChunkSize:(i+1)*subChunkSize])
	}

	n := uint64(BlockSize)
	if remaining := s.length - s.done; remaining < n {
		n = remaining
	}
	s.done += n

	// Copy out: the buffer is overwritten on the next step, and blocks
	// cross a goroutine boundary once a Guard is layered on top.
	block := make([]byte, n)
	copy(block, s.buf[:n])
	return block, nil
}

// Reader adapts a BlockSource to io.Reader for consumers that want a
// plain byte stream.
type Reader struct {
	src  BlockSource
	rest []byte
	err  error
}

// NewReader wraps src. After the first non-nil error the reader is
// exhausted and keeps returning that error.
func NewReader(src BlockSource) *Reader {
	return &Reader{src: src}
}

func (r *Reader) Read(p []byte) (int, error) {
	for len(r.rest) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.rest, r.err = r.src.NextBlock()
	}
	n := copy(p, r.rest)
	r.rest = r.rest[n:]
	return n, nil
}
