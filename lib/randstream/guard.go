// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package randstream

import (
	"io"
	"sync"
	"time"

	"github.com/netgauge/speedfile/lib/clock"
)

// Guarded wraps a BlockSource with a per-block delivery deadline. A
// pump goroutine pulls blocks from the source and offers each one to
// the consumer, racing a timer that is re-armed for every block. If
// the consumer does not take a block within the deadline, the sequence
// ends as if the source had reached natural end-of-data. No error is
// surfaced, so the HTTP layer sees a clean (short) end of body.
//
// The deadline is measured from the moment the pump starts waiting to
// hand over a block, so it resets on every successful step: a slow
// client is cut off per-chunk, while a fast client is never bounded.
type Guarded struct {
	blocks <-chan []byte
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	// err is set by the pump before it closes blocks; the channel
	// close orders it before any consumer read. io.EOF stays implicit.
	err error
}

// Guard starts the pump for src with the given per-block timeout.
// Callers must call Close when done with the sequence (normally via
// defer) so an abandoned pump does not hold the generator and buffer
// alive for a full timeout period.
func Guard(src BlockSource, timeout time.Duration, clk clock.Clock) *Guarded {
	blocks := make(chan []byte)
	g := &Guarded{
		blocks: blocks,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(g.done)
		defer close(blocks)
		for {
			block, err := src.NextBlock()
			if err != nil {
				if err != io.EOF {
					g.err = err
				}
				return
			}
			select {
			case blocks <- block:
			case <-clk.After(timeout):
				return
			case <-g.stop:
				return
			}
		}
	}()

	return g
}

// NextBlock returns the next block from the underlying source, or
// io.EOF once the source is exhausted, the deadline has expired, or
// the guard was closed.
func (g *Guarded) NextBlock() ([]byte, error) {
	block, ok := <-g.blocks
	if !ok {
		if g.err != nil {
			return nil, g.err
		}
		return nil, io.EOF
	}
	return block, nil
}

// Done returns a channel that is closed once the pump has exited:
// source exhausted, deadline expired, or Close called. After Done is
// closed the generator and buffer behind the source are unreachable
// from the guard and eligible for collection.
func (g *Guarded) Done() <-chan struct{} {
	return g.done
}

// Close tears the pump down. Safe to call more than once, and safe to
// call while a NextBlock is in flight; subsequent calls to NextBlock
// return io.EOF.
func (g *Guarded) Close() {
	g.once.Do(func() { close(g.stop) })
}
