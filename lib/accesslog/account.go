// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package accesslog

import (
	"sync"

	"github.com/netgauge/speedfile/lib/randstream"
)

// Account wraps a block sequence and counts every byte that passes
// through on its way to the transport. Finalize fires the completion
// hook exactly once with the final count, no matter how the stream's
// life ends: natural completion, timeout-triggered early end, or an
// abrupt drop. The owner of the stream's lifetime (in practice the
// HTTP handler, via defer) is responsible for calling Finalize on
// every exit path; the one-shot guard makes overlapping teardown
// paths safe.
type Account struct {
	src   randstream.BlockSource
	total uint64
	done  func(total uint64)
	once  sync.Once
}

// NewAccount wraps src. done is invoked by the first Finalize call
// with the number of bytes forwarded up to that point.
func NewAccount(src randstream.BlockSource, done func(total uint64)) *Account {
	return &Account{src: src, done: done}
}

// NextBlock forwards the next block from the wrapped source, adding
// its length to the running total.
func (a *Account) NextBlock() ([]byte, error) {
	block, err := a.src.NextBlock()
	a.total += uint64(len(block))
	return block, err
}

// Total returns the bytes counted so far.
func (a *Account) Total() uint64 { return a.total }

// Finalize runs the completion hook if it has not run yet. Safe to
// call multiple times; only the first call has any effect.
func (a *Account) Finalize() {
	a.once.Do(func() { a.done(a.total) })
}
