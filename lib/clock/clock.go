// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so the
// per-chunk delivery deadline can be tested deterministically.
//
// Production code injects Real(); tests inject Fake() and drive time
// with Advance. Anything that would call time.Now or time.After takes
// a Clock instead.
package clock

import "time"

// Clock abstracts the time operations the streaming path needs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. Equivalent to time.After.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
