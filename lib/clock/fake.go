// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests. Every After call
// registers a pending waiter; Advance moves the clock forward and
// fires every waiter whose deadline has passed.
//
// A goroutine under test typically calls After and then blocks in a
// select. Use WaitForWaiters to ensure the registration has happened
// before calling Advance; that removes the race between timer setup
// and time advancement that real-clock sleeps would paper over.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
	changed *sync.Cond

	// registered counts every After call ever made, fired or not.
	// WaitForWaiters is defined over this monotonic count so callers
	// can reason about "the Nth timer" without caring which earlier
	// timers have already fired.
	registered int
}

type fakeWaiter struct {
	deadline time.Time
	ch       chan time.Time
	fired    bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a waiter that fires when the clock advances past
// now + d. If d <= 0, the channel receives immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	c.registered++
	if d <= 0 {
		ch <- c.current
		c.changed.Broadcast()
		return ch
	}
	c.waiters = append(c.waiters, &fakeWaiter{
		deadline: c.current.Add(d),
		ch:       ch,
	})
	c.changed.Broadcast()
	return ch
}

// Advance moves the clock forward by d and fires every pending waiter
// whose deadline is now reached. Fired waiters are removed.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.fired && !w.deadline.After(c.current) {
			w.fired = true
			w.ch <- c.current
			continue
		}
		remaining = append(remaining, w)
	}
	c.waiters = remaining
}

// WaitForWaiters blocks until at least n After calls have been made
// over the clock's lifetime. Call this before Advance when the After
// happens in another goroutine, to remove the registration race.
func (c *FakeClock) WaitForWaiters(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.registered < n {
		c.changed.Wait()
	}
}
