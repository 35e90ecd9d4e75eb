// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package randstream

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/netgauge/speedfile/lib/clock"
)

// sliceSource replays fixed blocks, optionally ending with an error
// other than io.EOF.
type sliceSource struct {
	blocks [][]byte
	err    error
}

func (s *sliceSource) NextBlock() ([]byte, error) {
	if len(s.blocks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	block := s.blocks[0]
	s.blocks = s.blocks[1:]
	return block, nil
}

func TestGuardPassThrough(t *testing.T) {
	src := &sliceSource{blocks: [][]byte{[]byte("aa"), []byte("bb"), []byte("cc")}}
	clk := clock.Fake(time.Now())
	g := Guard(src, 20*time.Second, clk)
	defer g.Close()

	for _, want := range []string{"aa", "bb", "cc"} {
		block, err := g.NextBlock()
		if err != nil {
			t.Fatalf("NextBlock: %v", err)
		}
		if string(block) != want {
			t.Errorf("block = %q, want %q", block, want)
		}
	}
	if _, err := g.NextBlock(); err != io.EOF {
		t.Errorf("after end: %v, want io.EOF", err)
	}
}

// A consumer that stalls past the deadline on block k receives exactly
// the k-1 earlier blocks and then a clean end with no error.
func TestGuardTimeoutEndsCleanly(t *testing.T) {
	src := &sliceSource{blocks: [][]byte{[]byte("one"), []byte("two"), []byte("three")}}
	clk := clock.Fake(time.Now())
	g := Guard(src, 20*time.Second, clk)
	defer g.Close()

	if _, err := g.NextBlock(); err != nil {
		t.Fatalf("first block: %v", err)
	}

	// The second After registration happens when the pump offers
	// block two. Waiting for it guarantees the pump is parked in its
	// second select before the deadline fires; Done then guarantees
	// the pump committed to the timer before we poll again.
	clk.WaitForWaiters(2)
	clk.Advance(20 * time.Second)
	<-g.Done()

	if _, err := g.NextBlock(); err != io.EOF {
		t.Errorf("after timeout: %v, want io.EOF", err)
	}
}

// The deadline resets on every successful handoff: consuming each
// block just inside the deadline lets the whole stream through.
func TestGuardDeadlineResetsPerBlock(t *testing.T) {
	src := &sliceSource{blocks: [][]byte{[]byte("a"), []byte("b"), []byte("c")}}
	clk := clock.Fake(time.Now())
	g := Guard(src, 20*time.Second, clk)
	defer g.Close()

	// Waiters accumulate one per offered block; WaitForWaiters(i+1)
	// pins the pump inside the select for block i+1 before time moves.
	// Each advance stops one second short of the live deadline.
	var got []byte
	for i := 0; i < 3; i++ {
		clk.WaitForWaiters(i + 1)
		clk.Advance(19 * time.Second)
		block, err := g.NextBlock()
		if err != nil {
			t.Fatalf("block %d: %v", i, err)
		}
		got = append(got, block...)
	}
	if !bytes.Equal(got, []byte("abc")) {
		t.Errorf("got %q, want %q", got, "abc")
	}
}

func TestGuardClose(t *testing.T) {
	// A stream far longer than the consumer will read.
	s, err := New(100*BlockSize, DeriveSeed("close"))
	if err != nil {
		t.Fatal(err)
	}
	g := Guard(s, 20*time.Second, clock.Fake(time.Now()))

	if _, err := g.NextBlock(); err != nil {
		t.Fatalf("first block: %v", err)
	}
	g.Close()
	g.Close() // idempotent
	<-g.Done()

	if _, err := g.NextBlock(); err != io.EOF {
		t.Errorf("after Close: %v, want io.EOF", err)
	}
}

func TestGuardForwardsSourceError(t *testing.T) {
	wantErr := errors.New("source failure")
	src := &sliceSource{blocks: [][]byte{[]byte("x")}, err: wantErr}
	g := Guard(src, 20*time.Second, clock.Fake(time.Now()))
	defer g.Close()

	if _, err := g.NextBlock(); err != nil {
		t.Fatalf("first block: %v", err)
	}
	if _, err := g.NextBlock(); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

// End-to-end over a real stream with a real clock and a fast consumer:
// the guard must be invisible.
func TestGuardOverStream(t *testing.T) {
	seed := DeriveSeed("guarded")
	s, _ := New(123456, seed)
	g := Guard(s, time.Minute, clock.Real())
	defer g.Close()

	guarded, _ := drain(t, g)

	ref, _ := New(123456, seed)
	plain, _ := drain(t, ref)
	if !bytes.Equal(guarded, plain) {
		t.Error("guarded stream differs from unguarded stream")
	}
}
