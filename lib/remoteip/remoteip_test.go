// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package remoteip

import (
	"net/netip"
	"testing"
)

var peer = netip.MustParseAddrPort("198.51.100.7:41234")

func TestPeerWhenHeadersUntrusted(t *testing.T) {
	addr, ok := Resolve(peer, false, "203.0.113.9", "203.0.113.10", "for=203.0.113.11")
	if !ok || addr != peer.Addr() {
		t.Errorf("got %v/%v, want peer %v", addr, ok, peer.Addr())
	}
}

func TestForwardedForLeftMost(t *testing.T) {
	addr, ok := Resolve(peer, true, "203.0.113.9, 10.0.0.1, 10.0.0.2", "", "")
	if !ok || addr != netip.MustParseAddr("203.0.113.9") {
		t.Errorf("got %v/%v, want 203.0.113.9", addr, ok)
	}
}

func TestForwardedForWithPort(t *testing.T) {
	addr, ok := Resolve(peer, true, "203.0.113.9:12345", "", "")
	if !ok || addr != netip.MustParseAddr("203.0.113.9") {
		t.Errorf("got %v/%v, want 203.0.113.9", addr, ok)
	}
}

func TestRealIPFallback(t *testing.T) {
	addr, ok := Resolve(peer, true, "", "203.0.113.10", "")
	if !ok || addr != netip.MustParseAddr("203.0.113.10") {
		t.Errorf("got %v/%v, want 203.0.113.10", addr, ok)
	}
}

func TestForwardedHeader(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{`for=192.0.2.60;proto=http;by=203.0.113.43`, "192.0.2.60"},
		{`for=192.0.2.60, for=198.51.100.17`, "192.0.2.60"},
		{`For="[2001:db8:cafe::17]:4711"`, "2001:db8:cafe::17"},
		{`proto=https;for="192.0.2.61"`, "192.0.2.61"},
	}
	for _, c := range cases {
		addr, ok := Resolve(peer, true, "", "", c.header)
		if !ok || addr != netip.MustParseAddr(c.want) {
			t.Errorf("Forwarded %q: got %v/%v, want %s", c.header, addr, ok, c.want)
		}
	}
}

func TestGarbageHeadersFallBackToPeer(t *testing.T) {
	addr, ok := Resolve(peer, true, "not-an-ip", "also-bad", "for=nope")
	if !ok || addr != peer.Addr() {
		t.Errorf("got %v/%v, want peer %v", addr, ok, peer.Addr())
	}
}

func TestNothingResolvable(t *testing.T) {
	if _, ok := Resolve(netip.AddrPort{}, true, "", "", ""); ok {
		t.Error("resolved an address from nothing")
	}
}
