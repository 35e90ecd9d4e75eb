// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package remoteip resolves the effective client address for access
// logging: either the transport peer, or, when proxy headers are
// trusted, the address a reverse proxy reports for the original
// client.
package remoteip

import (
	"net/netip"
	"strings"
)

// Resolve returns the best-effort client address. With trustHeaders
// off, that is the transport peer. With it on, the proxy headers are
// consulted in order: the left-most X-Forwarded-For entry, then
// X-Real-IP, then the for= parameter of the first RFC 7239 Forwarded
// element; the peer is the fallback when none of them parse. The
// second return is false when no address could be determined at all.
func Resolve(peer netip.AddrPort, trustHeaders bool, forwardedFor, realIP, forwarded string) (netip.Addr, bool) {
	if trustHeaders {
		if addr, ok := fromForwardedFor(forwardedFor); ok {
			return addr, true
		}
		if addr, ok := parseAddr(realIP); ok {
			return addr, true
		}
		if addr, ok := fromForwarded(forwarded); ok {
			return addr, true
		}
	}
	if peer.IsValid() {
		return peer.Addr(), true
	}
	return netip.Addr{}, false
}

// fromForwardedFor takes the left-most entry of a comma-separated
// X-Forwarded-For value: the client closest to the origin, with each
// intermediate proxy appending itself to the right.
func fromForwardedFor(value string) (netip.Addr, bool) {
	first, _, _ := strings.Cut(value, ",")
	return parseAddr(first)
}

// fromForwarded extracts for= from the first element of an RFC 7239
// Forwarded header, e.g. `for=192.0.2.60;proto=http, for=203.0.113.43`.
func fromForwarded(value string) (netip.Addr, bool) {
	first, _, _ := strings.Cut(value, ",")
	for _, param := range strings.Split(first, ";") {
		key, val, ok := strings.Cut(param, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "for") {
			continue
		}
		return parseAddr(strings.Trim(strings.TrimSpace(val), `"`))
	}
	return netip.Addr{}, false
}

// parseAddr accepts a bare IP, an IP:port pair, or a bracketed IPv6
// form, all of which appear in the wild in forwarding headers.
func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr, true
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr(), true
	}
	// Bracketed IPv6 without a port, e.g. "[2001:db8::1]".
	if trimmed := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"); trimmed != s {
		if addr, err := netip.ParseAddr(trimmed); err == nil {
			return addr, true
		}
	}
	return netip.Addr{}, false
}
