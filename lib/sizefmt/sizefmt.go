// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package sizefmt parses download-file name tokens like "100mb.bin"
// into byte counts. Units are the humanize table: decimal suffixes
// (kb, mb, gb, ...) are powers of 1000, IEC suffixes (kib, mib, ...)
// powers of 1024, all case-insensitive, so /1mb and /1MB serve the
// same file. A bare number is a byte count.
package sizefmt

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrBadSize reports a token that could not be parsed as a size.
var ErrBadSize = errors.New("sizefmt: cannot parse size")

// ErrTooLarge reports a size above the configured maximum. Callers
// distinguish it from ErrBadSize only for the error message; both are
// client errors.
var ErrTooLarge = errors.New("sizefmt: size exceeds maximum")

// LooksNumeric reports whether the token starts with an ASCII digit.
// The HTTP layer uses this to pick between "unknown path" (404) and
// "malformed size" (400) for tokens that fail to parse.
func LooksNumeric(token string) bool {
	return len(token) > 0 && token[0] >= '0' && token[0] <= '9'
}

// Parse strips one trailing extension from the token ("1gb.bin" →
// "1gb"), parses the rest as a human-readable size, and enforces max
// (0 means unlimited). The size itself may be zero.
func Parse(token string, max uint64) (uint64, error) {
	name, _, _ := strings.Cut(token, ".")
	size, err := humanize.ParseBytes(name)
	if err != nil {
		return 0, ErrBadSize
	}
	if max > 0 && size > max {
		return 0, ErrTooLarge
	}
	return size, nil
}
