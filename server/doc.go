// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package server is the HTTP surface of speedfile: an index page at
// "/" and synthetic downloads at "/<size>", where <size> is a
// human-readable byte count like 100mb or 2gib, optionally with a
// file extension (/1gb.bin).
//
// A download response declares the exact Content-Length and streams
// pseudorandom, non-compressible bytes through a per-chunk timeout
// guard. A client that stops reading has its stream cut after the
// configured deadline and simply receives a short body; the access
// log records the bytes actually delivered either way.
package server
