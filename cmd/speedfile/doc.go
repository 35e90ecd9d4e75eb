// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// speedfile is an HTTP server for download speed testing. It serves
// files of any requested size filled with fast pseudorandom data:
// GET /100mb streams exactly 100,000,000 bytes, GET /2gib.bin streams
// 2 GiB, and GET / renders an index of configured sizes.
//
// The payload is generated on the fly, never stored, and is
// non-compressible, so intermediaries cannot shrink it and throughput
// measurements stay honest. Responses carry cache-busting headers for
// the same reason.
//
// Configuration comes from a single YAML or JSONC file (--config or
// SPEEDFILE_CONFIG), with flags for the common overrides. Completed
// and aborted transfers are appended to an Apache-style access log
// with the byte count actually delivered.
package main
