// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package randstream

import (
	"github.com/zeebo/blake3"

	"github.com/netgauge/speedfile/lib/lehmer"
)

// DeriveSeed turns an operator-chosen seed phrase into the 24-byte
// generator seed: the first 24 bytes of the phrase's BLAKE3 hash. The
// empty phrase is hashed too, giving every deployment a well-defined
// default sequence: a multiplicative generator must never be seeded
// with literal zeros (zero state emits zeros forever). Payloads only
// need to look like noise, not be unpredictable, so a deployment-wide
// fixed seed is fine; it also makes served bytes reproducible.
func DeriveSeed(phrase string) []byte {
	sum := blake3.Sum256([]byte(phrase))
	seed := make([]byte, lehmer.SeedLenX3)
	copy(seed, sum[:])
	return seed
}
