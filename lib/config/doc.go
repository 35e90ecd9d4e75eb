// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the speedfile
// server.
//
// Configuration is loaded from a single file specified by:
//   - SPEEDFILE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery; with neither set,
// built-in defaults apply. Files are YAML by default; a .json or
// .jsonc extension switches to JSONC (JSON extended with comments and
// trailing commas) for operators who author configs next to other
// JSONC tooling.
//
// Size-valued fields accept human-readable strings ("10gib", "500mb")
// and duration-valued fields accept Go duration strings ("20s").
package config
