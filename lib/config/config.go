// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/netgauge/speedfile/lib/sizefmt"
)

// Config is the full server configuration.
type Config struct {
	// Listen is the TCP address the HTTP server binds.
	Listen string `yaml:"listen" json:"listen"`

	// MaxFileSize is the largest size a client may request, as a
	// human-readable size string ("10gib"). Requests above it are
	// rejected with 400 before any generator is created.
	MaxFileSize string `yaml:"max_file_size" json:"max_file_size"`

	// AccessLog is the append-only access log path. Empty disables
	// access logging.
	AccessLog string `yaml:"access_log" json:"access_log"`

	// TrustProxyHeaders enables client address resolution from
	// X-Forwarded-For / X-Real-IP / Forwarded. Enable only behind a
	// reverse proxy that sanitizes these headers.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" json:"trust_proxy_headers"`

	// SendTimeout is the per-chunk delivery deadline ("20s"). A
	// client that takes longer than this to accept a chunk has its
	// download cut short.
	SendTimeout string `yaml:"send_timeout" json:"send_timeout"`

	// Seed is the generator seed phrase. All downloads are
	// deterministic for a given phrase; the default (empty) phrase
	// is fine for normal operation.
	Seed string `yaml:"seed" json:"seed"`

	// IndexSizes are the download tokens listed on the index page.
	IndexSizes []string `yaml:"index_sizes" json:"index_sizes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:      "127.0.0.1:3000",
		MaxFileSize: "10gib",
		SendTimeout: "20s",
		IndexSizes:  []string{"1mb", "10mb", "100mb", "1gb", "10gb"},
	}
}

// EnvVar names the environment variable Load consults for the config
// file path.
const EnvVar = "SPEEDFILE_CONFIG"

// Load loads configuration from the file named by SPEEDFILE_CONFIG,
// or returns Default when the variable is unset. There is no search
// path and no home-directory discovery.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. The format follows the
// extension: .json and .jsonc are parsed as JSONC (JSON plus comments
// and trailing commas), everything else as YAML. Fields absent from
// the file keep their Default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the derived fields parse. Load and LoadFile
// call it; callers constructing a Config by hand should too.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is empty")
	}
	if _, err := c.MaxBytes(); err != nil {
		return err
	}
	if _, err := c.SendTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// MaxBytes parses MaxFileSize into a byte count. Empty means the
// 10 GiB default.
func (c *Config) MaxBytes() (uint64, error) {
	s := c.MaxFileSize
	if s == "" {
		s = "10gib"
	}
	max, err := sizefmt.Parse(s, 0)
	if err != nil {
		return 0, fmt.Errorf("max_file_size %q: %w", c.MaxFileSize, err)
	}
	return max, nil
}

// SendTimeoutDuration parses SendTimeout. Empty means 20 seconds.
func (c *Config) SendTimeoutDuration() (time.Duration, error) {
	s := c.SendTimeout
	if s == "" {
		s = "20s"
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("send_timeout %q: %w", c.SendTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("send_timeout %q: must be positive", c.SendTimeout)
	}
	return d, nil
}
