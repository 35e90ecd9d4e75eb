// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/netgauge/speedfile/lib/accesslog"
	"github.com/netgauge/speedfile/lib/clock"
	"github.com/netgauge/speedfile/lib/config"
	"github.com/netgauge/speedfile/lib/randstream"
	"github.com/netgauge/speedfile/lib/version"
	"github.com/netgauge/speedfile/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("speedfile", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to config file (YAML, or JSONC with a .jsonc extension)")
	listen := flagSet.String("listen", "", "TCP listen address (overrides config)")
	accessLogPath := flagSet.String("access-log", "", "access log path (overrides config)")
	maxFileSize := flagSet.String("max-file-size", "", "maximum download size, e.g. 10gib (overrides config)")
	showVersion := flagSet.BoolP("version", "V", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Printf("speedfile %s\n", version.Info())
		return nil
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if *listen != "" {
		cfg.Listen = *listen
	}
	if *accessLogPath != "" {
		cfg.AccessLog = *accessLogPath
	}
	if *maxFileSize != "" {
		cfg.MaxFileSize = *maxFileSize
	}

	maxBytes, err := cfg.MaxBytes()
	if err != nil {
		return err
	}
	sendTimeout, err := cfg.SendTimeoutDuration()
	if err != nil {
		return err
	}

	logger := server.NewLogger()

	fileServer := server.NewFileServer(server.Options{
		MaxFileSize: maxBytes,
		SendTimeout: sendTimeout,
		Seed:        randstream.DeriveSeed(cfg.Seed),
		AccessLog:   accesslog.New(cfg.AccessLog, cfg.TrustProxyHeaders),
		IndexSizes:  cfg.IndexSizes,
		Clock:       clock.Real(),
		Logger:      logger,
	})

	httpServer := server.NewHTTPServer(server.HTTPServerConfig{
		Address: cfg.Listen,
		Handler: fileServer,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("speedfile starting",
		"version", version.Info(),
		"listen", cfg.Listen,
		"max_file_size", maxBytes,
		"send_timeout", sendTimeout,
		"access_log", cfg.AccessLog,
		"trust_proxy_headers", cfg.TrustProxyHeaders,
	)

	return httpServer.Serve(ctx)
}
