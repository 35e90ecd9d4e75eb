// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/netgauge/speedfile/lib/randstream"
)

func TestHTTPServerLifecycle(t *testing.T) {
	fileServer := NewFileServer(Options{
		Seed:   randstream.DeriveSeed("lifecycle"),
		Logger: testLogger(),
	})
	httpServer := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: fileServer,
		Logger:  testLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() { serveDone <- httpServer.Serve(ctx) }()

	<-httpServer.Ready()

	resp, err := http.Get("http://" + httpServer.Addr().String() + "/1kb")
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || len(body) != 1000 {
		t.Errorf("status %d, %d bytes; want 200 with 1000 bytes", resp.StatusCode, len(body))
	}

	cancel()
	if err := <-serveDone; err != nil {
		t.Fatalf("Serve returned %v after graceful shutdown", err)
	}
}

func TestHTTPServerBindFailure(t *testing.T) {
	fileServer := NewFileServer(Options{
		Seed:   randstream.DeriveSeed("bind"),
		Logger: testLogger(),
	})

	first := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: fileServer,
		Logger:  testLogger(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- first.Serve(ctx) }()
	<-first.Ready()

	// Binding the same port again must fail fast with an error.
	second := NewHTTPServer(HTTPServerConfig{
		Address: first.Addr().String(),
		Handler: fileServer,
		Logger:  testLogger(),
	})
	if err := second.Serve(ctx); err == nil {
		t.Error("second Serve on the same address succeeded")
	}

	cancel()
	<-done
}
