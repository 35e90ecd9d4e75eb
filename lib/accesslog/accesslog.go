// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

// Package accesslog writes one Apache-combined-style line per
// completed or aborted transfer, and provides the byte-accounting
// wrapper that guarantees the line is written exactly once per stream
// lifetime with the count of bytes actually handed to the transport.
//
// Logging is best-effort: a log file that cannot be opened or written
// must never fail, delay, or abort the response path. The only shared
// state between in-flight requests is the log file, so a single mutex
// serializes the open-append-write sequence and nothing else.
package accesslog

import (
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/netgauge/speedfile/lib/remoteip"
)

// Record carries everything one log line needs. It is owned by a
// single request for its whole lifetime and never shared.
type Record struct {
	// Start is when the request began; it becomes the log timestamp.
	Start time.Time

	// Peer is the transport-level remote address. Zero when the
	// listener could not report one.
	Peer netip.AddrPort

	Method string
	Path   string
	Proto  string
	Status int

	// Forwarding headers, consulted only when the logger is
	// configured to trust proxies.
	ForwardedFor string
	RealIP       string
	Forwarded    string

	Referer   string
	UserAgent string

	// Bytes is the total actually sent: appended to as chunks are
	// delivered, final once the stream's lifetime ends.
	Bytes uint64
}

// NewRecord captures request metadata into a Record with Start set to
// now. Status and Bytes are filled in as the response progresses.
func NewRecord(r *http.Request) *Record {
	peer, _ := netip.ParseAddrPort(r.RemoteAddr)
	return &Record{
		Start:        time.Now(),
		Peer:         peer,
		Method:       r.Method,
		Path:         r.URL.Path,
		Proto:        r.Proto,
		Status:       http.StatusOK,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		RealIP:       r.Header.Get("X-Real-Ip"),
		Forwarded:    r.Header.Get("Forwarded"),
		Referer:      r.Header.Get("Referer"),
		UserAgent:    r.Header.Get("User-Agent"),
	}
}

// Logger appends transfer records to an append-only log file. The
// zero-value-like disabled state (empty path) discards everything, so
// callers never need to branch on whether logging is configured.
type Logger struct {
	mu           sync.Mutex
	path         string
	trustHeaders bool
}

// New creates a Logger writing to path, created on first use if
// absent. An empty path disables logging. trustHeaders enables
// proxy-forwarded client address resolution.
func New(path string, trustHeaders bool) *Logger {
	return &Logger{path: path, trustHeaders: trustHeaders}
}

// Log appends one line for the record. Failures are swallowed: there
// is nothing useful to do with a broken access log at request time,
// and the response must not be affected.
func (l *Logger) Log(r *Record) {
	if l == nil || l.path == "" {
		return
	}

	client := "unknown"
	if addr, ok := remoteip.Resolve(r.Peer, l.trustHeaders, r.ForwardedFor, r.RealIP, r.Forwarded); ok {
		client = addr.String()
	}

	// A zero count renders as "-" so an aborted-before-first-byte
	// transfer is distinguishable from a tiny one.
	length := "-"
	if r.Bytes > 0 {
		length = strconv.FormatUint(r.Bytes, 10)
	}

	line := fmt.Sprintf("%s - - [%s] \"%s %s %s\" %d %s %q %q\n",
		client,
		r.Start.Format("02/Jan/2006:15:04:05 -0700"),
		r.Method, r.Path, r.Proto,
		r.Status, length,
		r.Referer, r.UserAgent,
	)

	// The mutex covers open through close so concurrent completions
	// never interleave mid-line. Opening per write keeps the logger
	// robust against rotation and never holds a descriptor idle.
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line)
}
