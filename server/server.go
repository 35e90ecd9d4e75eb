// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/netgauge/speedfile/lib/accesslog"
	"github.com/netgauge/speedfile/lib/clock"
	"github.com/netgauge/speedfile/lib/randstream"
	"github.com/netgauge/speedfile/lib/sizefmt"
)

// Options configures a FileServer.
type Options struct {
	// MaxFileSize is the largest request honored, in bytes.
	// Defaults to 10 GiB if zero.
	MaxFileSize uint64

	// SendTimeout is the per-chunk delivery deadline. Defaults to
	// 20 seconds if zero.
	SendTimeout time.Duration

	// Seed is the 24-byte generator seed (randstream.DeriveSeed).
	// Required.
	Seed []byte

	// AccessLog receives one line per transfer. A disabled logger
	// (accesslog.New("", false)) is fine; nil is treated the same.
	AccessLog *accesslog.Logger

	// IndexSizes are the download tokens listed on the index page.
	// Defaults to a standard ladder if empty.
	IndexSizes []string

	// Clock drives the per-chunk deadline. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// FileServer serves the index page and synthetic download streams.
// One instance handles all requests; per-request state (generator,
// buffer, guard, account) is created in the handler and owned by that
// request alone.
type FileServer struct {
	maxFileSize uint64
	sendTimeout time.Duration
	seed        []byte
	accessLog   *accesslog.Logger
	indexSizes  []string
	clock       clock.Clock
	logger      *slog.Logger
}

// NewFileServer creates the handler for the given options.
func NewFileServer(options Options) *FileServer {
	if len(options.Seed) == 0 {
		panic("server.FileServer: Seed is required")
	}
	if options.Logger == nil {
		panic("server.FileServer: Logger is required")
	}

	maxFileSize := options.MaxFileSize
	if maxFileSize == 0 {
		maxFileSize = 10 << 30
	}
	sendTimeout := options.SendTimeout
	if sendTimeout == 0 {
		sendTimeout = 20 * time.Second
	}
	indexSizes := options.IndexSizes
	if len(indexSizes) == 0 {
		indexSizes = []string{"1mb", "10mb", "100mb", "1gb", "10gb"}
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &FileServer{
		maxFileSize: maxFileSize,
		sendTimeout: sendTimeout,
		seed:        options.Seed,
		accessLog:   options.AccessLog,
		indexSizes:  indexSizes,
		clock:       clk,
		logger:      options.Logger,
	}
}

func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	record := accesslog.NewRecord(r)
	counting := &countingWriter{ResponseWriter: w}

	// Streamed downloads log through their transfer account (which
	// alone knows the final byte count); everything else is logged
	// here from what the counting writer saw.
	if streamed := s.route(counting, r, record); !streamed {
		record.Status = counting.status
		record.Bytes = counting.bytes
		s.accessLog.Log(record)
	}
}

func (s *FileServer) route(w *countingWriter, r *http.Request, record *accesslog.Record) (streamed bool) {
	token := strings.TrimPrefix(r.URL.Path, "/")
	switch {
	case token == "":
		s.index(w)
		return false
	case strings.ContainsRune(token, '/'):
		http.Error(w, "not found", http.StatusNotFound)
		return false
	default:
		return s.download(w, r, token, record)
	}
}

// download streams exactly the requested number of bytes, or sends a
// client error for tokens that do not name a servable size. A token
// that does not even start with a digit is an unknown route (404); a
// digit-leading token that fails to parse, or parses beyond the
// configured maximum, is a bad request (400).
func (s *FileServer) download(w *countingWriter, r *http.Request, token string, record *accesslog.Record) (streamed bool) {
	if !sizefmt.LooksNumeric(token) {
		http.Error(w, "not found", http.StatusNotFound)
		return false
	}

	size, err := sizefmt.Parse(token, s.maxFileSize)
	if errors.Is(err, sizefmt.ErrTooLarge) {
		http.Error(w, "too big", http.StatusBadRequest)
		return false
	}
	if err != nil {
		http.Error(w, "cannot parse size", http.StatusBadRequest)
		return false
	}

	source, err := randstream.New(size, s.seed)
	if err != nil {
		// Only a malformed seed can land here, which is a
		// construction-time bug, not client input.
		s.logger.Error("creating random stream", "error", err, "size", size)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}

	header := w.Header()
	header.Set("Content-Type", "application/binary")
	header.Set("Content-Disposition", "attachment; filename="+token)
	header.Set("Content-Length", strconv.FormatUint(size, 10))
	header.Set("Cache-Control", "no-cache, no-store, no-transform, must-revalidate")
	header.Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	record.Status = http.StatusOK

	guarded := randstream.Guard(source, s.sendTimeout, s.clock)
	defer guarded.Close()

	account := accesslog.NewAccount(guarded, func(total uint64) {
		record.Bytes = total
		s.accessLog.Log(record)
	})
	// The deferred finalize is the exactly-once guarantee: it runs on
	// natural completion, timeout cutoff, client disconnect, and
	// handler panic alike.
	defer account.Finalize()

	control := http.NewResponseController(w)
	for {
		block, err := account.NextBlock()
		if err != nil {
			// io.EOF: completed, timed out, or torn down. The
			// client observes a short body against Content-Length
			// when the stream was cut; nothing else to send.
			return true
		}

		// The transport write gets the same deadline as the guard,
		// re-armed per chunk, so a stalled client cannot park the
		// handler in Write indefinitely. Not every ResponseWriter
		// supports deadlines (recorders in tests don't); that is
		// fine, the guard still bounds the pump.
		control.SetWriteDeadline(time.Now().Add(s.sendTimeout))
		if _, err := w.Write(block); err != nil {
			return true
		}
	}
}

// countingWriter records the status code and body bytes written, for
// log lines on the non-streamed paths.
type countingWriter struct {
	http.ResponseWriter
	status int
	bytes  uint64
}

func (w *countingWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *countingWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += uint64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer for
// per-request write deadlines.
func (w *countingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
