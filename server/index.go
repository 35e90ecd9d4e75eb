// Copyright 2026 The Speedfile Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/netgauge/speedfile/lib/sizefmt"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type indexEntry struct {
	// Token is the URL path component, e.g. "100mb".
	Token string
	// Label is the human-readable size, e.g. "100 MB".
	Label string
}

// index renders the download listing. The page is rebuilt per request
// from the configured size list; it is tiny and this keeps the server
// stateless.
func (s *FileServer) index(w http.ResponseWriter) {
	entries := make([]indexEntry, 0, len(s.indexSizes))
	for _, token := range s.indexSizes {
		label := token
		if size, err := sizefmt.Parse(token, 0); err == nil {
			label = humanize.Bytes(size)
		}
		entries = append(entries, indexEntry{Token: token, Label: label})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, struct{ Entries []indexEntry }{entries}); err != nil {
		s.logger.Error("rendering index", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
