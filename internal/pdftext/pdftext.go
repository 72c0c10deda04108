// Package pdftext pulls per-page plain text out of PDFs and text files.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrUnknownBackend is returned by New for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown extraction backend")

	// ErrNoText is reported by CheckText when a document yields no text at all, usually a scanned PDF.
	ErrNoText = errors.New("no extractable text")

	// ErrPopplerMissing is returned when the pdftotext backend is requested but not installed.
	ErrPopplerMissing = errors.New("pdftotext not found: install poppler-utils (brew install poppler on macOS)")
)

// Extractor returns the text of every page of a PDF, in page order.
type Extractor interface {
	Name() string
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// New returns the extractor for a backend name: "pdftotext", "native" or "auto".
// Auto prefers pdftotext when it is installed since it keeps column layout.
func New(backend string, layout bool) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "pdftotext", "poppler":
		return &Poppler{Layout: layout}, nil
	case "native", "go":
		return &Native{}, nil
	case "", "auto":
		if _, err := exec.LookPath(pdftotextBin); err == nil {
			return &Poppler{Layout: layout}, nil
		}
		return &Native{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid options: auto, pdftotext, native)", ErrUnknownBackend, backend)
	}
}
