package pdftext

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsmostafa/docstruct/internal/structure"
)

// Stdin is the path that reads text from standard input.
const Stdin = "-"

// Load returns the pages of a document. PDFs go through the extractor; any
// other file is read as text with form feeds separating pages.
func Load(ctx context.Context, path string, ex Extractor) ([]string, error) {
	var pages []string
	var err error

	switch {
	case path == Stdin:
		pages, err = ReadPages(os.Stdin)
	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		if ex == nil {
			return nil, fmt.Errorf("%w: no extractor for %s", ErrUnknownBackend, path)
		}
		pages, err = ex.ExtractPages(ctx, path)
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		pages, err = ReadPages(f)
	}
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// CheckText reports ErrNoText when every page is blank.
func CheckText(pages []string) error {
	if !hasText(pages) {
		return ErrNoText
	}
	return nil
}

// ReadPages reads plain text and splits it into pages.
func ReadPages(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}
	return SplitPages(string(data)), nil
}

// SplitPages splits text on form feeds, as pdftotext emits between pages.
// A trailing form feed does not start an extra page.
func SplitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// Select blanks every page outside refs, keeping page numbers stable.
// No refs selects every page.
func Select(pages []string, refs []structure.PageReference) []string {
	if len(refs) == 0 {
		return pages
	}

	out := make([]string, len(pages))
	for _, ref := range refs {
		for n := max(ref.Start, 1); n <= ref.End && n <= len(pages); n++ {
			out[n-1] = pages[n-1]
		}
	}
	return out
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
