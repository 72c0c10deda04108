package pdftext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const pdftotextBin = "pdftotext"

// Poppler extracts text with pdftotext from poppler-utils.
type Poppler struct {
	// Layout passes -layout so indentation and dot leaders survive extraction.
	Layout bool
}

func (p *Poppler) Name() string { return "pdftotext" }

// ExtractPages runs pdftotext once per page.
func (p *Poppler) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if _, err := exec.LookPath(pdftotextBin); err != nil {
		return nil, ErrPopplerMissing
	}

	pageCount, err := p.pageCount(ctx, path)
	if err != nil {
		return nil, err
	}

	pages := make([]string, pageCount)
	for i := 0; i < pageCount; i++ {
		text, err := p.extractPage(ctx, path, i+1)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i+1, err)
		}
		pages[i] = text
	}

	return pages, nil
}

// pageCount reads the page tree with pdfcpu, falling back to probing pdftotext
// for files pdfcpu refuses to parse.
func (p *Poppler) pageCount(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	count, err := api.PageCount(f, nil)
	f.Close()
	if err == nil && count > 0 {
		return count, nil
	}

	return p.pageCountFallback(ctx, path)
}

// pageCountFallback counts pages by binary search over single-page extractions.
func (p *Poppler) pageCountFallback(ctx context.Context, path string) (int, error) {
	low, high := 0, 10000

	for low < high {
		mid := (low + high + 1) / 2

		cmd := exec.CommandContext(ctx, pdftotextBin, "-f", strconv.Itoa(mid), "-l", strconv.Itoa(mid), path, "-")
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			high = mid - 1
		} else {
			low = mid
		}
	}

	if low == 0 {
		return 0, fmt.Errorf("could not determine page count of %s", path)
	}

	return low, nil
}

// extractPage extracts text from a single page of a PDF.
func (p *Poppler) extractPage(ctx context.Context, path string, pageNum int) (string, error) {
	args := []string{"-f", strconv.Itoa(pageNum), "-l", strconv.Itoa(pageNum)}
	if p.Layout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-")

	output, err := exec.CommandContext(ctx, pdftotextBin, args...).Output()
	if err != nil {
		return "", err
	}

	return string(output), nil
}
