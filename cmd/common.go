package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/docstruct/internal/config"
	"github.com/itsmostafa/docstruct/internal/output"
	"github.com/itsmostafa/docstruct/internal/pdftext"
	"github.com/itsmostafa/docstruct/internal/structure"
)

// Flags shared by the extraction commands.
var (
	pageSpec        string
	tocThreshold    float64
	indexThreshold  float64
	blankBreak      int
	tabWidth        int
	numberingFirst  bool
	flatOutput      bool
	leavesOnly      bool
	showSummary     bool
	scanLimit       int
	scanWorkers     int
	forceModeOption string
)

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pageSpec, "pages", "", "Pages to read, e.g. 3-5,9 (default all)")
}

func addDetectionFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tocThreshold, "toc-threshold", 0, "Share of lines that must look like TOC entries")
	cmd.Flags().Float64Var(&indexThreshold, "index-threshold", 0, "Share of lines that must look like index entries")
	cmd.Flags().IntVar(&blankBreak, "blank-break", 0, "Blank lines that end an index entry")
	cmd.Flags().IntVar(&tabWidth, "tab-width", 0, "Columns per tab when measuring indentation")
	cmd.Flags().BoolVar(&numberingFirst, "numbering-first", false, "Prefer numbered headings over dot leaders")
}

func addResultFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flatOutput, "flat", false, "Print the TOC as a flat list")
	cmd.Flags().BoolVar(&leavesOnly, "leaves", false, "Print only TOC entries without children")
	cmd.Flags().BoolVar(&showSummary, "summary", false, "Append a summary of the structure")
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&scanLimit, "scan-limit", 0, "Only scan the first N pages (0 = all)")
	cmd.Flags().IntVar(&scanWorkers, "workers", 0, "Pages classified in parallel")
}

// applyFlags pushes the flags the user set into the config manager.
func applyFlags(cmd *cobra.Command) error {
	overrides := []struct {
		flag  string
		key   string
		value any
	}{
		{"toc-threshold", "detection.toc_ratio_threshold", tocThreshold},
		{"index-threshold", "detection.index_ratio_threshold", indexThreshold},
		{"numbering-first", "detection.numbering_first", numberingFirst},
		{"scan-limit", "detection.scan_limit", scanLimit},
		{"workers", "detection.workers", scanWorkers},
		{"force", "detection.force_mode", forceModeOption},
		{"blank-break", "index.blank_run_entry_break", blankBreak},
		{"tab-width", "normalize.tab_width", tabWidth},
	}
	for _, o := range overrides {
		if cmd.Flags().Lookup(o.flag) == nil || !cmd.Flags().Changed(o.flag) {
			continue
		}
		if err := state.cm.Override(o.key, o.value); err != nil {
			return err
		}
	}
	return nil
}

// newEngine builds an engine from the active configuration.
func newEngine(cfg *config.Config) (*structure.Engine, error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	return structure.New(engineCfg, structure.WithLogger(state.logger))
}

// loadPages reads the document and blanks pages outside --pages.
// Transient extraction failures are retried.
func loadPages(ctx context.Context, path string) ([]string, error) {
	cfg := state.cm.Get()

	refs, err := pageSelection()
	if err != nil {
		return nil, err
	}

	ex, err := pdftext.New(cfg.Extract.Backend, cfg.Extract.Layout)
	if err != nil {
		return nil, err
	}

	var pages []string
	err = retry.Do(
		func() error {
			var err error
			pages, err = pdftext.Load(ctx, path, ex)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(cfg.Extract.Retries)),
		retry.Delay(cfg.RetryDelayDuration()),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			state.logger.Warn("extraction failed, retrying", "path", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	state.logger.Info("loaded document", "path", path, "pages", len(pages), "backend", ex.Name())
	if err := pdftext.CheckText(pages); err != nil {
		// Still classified, so the result is plain with zero confidence.
		state.logger.Warn("document has no text, scanned PDFs need OCR first", "path", path, "error", err)
	}
	return pdftext.Select(pages, refs), nil
}

func pageSelection() ([]structure.PageReference, error) {
	if pageSpec == "" {
		return nil, nil
	}
	refs, ok := structure.ParsePageList(pageSpec)
	if !ok {
		return nil, fmt.Errorf("invalid --pages value %q (expected e.g. 3-5,9)", pageSpec)
	}
	return refs, nil
}

// retryable reports whether another extraction attempt could succeed.
func retryable(err error) bool {
	switch {
	case errors.Is(err, pdftext.ErrPopplerMissing),
		errors.Is(err, pdftext.ErrUnknownBackend),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), state.format, output.Options{
		Flat:    flatOutput,
		Leaves:  leavesOnly,
		Summary: showSummary,
	})
}
