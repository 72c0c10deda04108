package structure

import (
	"errors"
	"fmt"
)

// Config holds the tunable thresholds of the extraction engine.
type Config struct {
	// TOCRatioThreshold is the minimum share of non-blank lines matching TOC patterns
	// for a block to be classified as a table of contents.
	TOCRatioThreshold float64

	// IndexRatioThreshold is the minimum share of non-blank lines matching index patterns
	// for a block to be classified as an index.
	IndexRatioThreshold float64

	// BlankRunEntryBreak closes an open index entry once a run of consecutive blank lines reaches it (>=).
	BlankRunEntryBreak int

	// ForceMode bypasses the classifier when set to KindTOC or KindIndex.
	ForceMode Kind

	// TabWidth is the number of columns a leading tab counts for.
	TabWidth int

	// NumberingFirst checks numbered headings before leader and trailing-number lines.
	NumberingFirst bool

	// ScanLimit caps the number of pages examined by Scan. Zero scans every page.
	ScanLimit int

	// Workers is the number of pages Scan classifies in parallel.
	Workers int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TOCRatioThreshold:   0.5,
		IndexRatioThreshold: 0.4,
		BlankRunEntryBreak:  2,
		TabWidth:            4,
		Workers:             4,
	}
}

// Validate checks that every option is within range.
func (c *Config) Validate() error {
	var errs []error
	if c.TOCRatioThreshold < 0 || c.TOCRatioThreshold > 1 {
		errs = append(errs, fmt.Errorf("toc ratio threshold %.2f outside [0,1]", c.TOCRatioThreshold))
	}
	if c.IndexRatioThreshold < 0 || c.IndexRatioThreshold > 1 {
		errs = append(errs, fmt.Errorf("index ratio threshold %.2f outside [0,1]", c.IndexRatioThreshold))
	}
	if c.BlankRunEntryBreak < 1 {
		errs = append(errs, fmt.Errorf("blank run entry break must be at least 1, got %d", c.BlankRunEntryBreak))
	}
	if c.TabWidth < 1 {
		errs = append(errs, fmt.Errorf("tab width must be at least 1, got %d", c.TabWidth))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.ScanLimit < 0 {
		errs = append(errs, fmt.Errorf("scan limit must not be negative, got %d", c.ScanLimit))
	}
	switch c.ForceMode {
	case "", KindTOC, KindIndex:
	default:
		errs = append(errs, fmt.Errorf("%w: force mode %q", ErrUnknownKind, c.ForceMode))
	}
	return errors.Join(errs...)
}

// Thresholds returns the classifier thresholds of the config.
func (c *Config) Thresholds() Thresholds {
	return Thresholds{TOC: c.TOCRatioThreshold, Index: c.IndexRatioThreshold}
}
