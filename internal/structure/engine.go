package structure

import (
	"fmt"
	"log/slog"
)

// Engine classifies text blocks and extracts their structure.
// An Engine holds no per-call state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	lib    *Library
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLibrary replaces the default pattern library.
func WithLibrary(lib *Library) Option {
	return func(e *Engine) {
		if lib != nil {
			e.lib = lib
		}
	}
}

// New creates an engine. A nil config uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		cfg:    *cfg,
		lib:    NewLibrary(cfg.NumberingFirst),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Library returns the pattern library in use.
func (e *Engine) Library() *Library {
	return e.lib
}

// Force returns a copy of the engine that always runs the builder for kind.
// The empty kind restores automatic detection.
func (e *Engine) Force(kind Kind) (*Engine, error) {
	cfg := e.cfg
	cfg.ForceMode = kind
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clone := *e
	clone.cfg = cfg
	return &clone, nil
}

// Normalize turns page texts into lines numbered across the whole document.
func (e *Engine) Normalize(pages []string) []Line {
	return NormalizePages(pages, e.cfg.TabWidth)
}

// Classify returns the verdict for a block of lines.
func (e *Engine) Classify(lines []Line) Verdict {
	return Classify(lines, e.lib, e.cfg.Thresholds())
}

// BuildTOC runs the TOC hierarchy builder on lines.
func (e *Engine) BuildTOC(lines []Line) []*TocEntry {
	entries := BuildTOC(lines, e.lib, e.logger)
	WriteEntryIDs(entries)
	return entries
}

// BuildIndex runs the index entry builder on lines.
func (e *Engine) BuildIndex(lines []Line) []*IndexEntry {
	return BuildIndex(lines, e.cfg.BlankRunEntryBreak, e.logger)
}

// Extract normalizes pages and extracts their structure.
func (e *Engine) Extract(pages []string) *Result {
	return e.ExtractLines(e.Normalize(pages))
}

// ExtractText extracts structure from a single text blob. Form feeds split pages.
func (e *Engine) ExtractText(text string) *Result {
	return e.ExtractLines(Normalize(text, 1, e.cfg.TabWidth))
}

// ExtractLines classifies lines and runs the matching builder.
// With a force mode set the verdict is still computed but the builder for
// the forced kind runs regardless. A plain verdict yields an empty result.
func (e *Engine) ExtractLines(lines []Line) *Result {
	v := e.Classify(lines)
	result := &Result{Verdict: v, Mode: v.Kind}

	if e.cfg.ForceMode != "" {
		result.Mode = e.cfg.ForceMode
		result.Forced = true
		if v.Kind != e.cfg.ForceMode {
			e.logger.Debug("force mode overrides classifier",
				"detected", v.Kind, "forced", e.cfg.ForceMode, "confidence", v.Confidence)
		}
	}

	if v.Tally.Lines == 0 {
		return result
	}

	switch result.Mode {
	case KindTOC:
		result.TOC = e.BuildTOC(lines)
	case KindIndex:
		result.Index = e.BuildIndex(lines)
	}

	e.logger.Debug("extracted structure",
		"mode", result.Mode,
		"confidence", result.Confidence(),
		"lines", v.Tally.Lines,
		"toc_entries", len(result.TOC),
		"index_entries", len(result.Index))

	return result
}
