package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/itsmostafa/docstruct/internal/structure"
)

// DefaultConfig returns the configuration used when no file or env override is present.
func DefaultConfig() *Config {
	engine := structure.DefaultConfig()
	return &Config{
		Detection: DetectionCfg{
			TOCRatioThreshold:   engine.TOCRatioThreshold,
			IndexRatioThreshold: engine.IndexRatioThreshold,
			ForceMode:           "auto",
			NumberingFirst:      engine.NumberingFirst,
			ScanLimit:           engine.ScanLimit,
			Workers:             engine.Workers,
		},
		Index: IndexCfg{
			BlankRunEntryBreak: engine.BlankRunEntryBreak,
		},
		Normalize: NormalizeCfg{
			TabWidth: engine.TabWidth,
		},
		Extract: ExtractCfg{
			Backend:    "auto",
			Layout:     true,
			Retries:    3,
			RetryDelay: "500ms",
		},
		Log: LogCfg{
			Level:  "warn",
			Format: "text",
		},
	}
}

// defaults flattens DefaultConfig into viper keys.
func defaults() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"detection.toc_ratio_threshold":   d.Detection.TOCRatioThreshold,
		"detection.index_ratio_threshold": d.Detection.IndexRatioThreshold,
		"detection.force_mode":            d.Detection.ForceMode,
		"detection.numbering_first":       d.Detection.NumberingFirst,
		"detection.scan_limit":            d.Detection.ScanLimit,
		"detection.workers":               d.Detection.Workers,
		"index.blank_run_entry_break":     d.Index.BlankRunEntryBreak,
		"normalize.tab_width":             d.Normalize.TabWidth,
		"extract.backend":                 d.Extract.Backend,
		"extract.layout":                  d.Extract.Layout,
		"extract.retries":                 d.Extract.Retries,
		"extract.retry_delay":             d.Extract.RetryDelay,
		"log.level":                       d.Log.Level,
		"log.format":                      d.Log.Format,
	}
}

// WriteDefault writes the default configuration to path, creating parent directories.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := []byte(`# docstruct configuration
# Every key can be overridden with an environment variable, for example
# DOCSTRUCT_DETECTION_TOC_RATIO_THRESHOLD=0.6 or DOCSTRUCT_LOG_LEVEL=debug

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
