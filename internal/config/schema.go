package config

// Config holds docstruct configuration.
// Loaded from docstruct.yaml and DOCSTRUCT_* environment variables.
type Config struct {
	Detection DetectionCfg `mapstructure:"detection" yaml:"detection"`
	Index     IndexCfg     `mapstructure:"index" yaml:"index"`
	Normalize NormalizeCfg `mapstructure:"normalize" yaml:"normalize"`
	Extract   ExtractCfg   `mapstructure:"extract" yaml:"extract"`
	Log       LogCfg       `mapstructure:"log" yaml:"log"`
}

// DetectionCfg tunes the classifier.
type DetectionCfg struct {
	TOCRatioThreshold   float64 `mapstructure:"toc_ratio_threshold" yaml:"toc_ratio_threshold"`
	IndexRatioThreshold float64 `mapstructure:"index_ratio_threshold" yaml:"index_ratio_threshold"`
	ForceMode           string  `mapstructure:"force_mode" yaml:"force_mode"`           // "auto", "toc", "index"
	NumberingFirst      bool    `mapstructure:"numbering_first" yaml:"numbering_first"` // Check numbered headings before leaders
	ScanLimit           int     `mapstructure:"scan_limit" yaml:"scan_limit"`           // Pages examined by analyze, 0 for all
	Workers             int     `mapstructure:"workers" yaml:"workers"`
}

// IndexCfg tunes the index builder.
type IndexCfg struct {
	BlankRunEntryBreak int `mapstructure:"blank_run_entry_break" yaml:"blank_run_entry_break"`
}

// NormalizeCfg tunes line normalization.
type NormalizeCfg struct {
	TabWidth int `mapstructure:"tab_width" yaml:"tab_width"`
}

// ExtractCfg selects how page text is pulled out of PDFs.
type ExtractCfg struct {
	Backend    string `mapstructure:"backend" yaml:"backend"` // "auto", "pdftotext", "native"
	Layout     bool   `mapstructure:"layout" yaml:"layout"`   // Preserve columns with pdftotext -layout
	Retries    int    `mapstructure:"retries" yaml:"retries"` // Attempts when a watched file is mid-write
	RetryDelay string `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// LogCfg configures the slog handler.
type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}
