package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/itsmostafa/docstruct/internal/structure"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Detection.TOCRatioThreshold != 0.5 {
		t.Errorf("expected toc threshold 0.5, got %v", cfg.Detection.TOCRatioThreshold)
	}
	if cfg.Detection.IndexRatioThreshold != 0.4 {
		t.Errorf("expected index threshold 0.4, got %v", cfg.Detection.IndexRatioThreshold)
	}
	if cfg.Index.BlankRunEntryBreak != 2 {
		t.Errorf("expected blank run break 2, got %d", cfg.Index.BlankRunEntryBreak)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "docstruct.yaml")

		configContent := `
detection:
  toc_ratio_threshold: 0.7
  force_mode: index
index:
  blank_run_entry_break: 3
log:
  level: debug
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cm, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		cfg := cm.Get()
		if cfg.Detection.TOCRatioThreshold != 0.7 {
			t.Errorf("expected toc threshold 0.7, got %v", cfg.Detection.TOCRatioThreshold)
		}
		if cfg.Detection.IndexRatioThreshold != 0.4 {
			t.Errorf("expected default index threshold 0.4, got %v", cfg.Detection.IndexRatioThreshold)
		}
		if cfg.Index.BlankRunEntryBreak != 3 {
			t.Errorf("expected blank run break 3, got %d", cfg.Index.BlankRunEntryBreak)
		}
		if cm.ConfigFileUsed() != configFile {
			t.Errorf("expected config file %s, got %s", configFile, cm.ConfigFileUsed())
		}

		engine, err := cfg.EngineConfig()
		if err != nil {
			t.Fatalf("EngineConfig failed: %v", err)
		}
		if engine.ForceMode != structure.KindIndex {
			t.Errorf("expected force mode index, got %q", engine.ForceMode)
		}
	})

	t.Run("works without config file", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())

		cm, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if cm.ConfigFileUsed() != "" {
			t.Errorf("expected no config file, got %s", cm.ConfigFileUsed())
		}
		if cm.Get().Detection.TOCRatioThreshold != 0.5 {
			t.Errorf("expected default threshold, got %v", cm.Get().Detection.TOCRatioThreshold)
		}
	})

	t.Run("explicit missing file fails", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("DOCSTRUCT_DETECTION_TOC_RATIO_THRESHOLD", "0.65")
		t.Setenv("DOCSTRUCT_LOG_FORMAT", "json")

		cm, err := NewManager(writeDefault(t))
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if got := cm.Get().Detection.TOCRatioThreshold; got != 0.65 {
			t.Errorf("expected env threshold 0.65, got %v", got)
		}
		if got := cm.Get().Log.Format; got != "json" {
			t.Errorf("expected env log format json, got %s", got)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "docstruct.yaml")
		content := "detection:\n  toc_ratio_threshold: 1.5\n"
		if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewManager(configFile); err == nil {
			t.Error("expected validation error for threshold above 1")
		}
	})
}

func TestOverride(t *testing.T) {
	cm, err := NewManager(writeDefault(t))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := cm.Override("detection.force_mode", "toc"); err != nil {
		t.Fatalf("Override failed: %v", err)
	}
	if cm.Get().Detection.ForceMode != "toc" {
		t.Errorf("expected force mode toc, got %s", cm.Get().Detection.ForceMode)
	}

	err = cm.Override("detection.force_mode", "glossary")
	if !errors.Is(err, structure.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if cm.Get().Detection.ForceMode != "toc" {
		t.Error("invalid override replaced the active config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Extract.Backend = "tesseract" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero retries", func(c *Config) { c.Extract.Retries = 0 }},
		{"bad retry delay", func(c *Config) { c.Extract.RetryDelay = "soon" }},
		{"plain force mode", func(c *Config) { c.Detection.ForceMode = "plain" }},
		{"negative tab width", func(c *Config) { c.Normalize.TabWidth = -1 }},
		{"zero workers", func(c *Config) { c.Detection.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestWriteDefault(t *testing.T) {
	path := writeDefault(t)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	content := string(data)
	for _, want := range []string{"# docstruct configuration", "toc_ratio_threshold: 0.5", "blank_run_entry_break: 2"} {
		if !strings.Contains(content, want) {
			t.Errorf("written config missing %q", want)
		}
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cm.Get().Extract.Backend != "auto" {
		t.Errorf("expected backend auto, got %s", cm.Get().Extract.Backend)
	}
}

func writeDefault(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "docstruct.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	return path
}
