package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/itsmostafa/docstruct/internal/structure"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "DOCSTRUCT"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches ./docstruct.yaml and $HOME/.docstruct/docstruct.yaml;
// a missing file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	for key, value := range defaults() {
		cm.v.SetDefault(key, value)
	}

	// DOCSTRUCT_DETECTION_TOC_RATIO_THRESHOLD maps to detection.toc_ratio_threshold
	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("docstruct")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.docstruct")
	}

	// Try to read config file (not required)
	if err := cm.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFileUsed returns the path of the loaded config file, or "" when none was found.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// Override sets a key above every other source, as command-line flags do.
// The configuration is reloaded and validated; on error the previous one stays active.
func (cm *Manager) Override(key string, value any) error {
	cm.v.Set(key, value)
	cfg, err := cm.load()
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
// Invalid edits are ignored and the previous configuration stays active.
func (cm *Manager) WatchConfig() {
	if cm.v.ConfigFileUsed() == "" {
		return
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// Validate checks values that the engine config does not cover.
func (c *Config) Validate() error {
	var errs []error
	if _, err := structure.ParseKind(c.Detection.ForceMode); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Extract.Backend) {
	case "", "auto", "pdftotext", "native":
	default:
		errs = append(errs, fmt.Errorf("unknown extract backend %q (valid options: auto, pdftotext, native)", c.Extract.Backend))
	}
	if c.Extract.Retries < 1 {
		errs = append(errs, fmt.Errorf("extract retries must be at least 1, got %d", c.Extract.Retries))
	}
	if _, err := time.ParseDuration(c.Extract.RetryDelay); err != nil {
		errs = append(errs, fmt.Errorf("invalid retry delay: %w", err))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (valid options: text, json)", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if _, err := c.EngineConfig(); err != nil {
		return err
	}
	return nil
}

// EngineConfig maps the configuration onto the extraction engine's settings.
func (c *Config) EngineConfig() (*structure.Config, error) {
	force, err := structure.ParseKind(c.Detection.ForceMode)
	if err != nil {
		return nil, err
	}
	if force == structure.KindPlain {
		return nil, fmt.Errorf("%w: plain cannot be forced", structure.ErrUnknownKind)
	}

	cfg := &structure.Config{
		TOCRatioThreshold:   c.Detection.TOCRatioThreshold,
		IndexRatioThreshold: c.Detection.IndexRatioThreshold,
		BlankRunEntryBreak:  c.Index.BlankRunEntryBreak,
		ForceMode:           force,
		TabWidth:            c.Normalize.TabWidth,
		NumberingFirst:      c.Detection.NumberingFirst,
		ScanLimit:           c.Detection.ScanLimit,
		Workers:             c.Detection.Workers,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RetryDelayDuration returns the parsed retry delay.
func (c *Config) RetryDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.Extract.RetryDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ParseLevel converts a level name into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q (valid options: debug, info, warn, error)", s)
	}
	return level, nil
}
