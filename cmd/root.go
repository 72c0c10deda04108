package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/docstruct/internal/config"
	"github.com/itsmostafa/docstruct/internal/output"
	"github.com/itsmostafa/docstruct/internal/version"
)

var (
	cfgFile      string
	logLevel     string
	logFormat    string
	outputFormat string
	backend      string
	noLayout     bool
)

// app carries what PersistentPreRunE sets up for every subcommand.
type app struct {
	cm     *config.Manager
	logger *slog.Logger
	runID  string
	format output.Format
}

var state app

var rootCmd = &cobra.Command{
	Use:   "docstruct",
	Short: "Recover tables of contents and indexes from document text",
	Long: `docstruct classifies extracted document text as a table of contents, a
back-of-book index or plain text, and rebuilds the structure it finds:
a nested TOC tree or a list of index terms with their page references.

Input can be a PDF, a plain text file with form feeds between pages,
or "-" for standard input.

Examples:
  docstruct analyze book.pdf              # Find and extract TOC and index
  docstruct toc book.pdf --pages 5-7      # Extract a TOC from pages 5-7
  docstruct index back.txt -o json        # Index terms as JSON
  docstruct detect page.txt               # Only classify`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("docstruct %s\n", version.String()))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./docstruct.yaml or $HOME/.docstruct/docstruct.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text, json")
	flags.StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml, markdown, html")
	flags.StringVar(&backend, "backend", "", "PDF text backend: auto, pdftotext, native")
	flags.BoolVar(&noLayout, "no-layout", false, "Do not ask pdftotext to preserve layout")
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}

	overrides := map[string]struct {
		flag  string
		value any
	}{
		"log.level":       {"log-level", logLevel},
		"log.format":      {"log-format", logFormat},
		"extract.backend": {"backend", backend},
		"extract.layout":  {"no-layout", !noLayout},
	}
	for key, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		if err := cm.Override(key, o.value); err != nil {
			return err
		}
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	cfg := cm.Get()
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	state = app{
		cm:     cm,
		logger: logger.With("run_id", runID, "command", cmd.Name()),
		runID:  runID,
		format: format,
	}

	if used := cm.ConfigFileUsed(); used != "" {
		state.logger.Debug("loaded config", "path", used)
	}
	return nil
}

// newLogger builds the slog logger described by the log section.
func newLogger(w io.Writer, cfg config.LogCfg) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// ExecuteContext runs the root command with a context that subcommands observe.
func ExecuteContext(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
