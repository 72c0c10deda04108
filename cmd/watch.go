package cmd

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/docstruct/internal/config"
	"github.com/itsmostafa/docstruct/internal/output"
	"github.com/itsmostafa/docstruct/internal/pdftext"
)

const watchDebounce = 250 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-extract a document whenever it or the config file changes",
	Long: `Run extract once, then again each time the file is written. Edits to the
config file are picked up as well. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, args[0])
	},
}

func init() {
	addSelectionFlags(watchCmd)
	addDetectionFlags(watchCmd)
	addResultFlags(watchCmd)
	watchCmd.Flags().StringVar(&forceModeOption, "force", "", "Skip classification and run a builder: toc, index, auto")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	if path == pdftext.Stdin {
		return errors.New("cannot watch standard input")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	reload := make(chan struct{}, 1)
	state.cm.OnChange(func(*config.Config) {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	state.cm.WatchConfig()

	run := func(reason string) {
		if state.format == output.FormatText {
			output.FormatBanner(cmd.OutOrStdout(), time.Now().Format(time.TimeOnly))
		}
		state.logger.Info("extracting", "path", path, "reason", reason)
		if err := runExtract(cmd, path, ""); err != nil {
			state.logger.Error("extraction failed", "path", path, "error", err)
		}
	}

	run("start")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			state.logger.Warn("watch error", "error", err)
		case <-reload:
			run("config")
		case <-debounce:
			debounce = nil
			run("file")
		}
	}
}
