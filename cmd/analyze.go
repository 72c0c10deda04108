package cmd

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Find and extract the table of contents and index of a document",
	Long: `Classify every page, group consecutive TOC and index pages into spans,
then extract the first TOC span and the last index span.

Examples:
  docstruct analyze book.pdf
  docstruct analyze book.pdf --scan-limit 40 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := applyFlags(cmd); err != nil {
			return err
		}
		engine, err := newEngine(state.cm.Get())
		if err != nil {
			return err
		}

		pages, err := loadPages(ctx, args[0])
		if err != nil {
			return err
		}

		doc, err := engine.Analyze(ctx, pages)
		if err != nil {
			return err
		}
		state.logger.Info("analyzed document", "path", args[0], "spans", len(doc.Spans))

		return newPrinter(cmd).Document(doc)
	},
}

func init() {
	addSelectionFlags(analyzeCmd)
	addDetectionFlags(analyzeCmd)
	addResultFlags(analyzeCmd)
	addScanFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
