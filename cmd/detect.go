package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itsmostafa/docstruct/internal/structure"
)

var perPage bool

var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Classify text as a TOC, an index or plain text",
	Long: `Report the classification of the selected pages and the pattern counts
behind it. With --per-page every page is classified on its own.`,
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

		if perPage {
			verdicts, err := engine.Scan(ctx, pages)
			if err != nil {
				return err
			}
			return newPrinter(cmd).Document(&structure.Document{
				Pages: verdicts,
				Spans: structure.Spans(verdicts),
			})
		}

		verdict := engine.Classify(engine.Normalize(pages))
		state.logger.Info("classified", "kind", verdict.Kind, "confidence", verdict.Confidence)

		return newPrinter(cmd).Verdict(&structure.Result{Verdict: verdict, Mode: verdict.Kind})
	},
}

func init() {
	addSelectionFlags(detectCmd)
	addDetectionFlags(detectCmd)
	addScanFlags(detectCmd)
	detectCmd.Flags().BoolVar(&perPage, "per-page", false, "Classify each page separately")
	rootCmd.AddCommand(detectCmd)
}
