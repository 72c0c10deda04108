package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/docstruct/internal/output"
	"github.com/itsmostafa/docstruct/internal/structure"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Classify text and extract whatever structure it holds",
	Long: `Classify the selected pages as one block of text and run the matching
builder. The detection.force_mode setting or --force skips classification.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0], "")
	},
}

var tocCmd = &cobra.Command{
	Use:   "toc <file>",
	Short: "Extract a table of contents",
	Long: `Build a table-of-contents tree from the selected pages without checking
whether they look like one. Markdown files are read from their headings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if isMarkdown(args[0]) {
			return runMarkdownTOC(cmd, args[0])
		}
		return runExtract(cmd, args[0], structure.KindTOC)
	},
}

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Extract index entries",
	Long:  `Parse the selected pages as a back-of-book index without checking whether they look like one.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0], structure.KindIndex)
	},
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, tocCmd, indexCmd} {
		addSelectionFlags(c)
		addDetectionFlags(c)
		addResultFlags(c)
		rootCmd.AddCommand(c)
	}
	extractCmd.Flags().StringVar(&forceModeOption, "force", "", "Skip classification and run a builder: toc, index, auto")
}

// runExtract extracts from path, forcing kind when it is set.
func runExtract(cmd *cobra.Command, path string, kind structure.Kind) error {
	ctx := cmd.Context()

	if err := applyFlags(cmd); err != nil {
		return err
	}
	engine, err := newEngine(state.cm.Get())
	if err != nil {
		return err
	}
	if kind != "" {
		if engine, err = engine.Force(kind); err != nil {
			return err
		}
	}

	pages, err := loadPages(ctx, path)
	if err != nil {
		return err
	}

	res := engine.Extract(pages)
	state.logger.Info("extracted structure",
		"kind", res.Verdict.Kind, "mode", res.Mode, "confidence", res.Confidence(),
		"toc_entries", len(res.TOC), "index_entries", len(res.Index))

	return newPrinter(cmd).Result(res)
}

func runMarkdownTOC(cmd *cobra.Command, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	toc := output.HeadingTOC(src)
	res := &structure.Result{
		Verdict: structure.Verdict{Kind: structure.KindTOC, Confidence: 1, TOCRatio: 1},
		Mode:    structure.KindTOC,
		TOC:     toc,
	}
	if len(toc) == 0 {
		res.Verdict = structure.Verdict{Kind: structure.KindPlain}
		res.Mode = structure.KindPlain
	}
	state.logger.Info("read markdown headings", "path", path, "sections", len(toc))

	return newPrinter(cmd).Result(res)
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
