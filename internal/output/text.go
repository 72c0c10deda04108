package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/itsmostafa/docstruct/internal/structure"
)

// kindLabel names a kind for humans.
func kindLabel(k structure.Kind) string {
	switch k {
	case structure.KindTOC:
		return "Table of Contents"
	case structure.KindIndex:
		return "Index"
	default:
		return "Plain text"
	}
}

// FormatVerdict renders the classification header.
func FormatVerdict(w io.Writer, res *structure.Result) {
	v := res.Verdict

	kind := successStyle.Render(kindLabel(v.Kind))
	if v.Kind == structure.KindPlain {
		kind = dimStyle.Render(kindLabel(v.Kind))
	}

	content := fmt.Sprintf("%s %s  %s %.2f\n%s toc %.2f  index %.2f",
		dimStyle.Render("Detected:"), kind,
		dimStyle.Render("Confidence:"), v.Confidence,
		dimStyle.Render("Ratios:"), v.TOCRatio, v.IndexRatio,
	)
	if res.Forced {
		content += fmt.Sprintf("\n%s %s %s",
			dimStyle.Render("Mode:"), titleStyle.Render(string(res.Mode)),
			warnStyle.Render(fmt.Sprintf("(forced, ratio %.2f)", res.Confidence())))
	}
	if v.Heading != "" {
		content += fmt.Sprintf("\n%s %s", dimStyle.Render("Heading:"), v.Heading)
	}

	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatTally renders the pattern counts behind a verdict.
func FormatTally(w io.Writer, t structure.Tally) {
	rows := []struct {
		label string
		n     int
	}{
		{"Lines", t.Lines},
		{"Dot leaders", t.Leader},
		{"Trailing numbers", t.TrailingNumber},
		{"Numbered headings", t.Numbered},
		{"Index entries", t.IndexEntry},
		{"Continuations", t.Continuation},
		{"Page ranges", t.Ranges},
		{"Repaired ranges", t.Repaired},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Pattern counts"))
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s %d", dimStyle.Render(fmt.Sprintf("%-18s", r.label+":")), r.n)
	}
	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

// FormatTOC renders the tree with two spaces of indentation per level.
func FormatTOC(w io.Writer, entries []*structure.TocEntry) {
	FormatFlat(w, structure.Flatten(entries))
}

// FormatFlat renders flattened entries, indenting each by its level.
func FormatFlat(w io.Writer, entries []structure.FlatEntry) {
	for _, e := range entries {
		line := strings.Repeat("  ", e.Level) + e.Title
		if e.Level == 0 {
			line = titleStyle.Render(e.Title)
		}
		if e.Page != "" {
			line += " " + dimStyle.Render("....") + " " + pageStyle.Render(e.Page)
		}
		fmt.Fprintln(w, line)
	}
}

// FormatIndex renders index entries with subentries indented beneath them.
func FormatIndex(w io.Writer, entries []*structure.IndexEntry) {
	for _, e := range entries {
		fmt.Fprintln(w, indexLine(e, ""))
		for _, sub := range e.Subentries {
			fmt.Fprintln(w, indexLine(sub, "  "))
		}
	}
}

func indexLine(e *structure.IndexEntry, indent string) string {
	line := indent + termStyle.Render(e.Term)
	if len(e.Pages) > 0 {
		line += " " + pageStyle.Render(structure.FormatPageRefs(e.Pages))
	}
	if len(e.SeeAlso) > 0 {
		line += " " + dimStyle.Render("see also "+strings.Join(e.SeeAlso, "; "))
	}
	return line
}

// FormatSummary renders the TOC summary box.
func FormatSummary(w io.Writer, s structure.Summary) {
	content := titleStyle.Render("Summary") + "\n" + strings.TrimRight(s.String(), "\n")
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatIndexSummary renders the index summary box.
func FormatIndexSummary(w io.Writer, s structure.IndexSummary) {
	content := titleStyle.Render("Summary") + "\n" + s.String()
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatScan renders one line per page and the spans found.
func FormatScan(w io.Writer, pages []structure.PageVerdict, spans []structure.Span) {
	for _, pv := range pages {
		label := dimStyle.Render(string(pv.Verdict.Kind))
		if pv.Verdict.Kind != structure.KindPlain {
			label = successStyle.Render(string(pv.Verdict.Kind))
		}
		fmt.Fprintf(w, "%s %-5s %.2f\n", dimStyle.Render(fmt.Sprintf("page %4d", pv.Page)), label, pv.Verdict.Confidence)
	}

	if len(spans) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No table of contents or index pages found."))
		return
	}
	for _, s := range spans {
		fmt.Fprintf(w, "%s %s pages %d-%d\n", titleStyle.Render(kindLabel(s.Kind)), dimStyle.Render("on"), s.First, s.Last)
	}
}

// FormatBanner renders a section banner.
func FormatBanner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bannerStyle.Render(" "+title+" "))
	fmt.Fprintln(w)
}
