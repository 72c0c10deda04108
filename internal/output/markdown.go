package output

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/itsmostafa/docstruct/internal/structure"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "`", "\\`", "<", `\<`,
)

// ResultMarkdown renders a result as a markdown document with nested lists.
func ResultMarkdown(res *structure.Result) string {
	var b strings.Builder
	writeResultMarkdown(&b, res, "#")
	return b.String()
}

// DocumentMarkdown renders the spans and extracted structure of a scanned document.
func DocumentMarkdown(doc *structure.Document) string {
	var b strings.Builder
	b.WriteString("# Document structure\n\n")

	if len(doc.Spans) == 0 {
		fmt.Fprintf(&b, "_No table of contents or index found in %d scanned pages._\n", len(doc.Pages))
	}
	for _, s := range doc.Spans {
		fmt.Fprintf(&b, "- %s: pages %d-%d\n", kindLabel(s.Kind), s.First, s.Last)
	}

	if doc.TOC != nil {
		b.WriteString("\n")
		writeResultMarkdown(&b, doc.TOC, "##")
	}
	if doc.Index != nil {
		b.WriteString("\n")
		writeResultMarkdown(&b, doc.Index, "##")
	}
	return b.String()
}

func verdictMarkdown(res *structure.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", kindLabel(res.Verdict.Kind))
	writeVerdictLine(&b, res)
	t := res.Verdict.Tally
	fmt.Fprintf(&b, "\n- Lines: %d\n- Dot leaders: %d\n- Trailing numbers: %d\n- Numbered headings: %d\n- Index entries: %d\n- Continuations: %d\n",
		t.Lines, t.Leader, t.TrailingNumber, t.Numbered, t.IndexEntry, t.Continuation)
	return b.String()
}

func writeResultMarkdown(b *strings.Builder, res *structure.Result, heading string) {
	title := kindLabel(res.Mode)
	fmt.Fprintf(b, "%s %s\n\n", heading, title)
	writeVerdictLine(b, res)
	b.WriteString("\n")

	switch {
	case len(res.TOC) > 0:
		writeTOCList(b, res.TOC)
	case len(res.Index) > 0:
		writeIndexList(b, res.Index)
	default:
		b.WriteString("_No structure recovered._\n")
	}
}

func writeVerdictLine(b *strings.Builder, res *structure.Result) {
	if res.Forced {
		fmt.Fprintf(b, "_Forced %s mode, ratio %.2f._\n", res.Mode, res.Confidence())
		return
	}
	fmt.Fprintf(b, "_Detected %s with confidence %.2f._\n", res.Verdict.Kind, res.Verdict.Confidence)
}

func writeTOCList(b *strings.Builder, entries []*structure.TocEntry) {
	for _, e := range structure.Flatten(entries) {
		b.WriteString(strings.Repeat("  ", e.Level))
		b.WriteString("- ")
		b.WriteString(markdownEscaper.Replace(e.Title))
		if e.Page != "" {
			fmt.Fprintf(b, " (p. %s)", e.Page)
		}
		b.WriteString("\n")
	}
}

func writeIndexList(b *strings.Builder, entries []*structure.IndexEntry) {
	for _, e := range entries {
		writeIndexItem(b, e, "")
		for _, sub := range e.Subentries {
			writeIndexItem(b, sub, "  ")
		}
	}
}

func writeIndexItem(b *strings.Builder, e *structure.IndexEntry, indent string) {
	b.WriteString(indent)
	b.WriteString("- ")
	if indent == "" {
		fmt.Fprintf(b, "**%s**", markdownEscaper.Replace(e.Term))
	} else {
		b.WriteString(markdownEscaper.Replace(e.Term))
	}
	if len(e.Pages) > 0 {
		b.WriteString(": ")
		b.WriteString(structure.FormatPageRefs(e.Pages))
	}
	if len(e.SeeAlso) > 0 {
		b.WriteString("; see also ")
		b.WriteString(markdownEscaper.Replace(strings.Join(e.SeeAlso, "; ")))
	}
	b.WriteString("\n")
}

// HeadingTOC builds a TOC tree from the headings of a markdown document.
// Headings inside code blocks are ignored and skipped heading levels do not
// create empty parents.
func HeadingTOC(src []byte) []*structure.TocEntry {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	type stackEntry struct {
		entry *structure.TocEntry
		level int
	}

	var stack []stackEntry
	var roots []*structure.TocEntry

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}

		title := strings.TrimSpace(nodeText(h, src))
		if title == "" {
			return ast.WalkSkipChildren, nil
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		entry := &structure.TocEntry{Title: title, Level: len(stack)}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1].entry
			parent.Children = append(parent.Children, entry)
		}
		stack = append(stack, stackEntry{entry: entry, level: h.Level})

		return ast.WalkSkipChildren, nil
	})

	structure.WriteEntryIDs(roots)
	return roots
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
