package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"

	"github.com/itsmostafa/docstruct/internal/structure"
)

// Options adjust what a result includes.
type Options struct {
	Flat    bool // TOC as a depth-first list instead of a tree
	Leaves  bool // Only TOC entries without children
	Summary bool // Append a summary of the recovered structure
}

// Printer writes results to w in a single format.
type Printer struct {
	w      io.Writer
	format Format
	opts   Options
}

// NewPrinter returns a printer for the given format.
func NewPrinter(w io.Writer, format Format, opts Options) *Printer {
	return &Printer{w: w, format: format, opts: opts}
}

// resultPayload is the exported shape of a Result.
type resultPayload struct {
	Kind         structure.Kind          `json:"kind"`
	Mode         structure.Kind          `json:"mode"`
	Forced       bool                    `json:"forced"`
	Confidence   float64                 `json:"confidence"`
	Verdict      structure.Verdict       `json:"verdict"`
	TOC          []*structure.TocEntry   `json:"toc,omitempty"`
	Entries      []structure.FlatEntry   `json:"entries,omitempty"`
	Index        []*structure.IndexEntry `json:"index,omitempty"`
	Summary      *structure.Summary      `json:"summary,omitempty"`
	IndexSummary *structure.IndexSummary `json:"index_summary,omitempty"`
}

func (p *Printer) payload(res *structure.Result) resultPayload {
	out := resultPayload{
		Kind:       res.Verdict.Kind,
		Mode:       res.Mode,
		Forced:     res.Forced,
		Confidence: res.Confidence(),
		Verdict:    res.Verdict,
		Index:      res.Index,
	}

	switch {
	case p.opts.Leaves:
		out.Entries = structure.Flatten(structure.LeafEntries(res.TOC))
	case p.opts.Flat:
		out.Entries = structure.Flatten(res.TOC)
	default:
		out.TOC = res.TOC
	}

	if p.opts.Summary {
		if len(res.TOC) > 0 {
			s := structure.Summarize(res.TOC)
			out.Summary = &s
		}
		if len(res.Index) > 0 {
			s := structure.SummarizeIndex(res.Index)
			out.IndexSummary = &s
		}
	}
	return out
}

// Result writes a single extraction result.
func (p *Printer) Result(res *structure.Result) error {
	switch p.format {
	case FormatJSON:
		return writeJSON(p.w, p.payload(res))
	case FormatYAML:
		return writeYAML(p.w, p.payload(res))
	case FormatMarkdown:
		_, err := io.WriteString(p.w, ResultMarkdown(res))
		return err
	case FormatHTML:
		return writeHTML(p.w, ResultMarkdown(res))
	default:
		p.resultText(res)
		return nil
	}
}

func (p *Printer) resultText(res *structure.Result) {
	FormatVerdict(p.w, res)

	switch {
	case len(res.TOC) > 0:
		if p.opts.Leaves {
			FormatFlat(p.w, structure.Flatten(structure.LeafEntries(res.TOC)))
		} else if p.opts.Flat {
			FormatFlat(p.w, structure.Flatten(res.TOC))
		} else {
			FormatTOC(p.w, res.TOC)
		}
		if p.opts.Summary {
			FormatSummary(p.w, structure.Summarize(res.TOC))
		}
	case len(res.Index) > 0:
		FormatIndex(p.w, res.Index)
		if p.opts.Summary {
			FormatIndexSummary(p.w, structure.SummarizeIndex(res.Index))
		}
	default:
		fmt.Fprintln(p.w, dimStyle.Render("No structure recovered."))
	}
}

// Verdict writes only the classification of a result.
func (p *Printer) Verdict(res *structure.Result) error {
	payload := resultPayload{
		Kind:       res.Verdict.Kind,
		Mode:       res.Mode,
		Forced:     res.Forced,
		Confidence: res.Confidence(),
		Verdict:    res.Verdict,
	}

	switch p.format {
	case FormatJSON:
		return writeJSON(p.w, payload)
	case FormatYAML:
		return writeYAML(p.w, payload)
	case FormatMarkdown:
		_, err := io.WriteString(p.w, verdictMarkdown(res))
		return err
	case FormatHTML:
		return writeHTML(p.w, verdictMarkdown(res))
	default:
		FormatVerdict(p.w, res)
		FormatTally(p.w, res.Verdict.Tally)
		return nil
	}
}

// documentPayload is the exported shape of a Document.
type documentPayload struct {
	Pages []structure.PageVerdict `json:"pages"`
	Spans []structure.Span        `json:"spans,omitempty"`
	TOC   *resultPayload          `json:"toc,omitempty"`
	Index *resultPayload          `json:"index,omitempty"`
}

// Document writes the result of scanning a whole document.
func (p *Printer) Document(doc *structure.Document) error {
	switch p.format {
	case FormatJSON, FormatYAML:
		out := documentPayload{Pages: doc.Pages, Spans: doc.Spans}
		if doc.TOC != nil {
			rp := p.payload(doc.TOC)
			out.TOC = &rp
		}
		if doc.Index != nil {
			rp := p.payload(doc.Index)
			out.Index = &rp
		}
		if p.format == FormatJSON {
			return writeJSON(p.w, out)
		}
		return writeYAML(p.w, out)
	case FormatMarkdown:
		_, err := io.WriteString(p.w, DocumentMarkdown(doc))
		return err
	case FormatHTML:
		return writeHTML(p.w, DocumentMarkdown(doc))
	default:
		FormatScan(p.w, doc.Pages, doc.Spans)
		if doc.TOC != nil {
			FormatBanner(p.w, "CONTENTS")
			p.resultText(doc.TOC)
		}
		if doc.Index != nil {
			FormatBanner(p.w, "INDEX")
			p.resultText(doc.Index)
		}
		return nil
	}
}

// writeHTML converts markdown to an HTML fragment.
func writeHTML(w io.Writer, md string) error {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(md), &buf); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
