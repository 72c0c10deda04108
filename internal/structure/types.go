package structure

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a kind or force mode string cannot be parsed.
var ErrUnknownKind = errors.New("unknown structure kind")

// Kind is the classification of a block of text.
type Kind string

const (
	// KindPlain is ordinary body text with no recognisable structure.
	KindPlain Kind = "plain"
	// KindTOC is a table of contents.
	KindTOC Kind = "toc"
	// KindIndex is a back-of-book index.
	KindIndex Kind = "index"
)

// ParseKind converts a user supplied string into a Kind.
// The empty string and "auto" map to the empty Kind, meaning no override.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "none":
		return "", nil
	case "toc", "contents":
		return KindTOC, nil
	case "index":
		return KindIndex, nil
	case "plain":
		return KindPlain, nil
	default:
		return "", fmt.Errorf("%w: %q (valid options: toc, index, auto)", ErrUnknownKind, s)
	}
}

// Line is one logical line of extracted text.
type Line struct {
	Raw    string // Original line without the line terminator
	Text   string // Normalized text with leading whitespace removed
	Indent int    // Leading whitespace width, tabs expanded
	Page   int    // Originating page, 1-indexed
	Number int    // Position in the normalized sequence, 0-indexed
	Blank  bool   // True when Text is empty
}

// PageReference is a single page or an inclusive page range.
// A single page has Start == End.
type PageReference struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SinglePage returns a reference to one page.
func SinglePage(p int) PageReference {
	return PageReference{Start: p, End: p}
}

// PageRange returns a range reference. A reversed range is swapped.
func PageRange(start, end int) PageReference {
	if end < start {
		start, end = end, start
	}
	return PageReference{Start: start, End: end}
}

// IsRange reports whether the reference spans more than one page.
func (r PageReference) IsRange() bool {
	return r.End != r.Start
}

// String renders the reference as "12" or "12-14".
func (r PageReference) String() string {
	if r.IsRange() {
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
	return fmt.Sprintf("%d", r.Start)
}

// TocEntry is a node in a table-of-contents tree.
// Children always have Level == parent Level + 1.
type TocEntry struct {
	ID        string      `json:"node_id,omitempty"`
	Title     string      `json:"title"`
	Page      *int        `json:"page,omitempty"`
	PageLabel string      `json:"page_label,omitempty"` // Printed page token, e.g. "ix"
	Level     int         `json:"level"`
	Children  []*TocEntry `json:"nodes,omitempty"`
}

// String returns a JSON representation of the entry for debugging.
func (e *TocEntry) String() string {
	b, _ := json.MarshalIndent(e, "", "  ")
	return string(b)
}

// Walk traverses the subtree in depth-first order, calling fn for each entry.
func (e *TocEntry) Walk(fn func(*TocEntry)) {
	if e == nil {
		return
	}
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// Clone creates a deep copy of the entry.
func (e *TocEntry) Clone() *TocEntry {
	if e == nil {
		return nil
	}
	clone := &TocEntry{
		ID:        e.ID,
		Title:     e.Title,
		PageLabel: e.PageLabel,
		Level:     e.Level,
	}
	if e.Page != nil {
		p := *e.Page
		clone.Page = &p
	}
	if e.Children != nil {
		clone.Children = make([]*TocEntry, len(e.Children))
		for i, child := range e.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// IndexEntry is a term in a back-of-book index with its page references.
type IndexEntry struct {
	Term       string          `json:"term"`
	Pages      []PageReference `json:"pages,omitempty"`
	SeeAlso    []string        `json:"see_also,omitempty"`
	Subentries []*IndexEntry   `json:"subentries,omitempty"`
}

// String renders the entry as "term: 10, 12-14" followed by indented subentries.
func (e *IndexEntry) String() string {
	var b strings.Builder
	b.WriteString(e.Term)
	b.WriteString(": ")
	if len(e.Pages) > 0 {
		b.WriteString(FormatPageRefs(e.Pages))
	} else {
		b.WriteString("N/A")
	}
	for _, sub := range e.Subentries {
		b.WriteString("\n  ")
		b.WriteString(sub.Term)
		b.WriteString(": ")
		b.WriteString(FormatPageRefs(sub.Pages))
	}
	return b.String()
}

// Tally counts pattern matches over a block of lines.
type Tally struct {
	Lines          int `json:"lines"` // Non-blank lines
	Leader         int `json:"leader"`
	TrailingNumber int `json:"trailing_number"`
	Numbered       int `json:"numbered_heading"`
	IndexEntry     int `json:"index_entry"`
	Continuation   int `json:"continuation"`
	Ranges         int `json:"ranges"`          // Range tokens seen, repaired or not
	Repaired       int `json:"repaired_ranges"` // Reversed ranges that were swapped
}

// TOC returns the number of lines matching TOC-indicative patterns.
func (t Tally) TOC() int {
	return t.Leader + t.TrailingNumber + t.Numbered
}

// Index returns the number of lines matching index-indicative patterns.
func (t Tally) Index() int {
	return t.IndexEntry + t.Continuation
}

// Verdict is the result of classifying a block of lines.
type Verdict struct {
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence"`
	TOCRatio   float64 `json:"toc_ratio"`
	IndexRatio float64 `json:"index_ratio"`
	Tally      Tally   `json:"tally"`
	Heading    string  `json:"heading,omitempty"` // Marker line such as "Contents"
}

// Result is the outcome of one extraction call.
type Result struct {
	Verdict Verdict       `json:"verdict"`
	Mode    Kind          `json:"mode"`   // Builder that was run, or plain
	Forced  bool          `json:"forced"` // Mode came from configuration, not the classifier
	TOC     []*TocEntry   `json:"toc,omitempty"`
	Index   []*IndexEntry `json:"index,omitempty"`
}

// Confidence returns the matched-line ratio backing the mode that was run.
// For forced modes this can be well below the detection threshold.
func (r *Result) Confidence() float64 {
	switch {
	case r.Forced && r.Mode == KindTOC:
		return r.Verdict.TOCRatio
	case r.Forced && r.Mode == KindIndex:
		return r.Verdict.IndexRatio
	default:
		return r.Verdict.Confidence
	}
}

// Empty reports whether no structure was recovered.
func (r *Result) Empty() bool {
	return len(r.TOC) == 0 && len(r.Index) == 0
}

// PageVerdict is the classification of a single page.
type PageVerdict struct {
	Page    int     `json:"page"`
	Verdict Verdict `json:"verdict"`
}

// Span is a run of consecutive pages sharing a structured kind.
type Span struct {
	Kind  Kind `json:"kind"`
	First int  `json:"first_page"`
	Last  int  `json:"last_page"`
}

// Pages returns the number of pages in the span.
func (s Span) Pages() int {
	return s.Last - s.First + 1
}
