package structure

import (
	"fmt"
	"strings"
)

// Summary describes the shape of a TOC tree.
type Summary struct {
	Sections  int         `json:"sections"` // Level-0 entries
	Entries   int         `json:"entries"`
	MaxDepth  int         `json:"max_depth"` // Levels, so a flat TOC has depth 1
	FirstPage *int        `json:"first_page,omitempty"`
	LastPage  *int        `json:"last_page,omitempty"`
	TopLevel  []FlatEntry `json:"top_level,omitempty"`
}

// Summarize counts sections and levels and finds the page range a TOC covers.
func Summarize(entries []*TocEntry) Summary {
	s := Summary{Sections: len(entries)}
	for _, root := range entries {
		s.TopLevel = append(s.TopLevel, FlatEntry{
			ID:    root.ID,
			Title: root.Title,
			Page:  root.PageString(),
			Level: root.Level,
		})
		root.Walk(func(e *TocEntry) {
			s.Entries++
			if e.Level+1 > s.MaxDepth {
				s.MaxDepth = e.Level + 1
			}
			if e.Page == nil {
				return
			}
			p := *e.Page
			if s.FirstPage == nil || p < *s.FirstPage {
				s.FirstPage = &p
			}
			if s.LastPage == nil || p > *s.LastPage {
				q := p
				s.LastPage = &q
			}
		})
	}
	return s
}

// PageRange returns "first-last" or "unknown" when no entry has a page.
func (s Summary) PageRange() string {
	if s.FirstPage == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d-%d", *s.FirstPage, *s.LastPage)
}

func (s Summary) String() string {
	if s.Sections == 0 {
		return "No table of contents found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Document contains %d main sections with %d levels of depth.\n", s.Sections, s.MaxDepth)
	fmt.Fprintf(&b, "Page range covered in TOC: %s\n", s.PageRange())
	b.WriteString("Top-level sections:\n")
	for i, e := range s.TopLevel {
		fmt.Fprintf(&b, "  %d. %s", i+1, e.Title)
		if e.Page != "" {
			fmt.Fprintf(&b, " (p.%s)", e.Page)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// IndexSummary counts what an index holds.
type IndexSummary struct {
	Terms           int `json:"terms"`
	Subentries      int `json:"subentries"`
	References      int `json:"references"` // Page references, ranges counted once
	Ranges          int `json:"ranges"`
	CrossReferences int `json:"cross_references"`
}

// SummarizeIndex counts terms and references across all entries and subentries.
func SummarizeIndex(entries []*IndexEntry) IndexSummary {
	var s IndexSummary
	count := func(e *IndexEntry) {
		s.References += len(e.Pages)
		s.CrossReferences += len(e.SeeAlso)
		for _, p := range e.Pages {
			if p.IsRange() {
				s.Ranges++
			}
		}
	}
	for _, e := range entries {
		s.Terms++
		count(e)
		for _, sub := range e.Subentries {
			s.Subentries++
			count(sub)
		}
	}
	return s
}

func (s IndexSummary) String() string {
	if s.Terms == 0 {
		return "No index entries found."
	}
	return fmt.Sprintf("Index contains %d terms and %d subentries with %d page references (%d ranges) and %d cross-references.",
		s.Terms, s.Subentries, s.References, s.Ranges, s.CrossReferences)
}
