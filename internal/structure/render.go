package structure

import (
	"fmt"
	"strings"
)

// FlatEntry is a TOC entry without its children.
type FlatEntry struct {
	ID    string `json:"node_id,omitempty"`
	Title string `json:"title"`
	Page  string `json:"page,omitempty"`
	Level int    `json:"level"`
}

// Flatten returns all entries of the tree in depth-first order.
func Flatten(entries []*TocEntry) []FlatEntry {
	var result []FlatEntry
	for _, root := range entries {
		root.Walk(func(e *TocEntry) {
			result = append(result, FlatEntry{
				ID:    e.ID,
				Title: e.Title,
				Page:  e.PageString(),
				Level: e.Level,
			})
		})
	}
	return result
}

// LeafEntries returns the entries that have no children.
func LeafEntries(entries []*TocEntry) []*TocEntry {
	var leaves []*TocEntry
	for _, root := range entries {
		root.Walk(func(e *TocEntry) {
			if len(e.Children) == 0 {
				leaves = append(leaves, e)
			}
		})
	}
	return leaves
}

// PageString returns the printed page of the entry, or "" when it has none.
func (e *TocEntry) PageString() string {
	if e.Page != nil {
		return fmt.Sprintf("%d", *e.Page)
	}
	return e.PageLabel
}

// RenderTOC writes the tree back out as dot-leader text, two spaces per level.
// The output classifies as a TOC and rebuilds the same tree.
func RenderTOC(entries []*TocEntry) string {
	var b strings.Builder
	for _, e := range Flatten(entries) {
		b.WriteString(strings.Repeat("  ", e.Level))
		b.WriteString(e.Title)
		if e.Page != "" {
			b.WriteString(" ........ ")
			b.WriteString(e.Page)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderIndex writes entries back out in "term, 10, 12-14" form with
// subentries indented two spaces.
func RenderIndex(entries []*IndexEntry) string {
	var b strings.Builder
	for _, e := range entries {
		writeIndexLine(&b, e, "")
		for _, sub := range e.Subentries {
			writeIndexLine(&b, sub, "  ")
		}
	}
	return b.String()
}

func writeIndexLine(b *strings.Builder, e *IndexEntry, indent string) {
	b.WriteString(indent)
	b.WriteString(e.Term)
	if len(e.Pages) > 0 {
		b.WriteString(", ")
		b.WriteString(FormatPageRefs(e.Pages))
	}
	if len(e.SeeAlso) > 0 {
		if len(e.Pages) > 0 {
			b.WriteString(". See also ")
		} else {
			b.WriteString(", see ")
		}
		b.WriteString(strings.Join(e.SeeAlso, "; "))
	}
	b.WriteByte('\n')
}
