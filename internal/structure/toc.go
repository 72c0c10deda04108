package structure

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

// tocCandidate is a flat TOC line before tree construction.
type tocCandidate struct {
	title     string
	page      *int
	pageLabel string
	numbering *Numbering
	indent    int
	line      int
}

// tocBuilder holds the level signals observed while reading a TOC top to bottom.
type tocBuilder struct {
	logger *slog.Logger

	tiers      map[Scheme]int
	lastScheme Scheme
	lastRoman  int
	lastLetter byte

	baseIndent int
	prevIndent int
	unit       int
}

// BuildTOC assembles the TOC tree from lines in reading order.
// The returned slice holds the level-0 entries of the virtual root.
func BuildTOC(lines []Line, lib *Library, logger *slog.Logger) []*TocEntry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &tocBuilder{
		logger:     logger,
		tiers:      make(map[Scheme]int),
		baseIndent: -1,
		prevIndent: -1,
	}
	return b.build(collectTOCCandidates(lines, lib))
}

// collectTOCCandidates keeps TOC-pattern lines and joins wrapped titles.
func collectTOCCandidates(lines []Line, lib *Library) []tocCandidate {
	var candidates []tocCandidate
	var pending *Line
	// prevOpen is set when the last candidate is a page-less heading directly above.
	prevOpen := false

	for i := range lines {
		line := lines[i]
		if line.Blank {
			pending = nil
			prevOpen = false
			continue
		}
		if _, ok := MarkerKind(line.Text); ok {
			pending = nil
			prevOpen = false
			continue
		}

		m, ok := lib.Match(line)
		if !ok || !m.Kind.IsTOC() {
			pending = nil
			if hasLetter(line.Text) {
				pending = &lines[i]
			}
			prevOpen = false
			continue
		}

		c := tocCandidate{
			title:     m.Title,
			page:      m.Page,
			pageLabel: m.PageLabel,
			numbering: m.Numbering,
			indent:    line.Indent,
			line:      line.Number,
		}

		if c.numbering == nil {
			lower := startsLower(c.title)
			switch {
			case prevOpen && lower && line.Indent > candidates[len(candidates)-1].indent:
				last := &candidates[len(candidates)-1]
				last.title = last.title + " " + c.title
				last.page = c.page
				last.pageLabel = c.pageLabel
				prevOpen = false
				pending = nil
				continue
			case pending != nil && (lower || line.Indent > pending.Indent):
				c.title = pending.Text + " " + c.title
				c.indent = pending.Indent
				c.numbering = ParseNumbering(c.title, true)
			}
		}

		candidates = append(candidates, c)
		prevOpen = c.page == nil && c.pageLabel == ""
		pending = nil
	}

	return candidates
}

func (b *tocBuilder) build(candidates []tocCandidate) []*TocEntry {
	type stackEntry struct {
		entry *TocEntry
		level int
	}

	var stack []stackEntry
	var roots []*TocEntry
	prevLevel := -1

	for _, c := range candidates {
		level := b.level(c)
		if level > prevLevel+1 {
			b.logger.Debug("clamped toc level",
				"line", c.line, "title", c.title, "computed", level, "clamped", prevLevel+1)
			level = prevLevel + 1
		}

		// Pop entries until the top is the parent level
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		level = len(stack)

		entry := &TocEntry{
			Title:     c.title,
			Page:      c.page,
			PageLabel: c.pageLabel,
			Level:     level,
		}

		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1].entry
			parent.Children = append(parent.Children, entry)
		}

		stack = append(stack, stackEntry{entry: entry, level: level})
		prevLevel = level
	}

	return roots
}

// level combines the numbering and indentation signals of a candidate.
func (b *tocBuilder) level(c tocCandidate) int {
	b.observeIndent(c.indent)
	if c.numbering != nil {
		return b.tier(c.numbering) + c.numbering.Depth - 1
	}
	return b.indentLevel(c.indent)
}

// observeIndent tracks the smallest non-zero indentation step seen so far.
func (b *tocBuilder) observeIndent(indent int) {
	if b.baseIndent < 0 || indent < b.baseIndent {
		b.baseIndent = indent
	}
	deltas := []int{indent - b.baseIndent}
	if b.prevIndent >= 0 {
		deltas = append(deltas, indent-b.prevIndent)
	}
	for _, d := range deltas {
		if d < 0 {
			d = -d
		}
		if d > 0 && (b.unit == 0 || d < b.unit) {
			b.unit = d
		}
	}
	b.prevIndent = indent
}

func (b *tocBuilder) indentLevel(indent int) int {
	if b.unit == 0 {
		return 0
	}
	return (indent - b.baseIndent) / b.unit
}

// tier returns the nesting tier of a numbering scheme. Tiers are handed out in
// order of first appearance, so "Part I" above "Chapter 1" puts digits one tier down.
func (b *tocBuilder) tier(n *Numbering) int {
	scheme := n.Scheme
	if n.Ambiguous {
		scheme = b.resolveAmbiguous(n.Token)
	}

	switch scheme {
	case SchemeRoman:
		if n.Depth == 1 {
			b.lastRoman = romanValue(n.Token)
		}
	case SchemeLetter:
		b.lastLetter = n.Token[0]
	}

	if n.Keyword == "appendix" {
		if t, ok := b.tiers[SchemeDigits]; ok {
			b.lastScheme = scheme
			return t
		}
	}

	t, ok := b.tiers[scheme]
	if !ok {
		t = len(b.tiers)
		b.tiers[scheme] = t
	}
	b.lastScheme = scheme
	return t
}

// resolveAmbiguous decides whether a single character such as "C" or "I" is a
// letter or a roman numeral, preferring whichever continues its sequence.
func (b *tocBuilder) resolveAmbiguous(token string) Scheme {
	_, romanSeen := b.tiers[SchemeRoman]
	_, letterSeen := b.tiers[SchemeLetter]

	switch {
	case romanSeen && romanValue(token) == b.lastRoman+1:
		return SchemeRoman
	case letterSeen && token[0] == b.lastLetter+1:
		return SchemeLetter
	case letterSeen && (!romanSeen || b.lastScheme == SchemeLetter):
		return SchemeLetter
	case romanSeen:
		return SchemeRoman
	case token == "I":
		return SchemeRoman
	default:
		return SchemeLetter
	}
}

var romanValues = map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

func romanValue(s string) int {
	s = strings.ToUpper(s)
	result, prev := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		v := romanValues[s[i]]
		if v < prev {
			result -= v
		} else {
			result += v
		}
		prev = v
	}
	return result
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

// WriteEntryIDs assigns sequential zero-padded IDs to all entries in the tree.
func WriteEntryIDs(entries []*TocEntry) int {
	counter := 0
	var assign func([]*TocEntry)
	assign = func(children []*TocEntry) {
		for _, entry := range children {
			entry.ID = fmt.Sprintf("%04d", counter)
			counter++
			if entry.Children != nil {
				assign(entry.Children)
			}
		}
	}
	assign(entries)
	return counter
}
