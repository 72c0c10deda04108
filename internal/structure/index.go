package structure

import (
	"log/slog"
	"strings"
)

// indexBuilder tracks the open entry while index lines are read in order.
type indexBuilder struct {
	logger     *slog.Logger
	blankBreak int

	entries []*IndexEntry

	open       *IndexEntry
	openIndent int
	sub        *IndexEntry
	subIndent  int
	wrapped    bool // Last line of the open entry ended with a comma

	// Term-only line waiting for a deeper line to show it heads an entry
	pending       string
	pendingIndent int

	repaired int
}

// BuildIndex assembles index entries from lines in reading order.
// An entry stays open across wrapped lines until a less indented term,
// a letter-group header or a run of blankBreak blank lines closes it.
// Subentries are one level deep; deeper lines attach to the current main entry.
// A line with a term but no pages or cross references only becomes an entry
// when the next line is indented beneath it, so running heads and body text
// produce nothing.
func BuildIndex(lines []Line, blankBreak int, logger *slog.Logger) []*IndexEntry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if blankBreak < 1 {
		blankBreak = 1
	}
	b := &indexBuilder{logger: logger, blankBreak: blankBreak}
	b.close()

	blank := 0
	for _, line := range lines {
		if line.Blank {
			blank++
			if blank >= b.blankBreak {
				b.close()
			}
			continue
		}
		blank = 0
		b.add(line)
	}

	if b.repaired > 0 {
		logger.Debug("repaired reversed page ranges", "count", b.repaired)
	}
	return b.entries
}

func (b *indexBuilder) close() {
	b.open, b.openIndent = nil, -1
	b.sub, b.subIndent = nil, -1
	b.wrapped = false
	b.pending, b.pendingIndent = "", -1
}

// promote opens the pending term when line continues it, and drops it otherwise.
func (b *indexBuilder) promote(line Line) {
	if b.pending == "" {
		return
	}
	term, indent := b.pending, b.pendingIndent
	b.pending, b.pendingIndent = "", -1

	if _, ok := MatchContinuation(line, indent); !ok {
		b.logger.Debug("dropped term without pages", "term", term)
		return
	}
	entry := &IndexEntry{Term: term}
	b.entries = append(b.entries, entry)
	b.open, b.openIndent = entry, indent
}

func (b *indexBuilder) add(line Line) {
	if _, ok := MarkerKind(line.Text); ok {
		return
	}
	if IsLetterHeader(line.Text) {
		b.close()
		return
	}

	b.promote(line)
	if b.open != nil && line.Indent > b.openIndent {
		b.continuation(line)
		return
	}

	m, ok := parseIndexLine(line.Text)
	if !ok {
		return
	}
	b.repaired += m.Repaired

	if m.Term == "" {
		if b.open == nil {
			return
		}
		// Pages at the entry's own indentation only continue a list ending in a
		// comma; otherwise they are a printed page number at the foot of the page.
		if len(m.Pages) > 0 && !b.wrapped {
			b.logger.Debug("dropped page-only line", "line", line.Number, "text", line.Text)
			return
		}
		b.open.Pages = append(b.open.Pages, m.Pages...)
		b.open.SeeAlso = append(b.open.SeeAlso, m.SeeAlso...)
		b.wrapped = strings.HasSuffix(line.Text, ",")
		return
	}
	if _, ok := MarkerKind(m.Term); ok {
		// Running head such as "INDEX 345"
		return
	}

	term := m.Term
	if loc := continuedPattern.FindStringIndex(term); loc != nil {
		term = strings.TrimSpace(term[:loc[0]])
		if prev := b.find(term); prev != nil {
			prev.Pages = append(prev.Pages, m.Pages...)
			prev.SeeAlso = append(prev.SeeAlso, m.SeeAlso...)
			b.open, b.openIndent = prev, line.Indent
			b.sub, b.subIndent = nil, -1
			b.wrapped = strings.HasSuffix(line.Text, ",")
			return
		}
	}

	if len(m.Pages) == 0 && len(m.SeeAlso) == 0 {
		b.close()
		b.pending, b.pendingIndent = term, line.Indent
		return
	}

	entry := &IndexEntry{Term: term, Pages: m.Pages, SeeAlso: m.SeeAlso}
	b.entries = append(b.entries, entry)
	b.open, b.openIndent = entry, line.Indent
	b.sub, b.subIndent = nil, -1
	b.wrapped = strings.HasSuffix(line.Text, ",")
}

// continuation handles a line indented deeper than the open main entry.
func (b *indexBuilder) continuation(line Line) {
	m, ok := MatchContinuation(line, b.openIndent)
	if !ok {
		return
	}
	b.repaired += m.Repaired

	if m.Term == "" {
		target := b.open
		if b.sub != nil && (len(b.sub.Pages) == 0 || line.Indent > b.subIndent) {
			target = b.sub
		}
		target.Pages = append(target.Pages, m.Pages...)
		target.SeeAlso = append(target.SeeAlso, m.SeeAlso...)
		b.wrapped = strings.HasSuffix(line.Text, ",")
		return
	}

	sub := &IndexEntry{Term: m.Term, Pages: m.Pages, SeeAlso: m.SeeAlso}
	b.open.Subentries = append(b.open.Subentries, sub)
	b.sub, b.subIndent = sub, line.Indent
	b.wrapped = strings.HasSuffix(line.Text, ",")
}

// find returns the most recent entry whose term matches, ignoring case.
func (b *indexBuilder) find(term string) *IndexEntry {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if strings.EqualFold(b.entries[i].Term, term) {
			return b.entries[i]
		}
	}
	return nil
}
