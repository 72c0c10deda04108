package structure

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Characters dropped before matching. Soft hyphens and zero-width marks are common
// in text pulled out of PDFs and OCR output.
var invisibleReplacer = strings.NewReplacer(
	"\u00ad", "",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

// NormalizePages normalizes the text of each page in order.
// Pages are numbered from 1 in slice order.
func NormalizePages(pages []string, tabWidth int) []Line {
	var lines []Line
	for i, page := range pages {
		pageLines := Normalize(page, i+1, tabWidth)
		for j := range pageLines {
			pageLines[j].Number = len(lines) + j
		}
		lines = append(lines, pageLines...)
	}
	return lines
}

// Normalize splits raw extracted text into logical lines.
// A form feed starts a new page; firstPage is the page number of the first segment.
func Normalize(text string, firstPage, tabWidth int) []Line {
	if tabWidth < 1 {
		tabWidth = 4
	}
	if firstPage < 1 {
		firstPage = 1
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	segments := strings.Split(text, "\f")
	// pdftotext terminates every page with a form feed.
	if len(segments) > 1 && strings.TrimSpace(segments[len(segments)-1]) == "" {
		segments = segments[:len(segments)-1]
	}

	var lines []Line
	for si, segment := range segments {
		for _, raw := range strings.Split(segment, "\n") {
			lines = append(lines, normalizeLine(raw, firstPage+si, len(lines), tabWidth))
		}
	}

	return lines
}

func normalizeLine(raw string, page, number, tabWidth int) Line {
	s := norm.NFKC.String(invisibleReplacer.Replace(raw))

	indent := 0
	i := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ':
			indent++
			continue
		case '\t':
			indent += tabWidth
			continue
		}
		break
	}

	text := cleanText(s[i:])

	return Line{
		Raw:    raw,
		Text:   text,
		Indent: indent,
		Page:   page,
		Number: number,
		Blank:  text == "",
	}
}

// cleanText drops control characters and collapses whitespace runs.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// NonBlank returns the lines that carry text.
func NonBlank(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if !l.Blank {
			out = append(out, l)
		}
	}
	return out
}

// Join renders lines back into text, re-creating indentation with spaces.
func Join(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if !l.Blank {
			b.WriteString(strings.Repeat(" ", l.Indent))
			b.WriteString(l.Text)
		}
	}
	return b.String()
}
