package pdftext

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	rowTolerance = 2.0
	// spaceRatio of the font size separates two glyphs into words.
	spaceRatio = 0.25
	// charRatio of the font size approximates one column of monospaced output.
	charRatio = 0.5
)

// Native extracts text in pure Go. Rows are rebuilt from glyph positions so
// indentation survives, which TOC nesting depends on.
type Native struct{}

func (n *Native) Name() string { return "native" }

// ExtractPages reads every page; pages without content come back empty.
func (n *Native) ExtractPages(ctx context.Context, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i, err)
		}
		pages[i-1] = text
	}

	return pages, nil
}

// pageText lays out a page, falling back to plain text when the content
// stream cannot be positioned. The pdf package panics on some malformed streams.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = page.GetPlainText(nil)
		}
	}()
	return layoutRows(page.Content().Text), nil
}

// layoutRows groups glyphs into rows by baseline and renders them top to
// bottom with leading spaces proportional to the distance from the left margin.
func layoutRows(texts []pdf.Text) string {
	var glyphs []pdf.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" || t.S == " " {
			glyphs = append(glyphs, t)
		}
	}
	if len(glyphs) == 0 {
		return ""
	}

	type row struct {
		y      float64
		glyphs []pdf.Text
	}
	var rows []*row
	left := math.Inf(1)
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) != "" && g.X < left {
			left = g.X
		}
		var target *row
		for _, r := range rows {
			if math.Abs(r.y-g.Y) <= rowTolerance {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{y: g.Y}
			rows = append(rows, target)
		}
		target.glyphs = append(target.glyphs, g)
	}

	// PDF y grows upwards
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		sort.SliceStable(r.glyphs, func(a, c int) bool { return r.glyphs[a].X < r.glyphs[c].X })
		b.WriteString(renderRow(r.glyphs, left))
	}
	return b.String()
}

func renderRow(glyphs []pdf.Text, left float64) string {
	for len(glyphs) > 0 && strings.TrimSpace(glyphs[0].S) == "" {
		glyphs = glyphs[1:]
	}
	if len(glyphs) == 0 {
		return ""
	}

	var b strings.Builder
	first := glyphs[0]
	if size := fontSize(first); first.X > left {
		b.WriteString(strings.Repeat(" ", int(math.Round((first.X-left)/(size*charRatio)))))
	}

	end := first.X
	for i, g := range glyphs {
		if i > 0 && g.X-end > fontSize(g)*spaceRatio && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		end = g.X + g.W
	}
	return strings.TrimRight(b.String(), " ")
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 10
	}
	return t.FontSize
}
