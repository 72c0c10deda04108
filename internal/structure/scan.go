package structure

import (
	"context"
	"sync"
)

// Document is the structure found by scanning a whole document page by page.
type Document struct {
	Pages []PageVerdict `json:"pages"`
	Spans []Span        `json:"spans,omitempty"`
	TOC   *Result       `json:"toc,omitempty"`
	Index *Result       `json:"index,omitempty"`
}

// Scan classifies each page independently. Only the first ScanLimit pages
// are examined when a limit is configured. Pages are classified in parallel
// and returned in page order.
func (e *Engine) Scan(ctx context.Context, pages []string) ([]PageVerdict, error) {
	limit := len(pages)
	if e.cfg.ScanLimit > 0 && e.cfg.ScanLimit < limit {
		limit = e.cfg.ScanLimit
	}

	result := make([]PageVerdict, limit)

	jobs := make(chan int, limit)
	var wg sync.WaitGroup
	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				lines := Normalize(pages[i], i+1, e.cfg.TabWidth)
				result[i] = PageVerdict{Page: i + 1, Verdict: e.Classify(lines)}
			}
		}()
	}

	for i := 0; i < limit; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Spans groups consecutive pages with the same structured kind.
// Plain pages end a span and never start one.
func Spans(verdicts []PageVerdict) []Span {
	var spans []Span
	for _, pv := range verdicts {
		kind := pv.Verdict.Kind
		if kind != KindTOC && kind != KindIndex {
			continue
		}
		if n := len(spans); n > 0 && spans[n-1].Kind == kind && spans[n-1].Last == pv.Page-1 {
			spans[n-1].Last = pv.Page
			continue
		}
		spans = append(spans, Span{Kind: kind, First: pv.Page, Last: pv.Page})
	}
	return spans
}

// Analyze scans a document, then extracts the first TOC span and the last
// index span found. Books put the contents up front and the index at the back.
func (e *Engine) Analyze(ctx context.Context, pages []string) (*Document, error) {
	verdicts, err := e.Scan(ctx, pages)
	if err != nil {
		return nil, err
	}

	doc := &Document{Pages: verdicts, Spans: Spans(verdicts)}

	var tocSpan, indexSpan *Span
	for i := range doc.Spans {
		span := &doc.Spans[i]
		switch span.Kind {
		case KindTOC:
			if tocSpan == nil {
				tocSpan = span
			}
		case KindIndex:
			indexSpan = span
		}
	}

	if tocSpan != nil {
		doc.TOC = e.extractSpan(pages, *tocSpan)
	}
	if indexSpan != nil {
		doc.Index = e.extractSpan(pages, *indexSpan)
	}

	e.logger.Debug("analyzed document",
		"pages", len(pages), "scanned", len(verdicts), "spans", len(doc.Spans))

	return doc, nil
}

func (e *Engine) extractSpan(pages []string, span Span) *Result {
	var lines []Line
	for p := span.First; p <= span.Last; p++ {
		pageLines := Normalize(pages[p-1], p, e.cfg.TabWidth)
		for j := range pageLines {
			pageLines[j].Number = len(lines) + j
		}
		lines = append(lines, pageLines...)
	}

	forced, err := e.Force(span.Kind)
	if err != nil {
		return &Result{Mode: KindPlain}
	}
	return forced.ExtractLines(lines)
}
