package structure

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func newTestEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	eng, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return eng
}

func TestNew(t *testing.T) {
	if _, err := New(nil); err != nil {
		t.Errorf("New(nil) error: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ForceMode = "glossary"
	if _, err := New(cfg); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.TOCRatioThreshold = 1.5
	cfg.BlankRunEntryBreak = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected validation error")
	}
}

func TestExtract(t *testing.T) {
	eng := newTestEngine(t, nil)

	t.Run("toc", func(t *testing.T) {
		r := eng.ExtractText(sampleTOC)
		if r.Mode != KindTOC || r.Forced {
			t.Fatalf("mode = %s forced = %v", r.Mode, r.Forced)
		}
		if len(r.TOC) != 2 || r.Index != nil {
			t.Errorf("unexpected result: %d toc, %d index", len(r.TOC), len(r.Index))
		}
		if r.TOC[0].ID != "0000" {
			t.Errorf("expected ids to be assigned, got %q", r.TOC[0].ID)
		}
	})

	t.Run("index", func(t *testing.T) {
		r := eng.ExtractText(sampleIndex)
		if r.Mode != KindIndex || len(r.Index) != 2 || r.TOC != nil {
			t.Errorf("mode = %s, %d index entries", r.Mode, len(r.Index))
		}
	})

	t.Run("prose", func(t *testing.T) {
		r := eng.ExtractText(sampleProse)
		if r.Mode != KindPlain || !r.Empty() {
			t.Errorf("expected empty plain result, got mode %s", r.Mode)
		}
		if r.Confidence() < 0.5 {
			t.Errorf("confidence = %.2f, want >= 0.5", r.Confidence())
		}
	})

	t.Run("pages", func(t *testing.T) {
		r := eng.Extract([]string{"Chapter 1 Introduction .......... 1", "Chapter 2 Methods .......... 15\n  2.1 Setup .......... 16"})
		if r.Mode != KindTOC || len(r.TOC) != 2 || len(r.TOC[1].Children) != 1 {
			t.Errorf("unexpected multi-page result %+v", r)
		}
	})
}

func TestExtractForced(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForceMode = KindTOC
	eng := newTestEngine(t, cfg)

	t.Run("empty input", func(t *testing.T) {
		r := eng.ExtractText("")
		if r.Mode != KindTOC || !r.Forced {
			t.Errorf("mode = %s forced = %v", r.Mode, r.Forced)
		}
		if !r.Empty() {
			t.Error("expected empty result")
		}
		if r.Verdict.Kind != KindPlain {
			t.Errorf("verdict = %s, want plain", r.Verdict.Kind)
		}
	})

	t.Run("overrides classifier", func(t *testing.T) {
		r := eng.ExtractText(sampleIndex)
		if r.Verdict.Kind != KindIndex {
			t.Errorf("verdict = %s, want index", r.Verdict.Kind)
		}
		if r.Mode != KindTOC || r.Index != nil {
			t.Errorf("expected toc builder to run, got mode %s", r.Mode)
		}
		if r.Confidence() != r.Verdict.TOCRatio {
			t.Errorf("confidence = %.2f, want toc ratio %.2f", r.Confidence(), r.Verdict.TOCRatio)
		}
	})

	t.Run("forced toc on prose", func(t *testing.T) {
		r := eng.ExtractText(sampleProse)
		if r.Verdict.Kind != KindPlain || r.Mode != KindTOC {
			t.Errorf("verdict = %s mode = %s, want plain verdict with toc mode", r.Verdict.Kind, r.Mode)
		}
		if !r.Empty() {
			t.Errorf("expected no entries, got %d toc entries", len(r.TOC))
		}
	})

	t.Run("forced index on prose", func(t *testing.T) {
		index, err := eng.Force(KindIndex)
		if err != nil {
			t.Fatal(err)
		}
		r := index.ExtractText(sampleProse)
		if r.Verdict.Kind != KindPlain || r.Mode != KindIndex || !r.Forced {
			t.Errorf("verdict = %s mode = %s forced = %v", r.Verdict.Kind, r.Mode, r.Forced)
		}
		if !r.Empty() {
			t.Errorf("expected no entries, got %d index entries: %v", len(r.Index), r.Index)
		}
	})

	t.Run("force copy", func(t *testing.T) {
		auto, err := eng.Force("")
		if err != nil {
			t.Fatal(err)
		}
		if r := auto.ExtractText(sampleIndex); r.Forced || r.Mode != KindIndex {
			t.Errorf("expected automatic detection, got mode %s forced %v", r.Mode, r.Forced)
		}
		if eng.Config().ForceMode != KindTOC {
			t.Error("Force modified the original engine")
		}
		if _, err := eng.Force("bogus"); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("expected ErrUnknownKind, got %v", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	eng := newTestEngine(t, nil)

	t.Run("toc", func(t *testing.T) {
		first := eng.ExtractText(sampleTOC)
		second := eng.ExtractText(RenderTOC(first.TOC))
		if second.Mode != KindTOC {
			t.Fatalf("rendered toc classified as %s", second.Mode)
		}
		if !reflect.DeepEqual(Flatten(first.TOC), Flatten(second.TOC)) {
			t.Errorf("round trip changed tree:\n%v\n%v", Flatten(first.TOC), Flatten(second.TOC))
		}
	})

	t.Run("index", func(t *testing.T) {
		text := sampleIndex + "\nfruit, see apples\ncherries, 30. See also fruit"
		first := eng.ExtractText(text)
		second := eng.ExtractText(RenderIndex(first.Index))
		if second.Mode != KindIndex {
			t.Fatalf("rendered index classified as %s", second.Mode)
		}
		if !reflect.DeepEqual(first.Index, second.Index) {
			t.Errorf("round trip changed entries:\n%s\n%s", RenderIndex(first.Index), RenderIndex(second.Index))
		}
	})
}

func TestConcurrentExtract(t *testing.T) {
	eng := newTestEngine(t, nil)
	want := Flatten(eng.ExtractText(sampleTOC).TOC)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Flatten(eng.ExtractText(sampleTOC).TOC); !reflect.DeepEqual(got, want) {
				errs <- "concurrent extraction produced a different tree"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

var samplePages = []string{
	sampleProse,
	"Contents\nChapter 1 Introduction ..... 1\nChapter 2 Methods ..... 15",
	"  2.1 Setup ..... 16\nChapter 3 Results ..... 30",
	sampleProse,
	"Index\n" + sampleIndex,
}

func TestScan(t *testing.T) {
	eng := newTestEngine(t, nil)

	verdicts, err := eng.Scan(context.Background(), samplePages)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	want := []Kind{KindPlain, KindTOC, KindTOC, KindPlain, KindIndex}
	if len(verdicts) != len(want) {
		t.Fatalf("expected %d verdicts, got %d", len(want), len(verdicts))
	}
	for i, pv := range verdicts {
		if pv.Page != i+1 {
			t.Errorf("verdict %d page = %d", i, pv.Page)
		}
		if pv.Verdict.Kind != want[i] {
			t.Errorf("page %d kind = %s, want %s", pv.Page, pv.Verdict.Kind, want[i])
		}
	}

	spans := Spans(verdicts)
	wantSpans := []Span{{Kind: KindTOC, First: 2, Last: 3}, {Kind: KindIndex, First: 5, Last: 5}}
	if !reflect.DeepEqual(spans, wantSpans) {
		t.Errorf("Spans() = %+v, want %+v", spans, wantSpans)
	}
	if spans[0].Pages() != 2 {
		t.Errorf("span pages = %d, want 2", spans[0].Pages())
	}
}

func TestScanLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScanLimit = 3
	eng := newTestEngine(t, cfg)

	verdicts, err := eng.Scan(context.Background(), samplePages)
	if err != nil {
		t.Fatal(err)
	}
	if len(verdicts) != 3 {
		t.Errorf("expected 3 verdicts, got %d", len(verdicts))
	}
}

func TestScanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newTestEngine(t, nil)
	if _, err := eng.Scan(ctx, samplePages); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSpans(t *testing.T) {
	verdicts := []PageVerdict{
		{Page: 1, Verdict: Verdict{Kind: KindTOC}},
		{Page: 2, Verdict: Verdict{Kind: KindPlain}},
		{Page: 3, Verdict: Verdict{Kind: KindTOC}},
		{Page: 4, Verdict: Verdict{Kind: KindIndex}},
		{Page: 5, Verdict: Verdict{Kind: KindIndex}},
	}
	want := []Span{
		{Kind: KindTOC, First: 1, Last: 1},
		{Kind: KindTOC, First: 3, Last: 3},
		{Kind: KindIndex, First: 4, Last: 5},
	}
	if got := Spans(verdicts); !reflect.DeepEqual(got, want) {
		t.Errorf("Spans() = %+v, want %+v", got, want)
	}
	if got := Spans(nil); got != nil {
		t.Errorf("Spans(nil) = %+v, want nil", got)
	}
}

func TestAnalyze(t *testing.T) {
	eng := newTestEngine(t, nil)

	doc, err := eng.Analyze(context.Background(), samplePages)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if doc.TOC == nil || doc.Index == nil {
		t.Fatalf("expected toc and index, got %+v", doc)
	}

	toc := doc.TOC.TOC
	if len(toc) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(toc))
	}
	if len(toc[1].Children) != 1 || toc[1].Children[0].Title != "2.1 Setup" {
		t.Errorf("expected 2.1 Setup under Chapter 2 across the page break")
	}
	if len(doc.Index.Index) != 2 {
		t.Errorf("expected 2 index entries, got %d", len(doc.Index.Index))
	}

	plain, err := eng.Analyze(context.Background(), []string{sampleProse})
	if err != nil {
		t.Fatal(err)
	}
	if plain.TOC != nil || plain.Index != nil || len(plain.Spans) != 0 {
		t.Errorf("expected no structure in prose, got %+v", plain)
	}
}
