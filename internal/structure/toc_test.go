package structure

import (
	"testing"
)

// checkTree verifies the structural invariants every built tree must hold.
func checkTree(t *testing.T, roots []*TocEntry) {
	t.Helper()
	ids := make(map[string]bool)
	var walk func(entries []*TocEntry, level int)
	walk = func(entries []*TocEntry, level int) {
		for _, e := range entries {
			if e.Level != level {
				t.Errorf("entry %q has level %d, want %d", e.Title, e.Level, level)
			}
			if e.ID != "" {
				if ids[e.ID] {
					t.Errorf("duplicate id %s", e.ID)
				}
				ids[e.ID] = true
			}
			walk(e.Children, level+1)
		}
	}
	walk(roots, 0)
}

func buildTOC(text string) []*TocEntry {
	entries := BuildTOC(Normalize(text, 1, 4), NewLibrary(false), nil)
	WriteEntryIDs(entries)
	return entries
}

func TestBuildTOC(t *testing.T) {
	t.Run("chapters and sections", func(t *testing.T) {
		roots := buildTOC(sampleTOC)
		checkTree(t, roots)
		if len(roots) != 2 {
			t.Fatalf("expected 2 root entries, got %d", len(roots))
		}
		if roots[0].Title != "Chapter 1 Introduction" || *roots[0].Page != 1 {
			t.Errorf("unexpected first entry %q page %v", roots[0].Title, roots[0].PageString())
		}
		if len(roots[1].Children) != 1 {
			t.Fatalf("expected Chapter 2 to have 1 child, got %d", len(roots[1].Children))
		}
		child := roots[1].Children[0]
		if child.Title != "2.1 Setup" || *child.Page != 16 || child.Level != 1 {
			t.Errorf("unexpected child %q page %s level %d", child.Title, child.PageString(), child.Level)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if roots := buildTOC(""); len(roots) != 0 {
			t.Errorf("expected no entries, got %d", len(roots))
		}
	})

	t.Run("marker line skipped", func(t *testing.T) {
		roots := buildTOC("Contents\n\n" + sampleTOC)
		if len(roots) != 2 || roots[0].Title != "Chapter 1 Introduction" {
			t.Errorf("expected marker to be skipped, got %d roots", len(roots))
		}
	})

	t.Run("indentation only", func(t *testing.T) {
		text := `Preface ..... ix
Getting Started ..... 1
    Installing ..... 2
    Configuring ..... 5
        Advanced options ..... 7
Reference ..... 20`
		roots := buildTOC(text)
		checkTree(t, roots)
		if len(roots) != 3 {
			t.Fatalf("expected 3 root entries, got %d", len(roots))
		}
		if roots[0].Page != nil || roots[0].PageLabel != "ix" {
			t.Errorf("expected roman page label, got page %v label %q", roots[0].Page, roots[0].PageLabel)
		}
		started := roots[1]
		if len(started.Children) != 2 {
			t.Fatalf("expected 2 children under %q, got %d", started.Title, len(started.Children))
		}
		if len(started.Children[1].Children) != 1 || started.Children[1].Children[0].Title != "Advanced options" {
			t.Errorf("expected Advanced options under Configuring")
		}
	})

	t.Run("parts chapters and appendices", func(t *testing.T) {
		text := `Part I Foundations ..... 1
Chapter 1 Basics ..... 3
1.1 Terms ..... 4
Chapter 2 More ..... 10
Part II Practice ..... 20
Chapter 3 Doing ..... 21
Appendix A Tables ..... 40`
		roots := buildTOC(text)
		checkTree(t, roots)
		if len(roots) != 2 {
			t.Fatalf("expected 2 parts, got %d", len(roots))
		}
		if len(roots[0].Children) != 2 {
			t.Fatalf("expected 2 chapters in part I, got %d", len(roots[0].Children))
		}
		if len(roots[0].Children[0].Children) != 1 {
			t.Errorf("expected 1.1 under chapter 1")
		}
		second := roots[1]
		if len(second.Children) != 2 || second.Children[1].Title != "Appendix A Tables" {
			t.Errorf("expected appendix at chapter level in part II")
		}
	})

	t.Run("outline letters and roman numerals", func(t *testing.T) {
		text := `I. Introduction ..... 1
A. Background ..... 2
B. Scope ..... 3
C. Methods ..... 4
II. Results ..... 10`
		roots := buildTOC(text)
		checkTree(t, roots)
		if len(roots) != 2 {
			t.Fatalf("expected 2 root entries, got %d", len(roots))
		}
		if len(roots[0].Children) != 3 {
			t.Errorf("expected A, B and C under I, got %d children", len(roots[0].Children))
		}
		if roots[1].Title != "II. Results" {
			t.Errorf("second root = %q", roots[1].Title)
		}
	})

	t.Run("level jump clamped", func(t *testing.T) {
		text := `1 Intro ..... 1
1.1.1 Deep ..... 2
2 Next ..... 5`
		roots := buildTOC(text)
		checkTree(t, roots)
		if len(roots) != 2 {
			t.Fatalf("expected 2 root entries, got %d", len(roots))
		}
		if len(roots[0].Children) != 1 || roots[0].Children[0].Level != 1 {
			t.Errorf("expected deep entry clamped to level 1 under Intro")
		}
	})

	t.Run("first entry clamped to root", func(t *testing.T) {
		roots := buildTOC("2.3 Midway ..... 7\n2.4 Later ..... 9")
		checkTree(t, roots)
		if len(roots) != 1 || len(roots[0].Children) != 1 {
			t.Errorf("expected first entry at root with one child")
		}
	})

	t.Run("wrapped title", func(t *testing.T) {
		text := `1 A very long chapter title that
    continues here ..... 45
2 Next ..... 50`
		roots := buildTOC(text)
		checkTree(t, roots)
		if len(roots) != 2 {
			t.Fatalf("expected 2 root entries, got %d", len(roots))
		}
		want := "1 A very long chapter title that continues here"
		if roots[0].Title != want {
			t.Errorf("title = %q, want %q", roots[0].Title, want)
		}
		if roots[0].Page == nil || *roots[0].Page != 45 {
			t.Errorf("expected page 45, got %s", roots[0].PageString())
		}
	})

	t.Run("wrapped numbered heading", func(t *testing.T) {
		text := `3. Measuring the throughput of
      distributed queues ..... 88
4. Summary ..... 95`
		roots := buildTOC(text)
		checkTree(t, roots)
		if len(roots) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(roots))
		}
		if roots[0].Title != "3. Measuring the throughput of distributed queues" {
			t.Errorf("title = %q", roots[0].Title)
		}
	})

	t.Run("body text dropped", func(t *testing.T) {
		text := "Chapter 1 Introduction ..... 1\n\nThis page intentionally left blank\n\nChapter 2 Methods ..... 15"
		roots := buildTOC(text)
		if len(roots) != 2 {
			t.Errorf("expected 2 entries, got %d", len(roots))
		}
	})
}

func TestWriteEntryIDs(t *testing.T) {
	roots := buildTOC(sampleTOC)
	if n := WriteEntryIDs(roots); n != 3 {
		t.Errorf("WriteEntryIDs() = %d, want 3", n)
	}
	want := []string{"0000", "0001", "0002"}
	for i, e := range Flatten(roots) {
		if e.ID != want[i] {
			t.Errorf("entry %d id = %q, want %q", i, e.ID, want[i])
		}
	}
}

func TestRomanValue(t *testing.T) {
	tests := map[string]int{"I": 1, "IV": 4, "IX": 9, "XIV": 14, "MCMXC": 1990, "c": 100}
	for input, want := range tests {
		if got := romanValue(input); got != want {
			t.Errorf("romanValue(%q) = %d, want %d", input, got, want)
		}
	}
}
