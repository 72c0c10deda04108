// Package structure recovers the logical structure of extracted document text.
//
// Text pulled from a PDF or OCR run loses its layout. This package reads the
// line-level conventions books use for a table of contents and a
// back-of-book index, decides which of the two a block of text is, and
// rebuilds it as a tree of sections or a list of index terms.
//
// # Pipeline
//
//   - Normalize: split raw text into lines, recording indentation and page.
//   - Library: ordered recognizers for dot leaders, trailing page numbers,
//     numbered headings, "term, 10, 12-14" index entries and page ranges.
//   - Classify: count matches and compare ratios against thresholds,
//     yielding TOC, INDEX or PLAIN with a confidence in [0,1].
//   - BuildTOC: nest entries by numbering scheme and depth, falling back to
//     indentation.
//   - BuildIndex: group wrapped lines, subentries, ranges and see-also
//     references under their main term.
//
// # Usage
//
//	eng, err := structure.New(structure.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	result := eng.Extract(pages)
//	switch result.Mode {
//	case structure.KindTOC:
//		fmt.Print(structure.RenderTOC(result.TOC))
//	case structure.KindIndex:
//		fmt.Print(structure.RenderIndex(result.Index))
//	}
//
// Engine.Scan and Engine.Analyze classify each page of a whole document and
// locate the contents and index pages before extracting them.
package structure
