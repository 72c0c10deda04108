package structure

import "math"

// Thresholds are the minimum matched-line ratios for a structured verdict.
type Thresholds struct {
	TOC   float64
	Index float64
}

// Tally runs every non-blank line through the library and counts matches per family.
// Index continuations are tracked against the indentation of the last main entry.
func (l *Library) Tally(lines []Line) Tally {
	var t Tally
	mainIndent := -1

	for _, line := range lines {
		if line.Blank {
			continue
		}
		t.Lines++

		m, ok := l.Match(line)
		t.Ranges += m.Ranges
		t.Repaired += m.Repaired

		switch {
		case ok && m.Kind.IsTOC():
			switch m.Kind {
			case PatternLeader:
				t.Leader++
			case PatternTrailingNumber:
				t.TrailingNumber++
			default:
				t.Numbered++
			}
		case ok && m.Kind == PatternIndexEntry:
			if mainIndent >= 0 && line.Indent > mainIndent {
				t.Continuation++
			} else {
				t.IndexEntry++
				mainIndent = line.Indent
			}
		case ok && m.Kind == PatternRange:
			if mainIndent >= 0 {
				t.Continuation++
			}
		default:
			if c, ok := MatchContinuation(line, mainIndent); ok {
				t.Continuation++
				t.Ranges += c.Ranges
				t.Repaired += c.Repaired
			}
		}
	}

	return t
}

// Score turns match counts into a verdict. It is a pure function of its inputs.
func Score(t Tally, th Thresholds) Verdict {
	v := Verdict{Kind: KindPlain, Tally: t}
	if t.Lines == 0 {
		return v
	}

	v.TOCRatio = float64(t.TOC()) / float64(t.Lines)
	v.IndexRatio = float64(t.Index()) / float64(t.Lines)

	switch {
	case v.TOCRatio >= th.TOC && v.TOCRatio > v.IndexRatio:
		v.Kind = KindTOC
		v.Confidence = v.TOCRatio
	case v.IndexRatio >= th.Index && v.IndexRatio > v.TOCRatio:
		v.Kind = KindIndex
		v.Confidence = v.IndexRatio
	default:
		v.Confidence = 1 - math.Max(v.TOCRatio, v.IndexRatio)
	}

	return v
}

// Classify tallies lines and scores them. The first non-blank line is
// reported as the heading when it is a "Contents" or "Index" marker.
func Classify(lines []Line, lib *Library, th Thresholds) Verdict {
	v := Score(lib.Tally(lines), th)
	for _, line := range lines {
		if line.Blank {
			continue
		}
		if _, ok := MarkerKind(line.Text); ok {
			v.Heading = line.Text
		}
		break
	}
	return v
}
