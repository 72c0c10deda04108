package structure

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// PatternKind identifies which recognizer matched a line.
type PatternKind int

const (
	PatternNone PatternKind = iota
	PatternLeader
	PatternTrailingNumber
	PatternNumberedHeading
	PatternIndexEntry
	PatternRange
	PatternContinuation
)

var patternNames = map[PatternKind]string{
	PatternNone:            "none",
	PatternLeader:          "leader",
	PatternTrailingNumber:  "trailing-number",
	PatternNumberedHeading: "numbered-heading",
	PatternIndexEntry:      "index-entry",
	PatternRange:           "range",
	PatternContinuation:    "continuation",
}

func (k PatternKind) String() string {
	if s, ok := patternNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsTOC reports whether the pattern is TOC-indicative.
func (k PatternKind) IsTOC() bool {
	return k == PatternLeader || k == PatternTrailingNumber || k == PatternNumberedHeading
}

// IsIndex reports whether the pattern is index-indicative.
func (k PatternKind) IsIndex() bool {
	return k == PatternIndexEntry || k == PatternContinuation
}

// Scheme is the numbering system of a heading token.
type Scheme string

const (
	SchemeDigits Scheme = "digits"
	SchemeRoman  Scheme = "roman"
	SchemeLetter Scheme = "letter"
)

// Numbering describes the numbering token at the start of a heading.
type Numbering struct {
	Token     string // "2.1", "IV", "A.1"
	Scheme    Scheme
	Depth     int    // Dot-separated components, at least 1
	Keyword   string // Lower-cased "chapter", "part", ... when present
	Ambiguous bool   // Single character that is both a letter and a roman numeral
}

// Match is the structured result of a recognizer.
type Match struct {
	Kind      PatternKind
	Title     string
	Page      *int
	PageLabel string
	Numbering *Numbering

	Term     string
	Pages    []PageReference
	SeeAlso  []string
	Ranges   int // Range tokens parsed
	Repaired int // Reversed ranges swapped while parsing
}

// Recognizer matches one line convention.
type Recognizer interface {
	Kind() PatternKind
	Match(line Line) (Match, bool)
}

const pageToken = `\d{1,5}(?:\s*[-–—]\s*\d{1,5})?`

var (
	// Title, a run of two or more leader characters, page number or roman page label.
	leaderPattern = regexp.MustCompile(`^(.*?\S)\s*(?:[.·•…\-–—_]\s*){2,}(\d{1,5}|[ivxlcdm]{1,7})$`)

	trailingNumberPattern = regexp.MustCompile(`^(.*?\S)\s+(\d{1,5})$`)

	keywordPattern = regexp.MustCompile(`^(?i:(chapter|section|part|appendix|unit|lesson|book))\s+(\d{1,3}(?:\.\d{1,3})*|[IVXLCDM]{1,7}|[A-Z])\b[.:]?`)
	dottedPattern  = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3})*)(\.?)\s+\S`)
	romanPattern   = regexp.MustCompile(`^([IVXLCDM]{1,7})\.\s+\S`)
	letterPattern  = regexp.MustCompile(`^([A-Z])((?:\.\d{1,3})*)(\.?)\s+\S`)
	validRoman     = regexp.MustCompile(`^M{0,3}(CM|CD|D?C{0,3})(XC|XL|L?X{0,3})(IX|IV|V?I{0,3})$`)

	pageTokenPattern = regexp.MustCompile(`(\d{1,5})(?:\s*[-–—]\s*(\d{1,5}))?`)
	pageListPattern  = regexp.MustCompile(`^` + pageToken + `(?:\s*,\s*` + pageToken + `)*,?$`)
	commaTermPattern = regexp.MustCompile(`^(.*?[^\s,])\s*,\s*(` + pageToken + `(?:\s*,\s*` + pageToken + `)*),?$`)
	spaceTermPattern = regexp.MustCompile(`^(.*?[^\s,])\s+(` + pageToken + `(?:\s*,\s*` + pageToken + `)*),?$`)
	seeAlsoPattern   = regexp.MustCompile(`^(.*?)(?:[.,;:(]\s*(?i:see)|\s+See|^(?i:see))(\s+(?i:also))?\s+(.+?)\)?\.?$`)
	leadingNumbering = regexp.MustCompile(`^\d+(?:\.\d+)*\.\s|^\d+(?:\.\d+)+\s`)

	markerPattern       = regexp.MustCompile(`(?i)^(table of contents|contents|brief contents|contents at a glance|summary of contents|index|subject index|general index|author index|name index|index of names|alphabetical index)(?:\s*\((?:continued|cont\.?|cont'd)\))?[.:]?$`)
	letterHeaderPattern = regexp.MustCompile(`^[-–—=*\s]*[A-Z][.:]?[-–—=*\s]*$`)
	continuedPattern    = regexp.MustCompile(`(?i)\s*[(\[](?:continued|cont\.?|cont'd)[)\]]\s*$`)
)

// Library is an ordered list of recognizers. The first match wins.
type Library struct {
	recognizers []Recognizer
}

// NewLibrary returns the default recognizer order. With numberingFirst the
// numbered-heading recognizer runs before the leader and trailing-number ones.
func NewLibrary(numberingFirst bool) *Library {
	toc := []Recognizer{LeaderRecognizer{}, TrailingNumberRecognizer{}, NumberedHeadingRecognizer{}}
	if numberingFirst {
		toc = []Recognizer{NumberedHeadingRecognizer{}, LeaderRecognizer{}, TrailingNumberRecognizer{}}
	}
	return &Library{recognizers: append(toc, IndexEntryRecognizer{}, RangeRecognizer{})}
}

// NewLibraryWith builds a library from an explicit recognizer order.
func NewLibraryWith(recognizers ...Recognizer) *Library {
	return &Library{recognizers: recognizers}
}

// Recognizers returns the recognizers in precedence order.
func (l *Library) Recognizers() []Recognizer {
	return append([]Recognizer(nil), l.recognizers...)
}

// Match runs the recognizers in order and returns the first match.
func (l *Library) Match(line Line) (Match, bool) {
	if line.Blank {
		return Match{}, false
	}
	for _, r := range l.recognizers {
		if m, ok := r.Match(line); ok {
			return m, true
		}
	}
	return Match{}, false
}

// LeaderRecognizer matches "Title ........ 12".
type LeaderRecognizer struct{}

func (LeaderRecognizer) Kind() PatternKind { return PatternLeader }

func (LeaderRecognizer) Match(line Line) (Match, bool) {
	m := leaderPattern.FindStringSubmatch(line.Text)
	if m == nil {
		return Match{}, false
	}
	title := strings.TrimSpace(m[1])
	if !hasLetter(title) {
		return Match{}, false
	}
	match := Match{
		Kind:      PatternLeader,
		Title:     title,
		Numbering: ParseNumbering(title, true),
	}
	if n, err := strconv.Atoi(m[2]); err == nil {
		match.Page = &n
	} else {
		match.PageLabel = m[2]
	}
	return match, true
}

// TrailingNumberRecognizer matches "Title 12" with no leader.
type TrailingNumberRecognizer struct{}

func (TrailingNumberRecognizer) Kind() PatternKind { return PatternTrailingNumber }

func (TrailingNumberRecognizer) Match(line Line) (Match, bool) {
	m := trailingNumberPattern.FindStringSubmatch(line.Text)
	if m == nil {
		return Match{}, false
	}
	title := m[1]
	if !hasLetter(title) {
		return Match{}, false
	}
	// "term, 12" and "term 10-12" belong to the index recognizer.
	switch last, _ := lastRune(title); last {
	case ',', '-', '–', '—':
		return Match{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Match{}, false
	}
	return Match{
		Kind:      PatternTrailingNumber,
		Title:     title,
		Page:      &n,
		Numbering: ParseNumbering(title, true),
	}, true
}

// NumberedHeadingRecognizer matches lines starting with a numbering token.
type NumberedHeadingRecognizer struct{}

func (NumberedHeadingRecognizer) Kind() PatternKind { return PatternNumberedHeading }

func (NumberedHeadingRecognizer) Match(line Line) (Match, bool) {
	num := ParseNumbering(line.Text, false)
	if num == nil || !hasLetter(line.Text) {
		return Match{}, false
	}
	return Match{
		Kind:      PatternNumberedHeading,
		Title:     line.Text,
		Numbering: num,
	}, true
}

// IndexEntryRecognizer matches "term, 10, 12-14" and "term, see other".
type IndexEntryRecognizer struct{}

func (IndexEntryRecognizer) Kind() PatternKind { return PatternIndexEntry }

func (IndexEntryRecognizer) Match(line Line) (Match, bool) {
	m, ok := parseIndexLine(line.Text)
	if !ok || m.Term == "" || (len(m.Pages) == 0 && len(m.SeeAlso) == 0) {
		return Match{}, false
	}
	m.Kind = PatternIndexEntry
	return m, true
}

// RangeRecognizer matches a line made only of page tokens, "45, 67-69".
type RangeRecognizer struct{}

func (RangeRecognizer) Kind() PatternKind { return PatternRange }

func (RangeRecognizer) Match(line Line) (Match, bool) {
	if !pageListPattern.MatchString(line.Text) {
		return Match{}, false
	}
	pages, ranges, repaired := parsePageTokens(line.Text)
	return Match{Kind: PatternRange, Pages: pages, Ranges: ranges, Repaired: repaired}, true
}

// MatchContinuation matches a line indented deeper than the open index entry.
// The match carries a term when the line names a subentry.
func MatchContinuation(line Line, parentIndent int) (Match, bool) {
	if line.Blank || parentIndent < 0 || line.Indent <= parentIndent {
		return Match{}, false
	}
	m, ok := parseIndexLine(line.Text)
	if !ok {
		return Match{}, false
	}
	m.Kind = PatternContinuation
	return m, true
}

// ParsePageRange parses "12", "12-14" or "15–10" into a reference.
// Reversed ranges are swapped; repaired reports whether a swap happened.
func ParsePageRange(token string) (ref PageReference, repaired bool, ok bool) {
	token = strings.TrimSpace(token)
	m := pageTokenPattern.FindStringSubmatch(token)
	if m == nil || m[0] != token {
		return PageReference{}, false, false
	}
	start, _ := strconv.Atoi(m[1])
	if m[2] == "" {
		return SinglePage(start), false, true
	}
	end, _ := strconv.Atoi(m[2])
	return PageRange(start, end), end < start, true
}

// ParsePageList parses a comma separated list such as "10, 12-14".
func ParsePageList(s string) ([]PageReference, bool) {
	s = strings.TrimSpace(s)
	if !pageListPattern.MatchString(s) {
		return nil, false
	}
	pages, _, _ := parsePageTokens(s)
	return pages, true
}

// FormatPageRefs renders references as "10, 12-14".
func FormatPageRefs(refs []PageReference) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// ParseNumbering reads a numbering token at the start of text.
// allowBare accepts an undotted integer ("1 Introduction"), which is only
// trusted on lines already known to carry a page number.
func ParseNumbering(text string, allowBare bool) *Numbering {
	if m := keywordPattern.FindStringSubmatch(text); m != nil {
		keyword := strings.ToLower(m[1])
		num := classifyToken(m[2], keyword)
		num.Keyword = keyword
		return num
	}
	if m := dottedPattern.FindStringSubmatch(text); m != nil {
		depth := strings.Count(m[1], ".") + 1
		if depth > 1 || m[2] == "." || allowBare {
			return &Numbering{Token: m[1], Scheme: SchemeDigits, Depth: depth}
		}
	}
	if m := romanPattern.FindStringSubmatch(text); m != nil && validRoman.MatchString(m[1]) {
		return &Numbering{Token: m[1], Scheme: SchemeRoman, Depth: 1, Ambiguous: len(m[1]) == 1}
	}
	if m := letterPattern.FindStringSubmatch(text); m != nil && (m[2] != "" || m[3] == ".") {
		return &Numbering{
			Token:  m[1] + m[2],
			Scheme: SchemeLetter,
			Depth:  strings.Count(m[2], ".") + 1,
		}
	}
	return nil
}

// classifyToken resolves the number after a keyword. Appendices are lettered;
// other keywords read a single roman character as a numeral.
func classifyToken(token, keyword string) *Numbering {
	switch {
	case token[0] >= '0' && token[0] <= '9':
		return &Numbering{Token: token, Scheme: SchemeDigits, Depth: strings.Count(token, ".") + 1}
	case validRoman.MatchString(token) && keyword != "appendix":
		return &Numbering{Token: token, Scheme: SchemeRoman, Depth: 1}
	default:
		return &Numbering{Token: token, Scheme: SchemeLetter, Depth: 1}
	}
}

// parseIndexLine splits an index line into term, page references and cross
// references. A line with letters but no pages yields a term-only match.
func parseIndexLine(text string) (Match, bool) {
	head := strings.TrimSpace(text)
	if head == "" {
		return Match{}, false
	}

	var m Match
	if sm := seeAlsoPattern.FindStringSubmatch(head); sm != nil {
		for _, ref := range strings.Split(sm[3], ";") {
			if ref = strings.TrimSpace(ref); ref != "" {
				m.SeeAlso = append(m.SeeAlso, ref)
			}
		}
		head = strings.TrimRight(strings.TrimSpace(sm[1]), ".,;:(")
	}

	if head == "" {
		return m, len(m.SeeAlso) > 0
	}

	if pageListPattern.MatchString(head) {
		m.Pages, m.Ranges, m.Repaired = parsePageTokens(head)
		return m, true
	}

	if !hasLetter(head) || leadingNumbering.MatchString(head) {
		return Match{}, false
	}

	for _, re := range []*regexp.Regexp{commaTermPattern, spaceTermPattern} {
		if sm := re.FindStringSubmatch(head); sm != nil && hasLetter(sm[1]) {
			m.Term = strings.TrimSpace(sm[1])
			m.Pages, m.Ranges, m.Repaired = parsePageTokens(sm[2])
			return m, true
		}
	}

	m.Term = strings.TrimRight(head, ",;:")
	return m, true
}

func parsePageTokens(s string) (pages []PageReference, ranges, repaired int) {
	for _, tok := range pageTokenPattern.FindAllString(s, -1) {
		ref, swapped, ok := ParsePageRange(tok)
		if !ok {
			continue
		}
		if ref.IsRange() || swapped {
			ranges++
		}
		if swapped {
			repaired++
		}
		pages = append(pages, ref)
	}
	return pages, ranges, repaired
}

// MarkerKind reports whether text is a section heading such as "Contents" or "Index".
func MarkerKind(text string) (Kind, bool) {
	m := markerPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	if strings.Contains(strings.ToLower(m[1]), "content") {
		return KindTOC, true
	}
	return KindIndex, true
}

// IsLetterHeader reports whether text is an index letter-group separator such as "A".
func IsLetterHeader(text string) bool {
	return letterHeaderPattern.MatchString(text)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func lastRune(s string) (rune, bool) {
	r := []rune(s)
	if len(r) == 0 {
		return 0, false
	}
	return r[len(r)-1], true
}
