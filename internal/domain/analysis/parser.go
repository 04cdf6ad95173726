package analysis

import (
	"regexp"
	"strings"
)

// ParsedAnalysis is the structured view derived from the raw model
// output. It is computed on demand and never persisted.
type ParsedAnalysis struct {
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	Details         string   `json:"details"`
	Recommendations []string `json:"recommendations"`
}

// Parse extracts the structured view using the default vocabulary.
func Parse(blocks []ContentBlock) ParsedAnalysis {
	return ParseWith(DefaultVocabulary(), blocks)
}

// ParseWith concatenates the text blocks and parses them. Parsing is
// pure and never fails; unmatched fields stay empty.
func ParseWith(v Vocabulary, blocks []ContentBlock) ParsedAnalysis {
	var parts []string
	for _, b := range blocks {
		if b.Type == BlockText && strings.TrimSpace(b.Text) != "" {
			parts = append(parts, b.Text)
		}
	}
	return ParseText(v, strings.Join(parts, "\n\n"))
}

// ParseText parses free text. The model is asked for labeled sections
// but is not trusted to produce them: every extraction has a fallback
// and the worst case is an all-empty result.
func ParseText(v Vocabulary, text string) ParsedAnalysis {
	p := ParsedAnalysis{KeyPoints: []string{}, Recommendations: []string{}}
	if strings.TrimSpace(text) == "" {
		return p
	}
	stops := v.all()

	// Summary: labeled section sampai header berikutnya / baris kosong,
	// fallback ke paragraf pertama
	if body, ok := sectionAfter(text, v.Summary); ok {
		p.Summary = strings.TrimSpace(cutSection(body, stops, "\n\n"))
	} else {
		p.Summary = firstParagraph(text)
	}

	if body, ok := sectionAfter(text, v.KeyPoints); ok {
		p.KeyPoints = splitList(cutSection(body, stops, "\n\n\n"))
	}
	if len(p.KeyPoints) == 0 {
		// fallback: pungut baris bernomor dari seluruh teks
		p.KeyPoints = numberedLines(text)
	}

	if body, ok := sectionAfter(text, v.Recommendations); ok {
		p.Recommendations = splitList(cutSection(body, stops, "\n\n\n"))
	}

	if body, ok := sectionAfter(text, v.Details); ok {
		p.Details = strings.TrimSpace(cutSection(body, stops, "\n\n\n"))
	}

	return p
}

var numberedLine = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]*(.+)$`)

// listMarker matches numbered items (N.) and bullet items at line start.
var listMarker = regexp.MustCompile(`(?m)^[ \t]*(?:\d+\.[ \t]*|[•*\-][ \t]+)`)

func alternation(syns []string) string {
	quoted := make([]string, 0, len(syns))
	for _, s := range syns {
		if s != "" {
			quoted = append(quoted, regexp.QuoteMeta(s))
		}
	}
	return strings.Join(quoted, "|")
}

// sectionAfter returns the text following the first "<synonym>:" header
// line, and whether any synonym matched.
func sectionAfter(text string, syns []string) (string, bool) {
	alt := alternation(syns)
	if alt == "" {
		return "", false
	}
	re := regexp.MustCompile(`(?im)^[ \t]*(?:` + alt + `)[ \t]*:[ \t]*`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[1]:], true
}

// cutSection trims a section body at the next recognized header line or
// at the hard separator, whichever comes first.
func cutSection(body string, stops []string, hard string) string {
	out := body
	if alt := alternation(stops); alt != "" {
		re := regexp.MustCompile(`(?i)\n[ \t]*(?:` + alt + `)[ \t]*:`)
		if loc := re.FindStringIndex(out); loc != nil {
			out = out[:loc[0]]
		}
	}
	if hard != "" {
		if i := strings.Index(out, hard); i >= 0 {
			out = out[:i]
		}
	}
	return out
}

func splitList(block string) []string {
	items := []string{}
	for _, part := range listMarker.Split(block, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func numberedLines(text string) []string {
	items := []string{}
	for _, m := range numberedLine.FindAllStringSubmatch(text, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			items = append(items, s)
		}
	}
	return items
}

func firstParagraph(text string) string {
	t := strings.TrimSpace(text)
	if i := strings.Index(t, "\n\n"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
