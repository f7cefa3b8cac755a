package outline

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/docsift/internal/layout"
)

// Classification thresholds, relative to the document body font size.
const (
	minHeadingLen = 3
	maxHeadingLen = 150

	headerBandPx = 30 // top of page treated as running header
	footerBandPx = 40 // bottom of page treated as running footer

	// DefaultBodySize is used when a document yields no text to sample.
	DefaultBodySize = 12.0
)

var numberedRe = regexp.MustCompile(`^\d+[.:]\s`)

// genericTerms are exact block texts that are navigation, not headings.
var genericTerms = map[string]bool{
	"introduction":      true,
	"contents":          true,
	"table of contents": true,
	"index":             true,
}

// marketingPhrases mark long blocks that are really document titles.
var marketingPhrases = []string{
	"comprehensive guide", "ultimate guide", "complete guide",
	"journey through", "travel companion",
}

// Classifier decides whether a text block is a heading and at what level.
// It is a pure function of the block and the document-wide statistics it
// was constructed with.
type Classifier struct {
	BodySize float64       // estimated body font size
	Pack     *LanguagePack // multilingual hints, nil when no language detected
}

// IsHeading reports whether the block qualifies as a heading. Exclusion
// rules run first and reject outright; then the inclusion rules are tried
// in order, first match wins.
func (c Classifier) IsHeading(b layout.TextBlock, pageHeight float64) bool {
	text := strings.TrimSpace(b.Text)
	n := len(text)

	if n < minHeadingLen || n > maxHeadingLen {
		return false
	}
	if strings.HasPrefix(text, "•") || strings.HasPrefix(text, "-") || strings.HasPrefix(text, "*") {
		return false
	}
	if genericTerms[strings.ToLower(text)] {
		return false
	}
	if alphaCount(text) < 2 {
		return false
	}
	if n > 80 {
		low := strings.ToLower(text)
		for _, phrase := range marketingPhrases {
			if strings.Contains(low, phrase) {
				return false
			}
		}
	}
	if b.Top < headerBandPx || b.Bottom > pageHeight-footerBandPx {
		return false
	}

	switch {
	case b.FontSize >= c.BodySize+0.5 && n < 90:
		return true
	case b.Bold && b.FontSize >= c.BodySize && n < 70:
		return true
	case isUpper(text) && n < 50:
		return true
	case numberedRe.MatchString(text):
		return true
	case b.Indent < 50 && b.FontSize >= c.BodySize && n < 80:
		return true
	}

	if c.Pack != nil {
		low := strings.ToLower(text)
		for _, h := range c.Pack.TechHeadings {
			if strings.Contains(low, h) {
				return true
			}
		}
		for _, h := range c.Pack.BusinessHeadings {
			if strings.Contains(low, h) {
				return true
			}
		}
	}
	return false
}

// LevelFor assigns H1/H2/H3 by font size relative to the body size, with
// numbered and uppercase text promoted to H2. Rules are evaluated in order.
func (c Classifier) LevelFor(b layout.TextBlock) Level {
	text := strings.TrimSpace(b.Text)
	switch {
	case b.FontSize >= c.BodySize+2:
		return H1
	case b.FontSize >= c.BodySize+1:
		return H2
	case numberedRe.MatchString(text) || isUpper(text):
		return H2
	default:
		return H3
	}
}

// BodyFontSize estimates the document's baseline text size: the most
// frequent rounded font size among the distinct sizes seen on the first
// two pages. Ties go to the smaller size; no text at all falls back to
// DefaultBodySize.
func BodyFontSize(doc layout.Document) float64 {
	distinct := map[float64]bool{}
	pages := doc.PageCount()
	if pages > 2 {
		pages = 2
	}
	for n := 1; n <= pages; n++ {
		p, err := doc.Page(n)
		if err != nil {
			continue
		}
		for _, b := range p.Blocks {
			distinct[b.FontSize] = true
		}
	}
	if len(distinct) == 0 {
		return DefaultBodySize
	}

	counts := map[float64]int{}
	for s := range distinct {
		counts[roundTenth(s)]++
	}
	best, bestCount := 0.0, 0
	for s, c := range counts {
		if c > bestCount || (c == bestCount && s < best) {
			best, bestCount = s, c
		}
	}
	return best
}

func roundTenth(f float64) float64 {
	if f < 0 {
		return -roundTenth(-f)
	}
	return float64(int(f*10+0.5)) / 10
}

func alphaCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// isUpper mirrors the "fully uppercase" rule: at least one cased letter
// and no lowercase letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
