package outline

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docsift/internal/layout"
)

const (
	maxScanPages   = 10 // heading scan depth
	samplePages    = 3  // language/form detection sample
	titleMinLen    = 10
	titleMaxLen    = 200
	titleMinScore  = 2
	titleTopBandPx = 200
)

// englishFormPhrases short-circuit extraction for fill-in forms, which
// are deliberately excluded from downstream processing.
var englishFormPhrases = []string{"application form", "government servant"}

var leadingNumberingRe = regexp.MustCompile(`^\s*[\dA-Za-z]+[.:)]\s+`)
var wsRe = regexp.MustCompile(`\s+`)

// Build extracts the title and heading outline of one document. It is a
// pure function of the document's text and layout: running it twice
// yields identical outlines.
func Build(doc layout.Document) (Outline, error) {
	sample, err := sampleText(doc, samplePages)
	if err != nil {
		return Outline{}, err
	}

	lang := DetectLanguage(sample)
	pack := Packs[lang]

	o := Outline{
		Title:    selectTitle(doc),
		Language: lang,
	}

	if isFormDocument(sample, pack) {
		return o, nil
	}

	cls := Classifier{BodySize: BodyFontSize(doc), Pack: pack}

	pages := doc.PageCount()
	if pages > maxScanPages {
		pages = maxScanPages
	}
	seen := map[string]bool{}
	for n := 1; n <= pages; n++ {
		p, err := doc.Page(n)
		if err != nil {
			continue // unreadable page, keep scanning
		}
		for _, b := range p.Blocks {
			text := strings.TrimSpace(b.Text)
			if !cls.IsHeading(b, p.Height) {
				continue
			}
			norm := normalizeTitle(text)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			o.Headings = append(o.Headings, Heading{
				Title:    text,
				Page:     n,
				FontSize: b.FontSize,
				Bold:     b.Bold,
				Level:    cls.LevelFor(b),
				Indent:   b.Indent,
			})
		}
	}
	return o, nil
}

// selectTitle scores first-page blocks by boldness, size, and vertical
// position, and keeps the winner only if it clears the minimum score.
func selectTitle(doc layout.Document) string {
	if doc.PageCount() == 0 {
		return ""
	}
	p, err := doc.Page(1)
	if err != nil {
		return ""
	}

	best, bestScore := "", 0
	for _, b := range p.Blocks {
		text := strings.TrimSpace(b.Text)
		if len(text) <= titleMinLen || len(text) >= titleMaxLen {
			continue
		}
		score := 0
		if b.Bold {
			score += 3
		}
		if b.FontSize > 16 {
			score += 2
		} else if b.FontSize > 14 {
			score += 1
		}
		if b.Top < titleTopBandPx {
			score += 2
		}
		if score > bestScore {
			best, bestScore = text, score
		}
	}
	if bestScore > titleMinScore {
		return best
	}
	return ""
}

// normalizeTitle strips leading numbering and punctuation, lowercases,
// and collapses whitespace, for per-document heading deduplication.
func normalizeTitle(title string) string {
	t := leadingNumberingRe.ReplaceAllString(title, "")
	t = strings.ToLower(strings.TrimSpace(t))
	return wsRe.ReplaceAllString(t, " ")
}

func isFormDocument(sample string, pack *LanguagePack) bool {
	low := strings.ToLower(sample)
	for _, phrase := range englishFormPhrases {
		if strings.Contains(low, phrase) {
			return true
		}
	}
	if pack != nil {
		for _, phrase := range pack.FormPatterns {
			if strings.Contains(low, phrase) {
				return true
			}
		}
	}
	return false
}

func sampleText(doc layout.Document, pages int) (string, error) {
	if n := doc.PageCount(); n < pages {
		pages = n
	}
	var sb strings.Builder
	for n := 1; n <= pages; n++ {
		p, err := doc.Page(n)
		if err != nil {
			return "", err
		}
		sb.WriteString(p.Text)
		// Some layouts only yield block text.
		if p.Text == "" {
			for _, b := range p.Blocks {
				sb.WriteString(b.Text)
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String(), nil
}
