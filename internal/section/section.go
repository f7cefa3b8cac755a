package section

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dgallion1/docsift/internal/layout"
	"github.com/dgallion1/docsift/internal/outline"
)

// Section is a heading-aligned span of document text.
type Section struct {
	Document string        `json:"document"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	Page     int           `json:"page_number"` // 1-indexed
	Level    outline.Level `json:"level"`
}

const (
	maxSectionChars = 5000
	fallbackPages   = 3 // span of the single section emitted for outline-less documents
)

// maxSpan is the page budget per heading level.
func maxSpan(level outline.Level) int {
	if level == outline.H1 {
		return 3
	}
	return 2
}

// Extract partitions a document into sections, one per clean-titled
// heading. A heading's section runs from its page to the next heading's
// page, capped by the level's span budget. Documents without headings
// collapse to a single section over the first pages.
func Extract(doc layout.Document, o outline.Outline) []Section {
	pageCount := doc.PageCount()

	if len(o.Headings) == 0 {
		title := o.Title
		if title == "" {
			title = "Document"
		}
		end := pageCount
		if end > fallbackPages {
			end = fallbackPages
		}
		text := pagesText(doc, 1, end+1)
		return []Section{{
			Title: title,
			Text:  truncate(strings.TrimSpace(text), maxSectionChars),
			Page:  1,
			Level: outline.H3,
		}}
	}

	headings := make([]outline.Heading, len(o.Headings))
	copy(headings, o.Headings)
	sort.SliceStable(headings, func(i, j int) bool {
		if headings[i].Page != headings[j].Page {
			return headings[i].Page < headings[j].Page
		}
		return headings[i].FontSize > headings[j].FontSize
	})

	var sections []Section
	for i, h := range headings {
		if !IsCleanTitle(h.Title) {
			continue
		}
		start := h.Page // 1-indexed first page of the section
		next := pageCount + 1
		if i+1 < len(headings) {
			next = headings[i+1].Page
		}
		end := start + maxSpan(h.Level)
		if end > pageCount+1 {
			end = pageCount + 1
		}
		if next < end {
			end = next
		}

		text := pagesText(doc, start, end)
		if strings.TrimSpace(text) == "" {
			text = pagesText(doc, start, start+1)
		}
		text = cleanPageText(text)

		sections = append(sections, Section{
			Title: h.Title,
			Text:  truncate(text, maxSectionChars),
			Page:  h.Page,
			Level: h.Level,
		})
	}
	return sections
}

// pagesText concatenates page text for [start, end), 1-indexed.
func pagesText(doc layout.Document, start, end int) string {
	var sb strings.Builder
	for n := start; n < end; n++ {
		p, err := doc.Page(n)
		if err != nil {
			continue
		}
		sb.WriteString(p.Text)
		if p.Text != "" && !strings.HasSuffix(p.Text, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

var (
	pageNumLineRe   = regexp.MustCompile(`\n\s*\d+\s*\n`)
	paginationRe    = regexp.MustCompile(`(?m)^\s*\d+\s*/\s*\d+\s*$`)
	runSpacesRe     = regexp.MustCompile(`[^\S\n]{3,}`)
	blankRunsRe     = regexp.MustCompile(`(\n\s*){3,}`)
	singleLetterRe  = regexp.MustCompile(`^[A-Za-z]$`)
	numbersOnlyRe   = regexp.MustCompile(`^[\d\W_]+$`)
	partialBulletRe = regexp.MustCompile(`^[o•]\s+\d+`)
	pageTitleRe     = regexp.MustCompile(`(?i)^page\s+\d+$`)
)

// cleanPageText strips boilerplate: standalone page-number lines, "n / m"
// pagination, short lines repeated across pages (running headers and
// footers), and excess whitespace.
func cleanPageText(text string) string {
	text = pageNumLineRe.ReplaceAllString(text, "\n")
	text = paginationRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	freq := map[string]int{}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
		if n := len(lines[i]); n >= 3 && n <= 60 {
			freq[lines[i]]++
		}
	}
	kept := lines[:0]
	for _, l := range lines {
		if freq[l] >= 3 {
			continue
		}
		kept = append(kept, l)
	}
	text = strings.Join(kept, "\n")
	text = runSpacesRe.ReplaceAllString(text, "  ")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// uiStrings are titles that are navigation chrome, not content.
var uiStrings = map[string]bool{
	"page": true, "page 1": true, "table of contents": true,
	"contents": true, "index": true, "click here": true, "introduction": true,
}

// IsCleanTitle rejects generic UI strings, numeric-only, bullet-prefixed,
// single-character, and partial-content titles.
func IsCleanTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" || len(title) < 3 {
		return false
	}
	if uiStrings[strings.ToLower(title)] {
		return false
	}
	if pageTitleRe.MatchString(title) {
		return false
	}
	for _, p := range []string{"•", "-", "*", "(", "[", "#"} {
		if strings.HasPrefix(title, p) {
			return false
		}
	}
	if len(title) > 3 && isDigits(title[:3]) && strings.ContainsRune(".- ", rune(title[3])) {
		return false
	}
	if singleLetterRe.MatchString(title) {
		return false
	}
	if alphaCount(title) < 2 {
		return false
	}
	if numbersOnlyRe.MatchString(title) {
		return false
	}
	if partialBulletRe.MatchString(title) {
		return false
	}
	if strings.HasSuffix(title, ".") && len(title) < 8 {
		return false
	}
	if len(strings.Fields(title)) <= 1 && len(title) < 6 {
		return false
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
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

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
