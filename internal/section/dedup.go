package section

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docsift/internal/outline"
)

// DefaultDedupThreshold is the Jaccard similarity above which two
// sections are treated as duplicates.
const DefaultDedupThreshold = 0.82

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// Deduplicate removes near-duplicate sections across documents, keeping
// the higher-quality instance of each duplicate pair. O(n²) in section
// count; collections hold tens of sections.
func Deduplicate(sections []Section, threshold float64) []Section {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}

	tokenSets := make([]map[string]bool, len(sections))
	for i := range sections {
		tokenSets[i] = tokenSet(sections[i].Text)
	}

	var kept []int
	for i := range sections {
		dup := false
		for pos, k := range kept {
			if jaccard(tokenSets[i], tokenSets[k]) < threshold {
				continue
			}
			if quality(sections[i]) > quality(sections[k]) {
				kept = append(kept[:pos], kept[pos+1:]...)
				kept = append(kept, i)
			}
			dup = true
			break
		}
		if !dup {
			kept = append(kept, i)
		}
	}

	out := make([]Section, 0, len(kept))
	for _, i := range kept {
		out = append(out, sections[i])
	}
	return out
}

// tokenSet lowercases, strips non-alphanumerics, and keeps tokens of
// length >= 3.
func tokenSet(text string) map[string]bool {
	text = nonAlnumRe.ReplaceAllString(strings.ToLower(text), " ")
	set := map[string]bool{}
	for _, t := range strings.Fields(text) {
		if len(t) >= 3 {
			set[t] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// quality scores a section for duplicate resolution: prominent level,
// substantial text, early page.
func quality(s Section) float64 {
	levelScore := 0.6
	switch s.Level {
	case outline.H1:
		levelScore = 1.0
	case outline.H2:
		levelScore = 0.8
	}
	length := len(s.Text)
	if length > 4000 {
		length = 4000
	}
	page := s.Page
	if page < 1 {
		page = 1
	}
	return levelScore*0.5 + float64(length)/4000*0.4 + 1.0/float64(page)*0.1
}
