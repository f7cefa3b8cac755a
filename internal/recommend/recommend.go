package recommend

import (
	"sort"
	"strings"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/section"
)

// Related is a section similar to some source section.
type Related struct {
	Document string  `json:"document"`
	Title    string  `json:"section_title"`
	Page     int     `json:"page_number"`
	Score    float64 `json:"similarity"`
	Snippet  string  `json:"snippet"`
}

// FindRelated returns, for each source index, the topK most similar other
// sections by embedding cosine. A section is never related to itself.
func FindRelated(sections []section.Section, vecs [][]float32, sources []int, topK int) map[int][]Related {
	out := make(map[int][]Related, len(sources))
	for _, src := range sources {
		if src < 0 || src >= len(sections) {
			continue
		}
		type scored struct {
			idx int
			sim float64
		}
		var matches []scored
		for i := range sections {
			if i == src {
				continue
			}
			sim := embed.Cosine(vecs[src], vecs[i])
			if sim <= 0 {
				continue
			}
			matches = append(matches, scored{idx: i, sim: sim})
		}
		sort.SliceStable(matches, func(a, b int) bool { return matches[a].sim > matches[b].sim })
		if len(matches) > topK {
			matches = matches[:topK]
		}

		related := make([]Related, 0, len(matches))
		for _, m := range matches {
			s := sections[m.idx]
			related = append(related, Related{
				Document: s.Document,
				Title:    s.Title,
				Page:     s.Page,
				Score:    m.sim,
				Snippet:  leadSnippet(s.Text),
			})
		}
		out[src] = related
	}
	return out
}

// leadSnippet takes the first sentence of a section, falling back to the
// leading text.
func leadSnippet(text string) string {
	norm := rank.NormalizeText(text)
	sentences := rank.SplitSentences(norm)
	if len(sentences) > 0 {
		return sentences[0]
	}
	if len(norm) > 200 {
		return norm[:200]
	}
	return strings.TrimSpace(norm)
}
