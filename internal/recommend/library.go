package recommend

import (
	"sort"
	"sync"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/section"
)

// Entry is a section held in the cross-collection library.
type Entry struct {
	Collection string
	Section    section.Section
	Vector     []float32
}

// Library holds embedded sections from processed collections so later
// queries can surface material from earlier ones. Contents live only for
// the life of the process.
type Library struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewLibrary() *Library {
	return &Library{}
}

// Add records a collection's sections and their vectors.
func (l *Library) Add(collection string, sections []section.Section, vecs [][]float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range sections {
		if i >= len(vecs) {
			break
		}
		l.entries = append(l.entries, Entry{Collection: collection, Section: s, Vector: vecs[i]})
	}
}

// Query returns the topK library sections most similar to the query
// vector, skipping entries from excludeCollection.
func (l *Library) Query(vec []float32, excludeCollection string, topK int) []Related {
	l.mu.RLock()
	defer l.mu.RUnlock()

	type scored struct {
		entry Entry
		sim   float64
	}
	var matches []scored
	for _, e := range l.entries {
		if e.Collection == excludeCollection {
			continue
		}
		sim := embed.Cosine(vec, e.Vector)
		if sim <= 0 {
			continue
		}
		matches = append(matches, scored{entry: e, sim: sim})
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].sim > matches[b].sim })
	if len(matches) > topK {
		matches = matches[:topK]
	}

	out := make([]Related, 0, len(matches))
	for _, m := range matches {
		out = append(out, Related{
			Document: m.entry.Section.Document,
			Title:    m.entry.Section.Title,
			Page:     m.entry.Section.Page,
			Score:    m.sim,
			Snippet:  leadSnippet(m.entry.Section.Text),
		})
	}
	return out
}

// Len reports the number of stored entries.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
