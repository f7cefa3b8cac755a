package recommend

import (
	"testing"

	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/section"
)

func testCorpus() ([]section.Section, [][]float32) {
	sections := []section.Section{
		{Document: "a.pdf", Title: "Beaches", Text: "Sandy beaches line the coast. Bring sunscreen.", Page: 1, Level: outline.H2},
		{Document: "a.pdf", Title: "Coastal Walks", Text: "Walk along the shore at sunset for the best views.", Page: 3, Level: outline.H2},
		{Document: "b.pdf", Title: "Printer Setup", Text: "Configure the paper tray before printing.", Page: 2, Level: outline.H3},
	}
	vecs := [][]float32{
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	}
	return sections, vecs
}

func TestFindRelated_ExcludesSelf(t *testing.T) {
	sections, vecs := testCorpus()

	related := FindRelated(sections, vecs, []int{0}, 2)
	rel, ok := related[0]
	if !ok {
		t.Fatalf("expected related entries for source 0")
	}
	for _, r := range rel {
		if r.Title == "Beaches" {
			t.Errorf("a section must not be related to itself")
		}
	}
	if len(rel) == 0 || rel[0].Title != "Coastal Walks" {
		t.Errorf("expected the nearest neighbor first, got %+v", rel)
	}
}

func TestFindRelated_TopKLimits(t *testing.T) {
	sections, vecs := testCorpus()
	related := FindRelated(sections, vecs, []int{0}, 1)
	if len(related[0]) != 1 {
		t.Errorf("expected exactly 1 related entry, got %d", len(related[0]))
	}
}

func TestFindRelated_SnippetIsLeadingSentence(t *testing.T) {
	sections, vecs := testCorpus()
	related := FindRelated(sections, vecs, []int{1}, 1)
	if len(related[1]) == 0 {
		t.Fatalf("expected a related entry")
	}
	if got := related[1][0].Snippet; got != "sandy beaches line the coast." {
		t.Errorf("expected the first sentence as snippet, got %q", got)
	}
}

func TestLibrary_QueryExcludesCollection(t *testing.T) {
	sections, vecs := testCorpus()
	lib := NewLibrary()
	lib.Add("trip-planning", sections[:2], vecs[:2])
	lib.Add("office-docs", sections[2:], vecs[2:])

	// Querying as trip-planning must only see other collections.
	matches := lib.Query([]float32{1, 0}, "trip-planning", 5)
	for _, m := range matches {
		if m.Title == "Beaches" || m.Title == "Coastal Walks" {
			t.Errorf("match from the excluded collection leaked: %+v", m)
		}
	}

	// The other collection's entry is orthogonal to the query, so nothing
	// qualifies.
	if len(matches) != 0 {
		t.Errorf("expected no matches above zero similarity, got %+v", matches)
	}

	matches = lib.Query([]float32{0.7, 0.7}, "office-docs", 1)
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}
	if matches[0].Document != "a.pdf" {
		t.Errorf("expected match from the other collection, got %+v", matches[0])
	}
}

func TestLibrary_Len(t *testing.T) {
	sections, vecs := testCorpus()
	lib := NewLibrary()
	if lib.Len() != 0 {
		t.Errorf("new library should be empty")
	}
	lib.Add("c", sections, vecs)
	if lib.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", lib.Len())
	}
}
