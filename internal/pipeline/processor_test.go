package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/recommend"
)

type keywordEmbedder struct {
	keywords []string
}

func (e keywordEmbedder) ModelID() string { return "keyword-test" }

func (e keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		lt := strings.ToLower(t)
		v := make([]float32, len(e.keywords))
		for j, k := range e.keywords {
			if strings.Contains(lt, k) {
				v[j] = 1
			}
		}
		embed.Normalize(v)
		out[i] = v
	}
	return out, nil
}

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	embedder := keywordEmbedder{keywords: []string{"beach", "nightlife", "history"}}
	ranker := rank.NewRanker(embedder, nil, log)
	return NewProcessor(embedder, ranker, recommend.NewLibrary(), 0, log)
}

const guideMarkdown = `# City Guide

A short guide for visitors.

## Things To Do

Beaches and nightlife options for groups of friends. The beach bars stay open late.

## Regional History

The old town was founded centuries ago and has changed hands many times.
`

func TestProcessor_MarkdownCollection(t *testing.T) {
	p := testProcessor(t)

	col := Collection{
		Name:    "trip",
		Persona: "College Student",
		Job:     "find beaches and nightlife for a group trip",
		Documents: []Document{
			{Name: "guide.md", Data: []byte(guideMarkdown)},
		},
	}

	result, err := p.Process(context.Background(), col, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Metadata.Persona != "College Student" {
		t.Errorf("metadata persona mismatch: %q", result.Metadata.Persona)
	}
	if len(result.Metadata.InputDocuments) != 1 || result.Metadata.InputDocuments[0] != "guide.md" {
		t.Errorf("metadata documents mismatch: %v", result.Metadata.InputDocuments)
	}
	if len(result.ExtractedSections) == 0 {
		t.Fatalf("expected extracted sections")
	}
	if len(result.SubsectionAnalysis) != len(result.ExtractedSections) {
		t.Errorf("expected one subsection per extracted section")
	}

	if result.ExtractedSections[0].SectionTitle != "Things To Do" {
		t.Errorf("expected the matching section ranked first, got %q", result.ExtractedSections[0].SectionTitle)
	}
	for i, s := range result.ExtractedSections {
		if s.ImportanceRank != i+1 {
			t.Errorf("importance rank %d at position %d", s.ImportanceRank, i)
		}
		if s.Document != "guide.md" {
			t.Errorf("unexpected document %q", s.Document)
		}
	}
	for _, sub := range result.SubsectionAnalysis {
		if sub.RefinedText == "" {
			t.Errorf("empty refined text for %q", sub.Document)
		}
	}
}

func TestProcessor_CorruptDocumentSkipped(t *testing.T) {
	p := testProcessor(t)

	col := Collection{
		Name:    "mixed",
		Persona: "Analyst",
		Job:     "summarize regional history for a report",
		Documents: []Document{
			{Name: "broken.pdf", Data: []byte("this is not a pdf")},
			{Name: "guide.md", Data: []byte(guideMarkdown)},
		},
	}

	result, err := p.Process(context.Background(), col, nil)
	if err != nil {
		t.Fatalf("a single corrupt document must not fail the collection: %v", err)
	}
	for _, s := range result.ExtractedSections {
		if s.Document == "broken.pdf" {
			t.Errorf("sections attributed to the unreadable document: %+v", s)
		}
	}
}

func TestProcessor_AllDocumentsCorrupt(t *testing.T) {
	p := testProcessor(t)

	col := Collection{
		Name:      "junk",
		Persona:   "Analyst",
		Job:       "anything",
		Documents: []Document{{Name: "broken.pdf", Data: []byte("nope")}},
	}
	result, err := p.Process(context.Background(), col, nil)
	if err != nil {
		t.Fatalf("a collection with no extractable sections still produces a result: %v", err)
	}
	if result.ExtractedSections == nil || len(result.ExtractedSections) != 0 {
		t.Errorf("expected empty extracted sections, got %v", result.ExtractedSections)
	}
	if result.SubsectionAnalysis == nil || len(result.SubsectionAnalysis) != 0 {
		t.Errorf("expected empty subsection analysis, got %v", result.SubsectionAnalysis)
	}
	if len(result.Metadata.InputDocuments) != 1 || result.Metadata.InputDocuments[0] != "broken.pdf" {
		t.Errorf("metadata must still list the input documents, got %v", result.Metadata.InputDocuments)
	}
}

func TestProcessor_ValidatesInputs(t *testing.T) {
	p := testProcessor(t)
	ctx := context.Background()

	cases := []Collection{
		{Name: "no-persona", Job: "j", Documents: []Document{{Name: "a.md", Data: []byte("x")}}},
		{Name: "no-job", Persona: "p", Documents: []Document{{Name: "a.md", Data: []byte("x")}}},
		{Name: "no-docs", Persona: "p", Job: "j"},
	}
	for _, col := range cases {
		if _, err := p.Process(ctx, col, nil); err == nil {
			t.Errorf("collection %q: expected a validation error", col.Name)
		}
	}
}

func TestProcessor_CrossCollectionMatches(t *testing.T) {
	p := testProcessor(t)
	ctx := context.Background()

	first := Collection{
		Name:      "earlier",
		Persona:   "Student",
		Job:       "learn the history of the region",
		Documents: []Document{{Name: "guide.md", Data: []byte(guideMarkdown)}},
	}
	if _, err := p.Process(ctx, first, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := Collection{
		Name:      "later",
		Persona:   "Student",
		Job:       "write an essay about local history",
		Documents: []Document{{Name: "guide.md", Data: []byte(guideMarkdown)}},
	}
	result, err := p.Process(ctx, second, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.CrossCollection) == 0 {
		t.Errorf("expected matches from the earlier collection")
	}
}

func TestProcessor_ProgressCallback(t *testing.T) {
	p := testProcessor(t)

	var calls int
	col := Collection{
		Name:      "progress",
		Persona:   "Student",
		Job:       "find beaches",
		Documents: []Document{{Name: "guide.md", Data: []byte(guideMarkdown)}},
	}
	_, err := p.Process(context.Background(), col, func(docsDone, sections int) {
		calls++
		if docsDone != 1 {
			t.Errorf("expected 1 document done, got %d", docsDone)
		}
		if sections == 0 {
			t.Errorf("expected sections reported")
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one progress call, got %d", calls)
	}
}
