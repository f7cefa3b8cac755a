package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/recommend"
	"github.com/dgallion1/docsift/internal/section"
)

const relatedPerSection = 3

// Document is a single input file within a collection.
type Document struct {
	Name string
	Data []byte
}

// Collection is the unit of work: a set of documents read through the
// lens of a persona and the job they need to get done.
type Collection struct {
	Name      string
	Persona   string
	Job       string
	Documents []Document
}

// Metadata echoes the collection inputs alongside the processing time.
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one ranked section in the collection output.
type ExtractedSection struct {
	Document       string              `json:"document"`
	SectionTitle   string              `json:"section_title"`
	ImportanceRank int                 `json:"importance_rank"`
	PageNumber     int                 `json:"page_number"`
	Related        []recommend.Related `json:"related_sections,omitempty"`
}

// Subsection carries the refined passage backing a ranked section.
type Subsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Result is the full output for a processed collection.
type Result struct {
	Metadata           Metadata            `json:"metadata"`
	ExtractedSections  []ExtractedSection  `json:"extracted_sections"`
	SubsectionAnalysis []Subsection        `json:"subsection_analysis"`
	CrossCollection    []recommend.Related `json:"cross_collection_matches,omitempty"`
}

// Processor runs a collection through outline extraction, segmentation,
// deduplication, and relevance ranking.
type Processor struct {
	embedder       embed.Embedder
	ranker         *rank.Ranker
	library        *recommend.Library
	log            *slog.Logger
	dedupThreshold float64
}

func NewProcessor(embedder embed.Embedder, ranker *rank.Ranker, library *recommend.Library, dedupThreshold float64, log *slog.Logger) *Processor {
	if dedupThreshold <= 0 {
		dedupThreshold = section.DefaultDedupThreshold
	}
	return &Processor{
		embedder:       embedder,
		ranker:         ranker,
		library:        library,
		log:            log,
		dedupThreshold: dedupThreshold,
	}
}

// Process runs the full pipeline for one collection. Individual unreadable
// documents are skipped with a warning; when no document yields sections
// the result carries empty section lists rather than an error.
func (p *Processor) Process(ctx context.Context, col Collection, progress func(docsDone, sections int)) (*Result, error) {
	if col.Persona == "" {
		return nil, fmt.Errorf("collection %q: persona is required", col.Name)
	}
	if col.Job == "" {
		return nil, fmt.Errorf("collection %q: job to be done is required", col.Name)
	}
	if len(col.Documents) == 0 {
		return nil, fmt.Errorf("collection %q: no documents", col.Name)
	}

	log := p.log.With("collection", col.Name)

	var sections []section.Section
	names := make([]string, 0, len(col.Documents))
	for i, d := range col.Documents {
		names = append(names, d.Name)

		o, doc, err := outline.Load(bytes.NewReader(d.Data), d.Name)
		if err != nil {
			log.Warn("skipping unreadable document", "document", d.Name, "error", err)
			continue
		}

		docSections := section.Extract(doc, o)
		for j := range docSections {
			docSections[j].Document = d.Name
		}
		sections = append(sections, docSections...)
		doc.Close()

		if progress != nil {
			progress(i+1, len(sections))
		}
	}
	if len(sections) == 0 {
		log.Warn("no extractable sections", "documents", len(col.Documents))
		return &Result{
			Metadata:           p.metadata(col, names),
			ExtractedSections:  []ExtractedSection{},
			SubsectionAnalysis: []Subsection{},
		}, nil
	}

	sections = section.Deduplicate(sections, p.dedupThreshold)
	log.Info("segmented collection", "documents", len(col.Documents), "sections", len(sections))

	results, err := p.ranker.Rank(ctx, sections, col.Persona, col.Job)
	if err != nil {
		return nil, fmt.Errorf("rank sections: %w", err)
	}

	out := &Result{
		Metadata:           p.metadata(col, names),
		ExtractedSections:  make([]ExtractedSection, 0, len(results)),
		SubsectionAnalysis: make([]Subsection, 0, len(results)),
	}

	related := p.relatedSections(ctx, sections, results)

	for i, r := range results {
		out.ExtractedSections = append(out.ExtractedSections, ExtractedSection{
			Document:       r.Section.Document,
			SectionTitle:   r.Section.Title,
			ImportanceRank: r.Rank,
			PageNumber:     r.Section.Page,
			Related:        related[i],
		})
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, Subsection{
			Document:    r.Section.Document,
			RefinedText: r.Snippet,
			PageNumber:  r.Section.Page,
		})
	}

	p.addToLibrary(ctx, col, sections, out)
	return out, nil
}

func (p *Processor) metadata(col Collection, names []string) Metadata {
	return Metadata{
		InputDocuments:      names,
		Persona:             col.Persona,
		JobToBeDone:         col.Job,
		ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// relatedSections finds, for each ranked result, the nearest other
// sections in the same collection. Embedding failures only cost us the
// recommendations.
func (p *Processor) relatedSections(ctx context.Context, sections []section.Section, results []rank.Result) map[int][]recommend.Related {
	texts := make([]string, len(sections))
	index := make(map[string]int, len(sections))
	for i, s := range sections {
		texts[i] = rank.DocText(s)
		index[sectionKey(s)] = i
	}
	vecs, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		p.log.Warn("related-section embedding failed", "error", err)
		return nil
	}

	sources := make([]int, 0, len(results))
	resultPos := make(map[int]int, len(results))
	for i, r := range results {
		if idx, ok := index[sectionKey(r.Section)]; ok {
			sources = append(sources, idx)
			resultPos[idx] = i
		}
	}

	bySource := recommend.FindRelated(sections, vecs, sources, relatedPerSection)
	out := make(map[int][]recommend.Related, len(bySource))
	for src, rel := range bySource {
		out[resultPos[src]] = rel
	}
	return out
}

// addToLibrary stores the collection's sections for later cross-collection
// lookups and attaches matches from previously seen collections.
func (p *Processor) addToLibrary(ctx context.Context, col Collection, sections []section.Section, out *Result) {
	if p.library == nil {
		return
	}

	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = rank.DocText(s)
	}
	// Same normalized form the ranker embeds, so the vector comes from cache.
	queryAndDocs := append([]string{rank.NormalizeText(col.Persona + " " + col.Job)}, texts...)
	vecs, err := p.embedder.Embed(ctx, queryAndDocs)
	if err != nil {
		p.log.Warn("library embedding failed", "error", err)
		return
	}

	out.CrossCollection = p.library.Query(vecs[0], col.Name, relatedPerSection)
	p.library.Add(col.Name, sections, vecs[1:])
}

func sectionKey(s section.Section) string {
	return fmt.Sprintf("%s\x00%s\x00%d", s.Document, s.Title, s.Page)
}
