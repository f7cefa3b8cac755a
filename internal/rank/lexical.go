package rank

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve"
)

// Lexical scores a fixed corpus against free-text queries.
type Lexical interface {
	// Scores returns one score per corpus document, in corpus order.
	// Documents a query does not match score zero.
	Scores(query string) ([]float64, error)
	Close() error
}

// bleveIndex is an in-memory full-text index over the section corpus.
type bleveIndex struct {
	index bleve.Index
	size  int
}

type indexedSection struct {
	Body string `json:"body"`
}

// NewLexical indexes the given documents in memory.
func NewLexical(docs []string) (Lexical, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	batch := index.NewBatch()
	for i, doc := range docs {
		if err := batch.Index(strconv.Itoa(i), indexedSection{Body: doc}); err != nil {
			index.Close()
			return nil, fmt.Errorf("index document %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("index batch: %w", err)
	}

	return &bleveIndex{index: index, size: len(docs)}, nil
}

func (b *bleveIndex) Scores(query string) ([]float64, error) {
	scores := make([]float64, b.size)
	if b.size == 0 {
		return scores, nil
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, b.size, 0, false)
	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= b.size {
			continue
		}
		scores[i] = hit.Score
	}
	return scores, nil
}

func (b *bleveIndex) Close() error {
	return b.index.Close()
}
