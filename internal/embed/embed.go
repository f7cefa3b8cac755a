package embed

import (
	"context"
	"fmt"
	"math"
)

// Embedder produces unit-length embedding vectors for texts. Implementations
// must be deterministic for a given model so cached vectors stay valid.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

// Reranker scores (query, passage) pairs with a cross-encoder. A nil
// Reranker means the precision pass is skipped.
type Reranker interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
}

// Cosine returns the cosine similarity of two vectors. Inputs are assumed
// unit length, so this is a dot product; mismatched dimensions score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// RetryableError indicates a transient collaborator failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, msg)
}
