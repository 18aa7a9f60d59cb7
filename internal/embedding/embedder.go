package embedding

import (
	"fmt"

	"codeguardian/internal/domain"
)

// Embedder converts free text into a fixed-dimension numeric vector.
// The dimension is fixed for the lifetime of an index; mixing models of
// different dimensions across ingestions is a configuration error.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Batch embeds every chunk in order, one vector per chunk. An empty input
// yields a nil slice. Any backend failure aborts the whole batch; partial
// results are never returned and a failed embedding is never substituted
// with a zero vector.
func Batch(e Embedder, chunks []domain.Chunk) ([][]float64, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	vectors := make([][]float64, len(chunks))
	for i, ch := range chunks {
		vec, err := e.Embed(ch.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
