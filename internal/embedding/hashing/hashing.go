package hashing

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"codeguardian/internal/domain"
)

// DefaultDimension matches the dimensionality of common small sentence
// embedding models.
const DefaultDimension = 384

// Embedder is a deterministic local embedding model using feature hashing:
// each token is hashed into one of a fixed number of buckets, counted and
// L2-normalized. It needs no corpus preparation and no network access,
// which makes it the default model for offline use and for deterministic
// tests. Bucket collisions can only inflate similarity, never cancel a
// genuine token overlap.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

func NewEmbedder(dimension int) (*Embedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("hashing embedder: dimension %d: %w", dimension, domain.ErrInvalidArgument)
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]+`),
	}, nil
}

func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the hashed term-frequency embedding for the given text.
// All-symbol or empty text yields the zero vector.
func (e *Embedder) Embed(text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec, nil
	}
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32()%uint32(e.dimension))] += 1.0
	}
	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
