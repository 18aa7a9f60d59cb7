package memory

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sync"

	"codeguardian/internal/domain"
)

const indexType = "memory_flat_ip"

// Store is an in-memory vector index using exhaustive inner-product search.
// Vectors are L2-normalized on insert so that inner product equals cosine
// similarity. Vectors and metadata grow in lock-step under one RWMutex;
// searches may run concurrently with each other but never with an Add.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	metadata  []domain.ChunkMetadata
}

// NewStore creates an empty index with a fixed dimension.
func NewStore(dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vector index: dimension %d: %w", dimension, domain.ErrInvalidArgument)
	}
	return &Store{dimension: dimension}, nil
}

// Add appends normalized copies of the vectors with their metadata at the
// next ordinal ids. Lengths must match; a vector of the wrong dimension is
// rejected before anything is appended. No-op on empty input.
func (s *Store) Add(vectors [][]float64, metadata []domain.ChunkMetadata) error {
	if len(vectors) != len(metadata) {
		return fmt.Errorf("add: %d vectors vs %d metadata entries: %w", len(vectors), len(metadata), domain.ErrInvalidArgument)
	}
	if len(vectors) == 0 {
		return nil
	}
	normalized := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("add: vector %d has dimension %d, index has %d: %w", i, len(v), s.dimension, domain.ErrInvalidArgument)
		}
		normalized[i] = normalize(v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, normalized...)
	s.metadata = append(s.metadata, metadata...)
	return nil
}

// Search returns up to topK neighbors of the query, most similar first.
// An empty index yields an empty result, not an error.
func (s *Store) Search(query []float64, topK int) ([]domain.SimilarityResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("search: query dimension %d, index has %d: %w", len(query), s.dimension, domain.ErrInvalidArgument)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("search: topK %d: %w", topK, domain.ErrInvalidArgument)
	}
	q := normalize(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.vectors) == 0 {
		return nil, nil
	}
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = dot(s.vectors[i], q)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SimilarityResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SimilarityResult{
			ID:                   j,
			Score:                scores[j],
			SimilarityPercentage: scores[j] * 100,
			Metadata:             s.metadata[j],
		})
	}
	return results, nil
}

// Stats reports the current index size and shape.
func (s *Store) Stats() domain.IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.IndexStats{
		TotalVectors: len(s.vectors),
		Dimension:    s.dimension,
		IndexType:    indexType,
	}
}

// snapshot is the persisted form of the index: the vector store and the
// metadata list as a matched pair in one file.
type snapshot struct {
	Dimension int
	Vectors   [][]float64
	Metadata  []domain.ChunkMetadata
}

// Save writes the index to path. The write goes to a temp file first and
// is renamed into place so a crash never leaves a half-written index.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	snap := snapshot{
		Dimension: s.dimension,
		Vectors:   s.vectors,
		Metadata:  s.metadata,
	}
	s.mu.RUnlock()

	file, err := os.Create(path + ".tmp")
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(file).Encode(&snap); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(path+".tmp", path)
}

// Load replaces the index contents with the persisted pair at path. A
// mismatched pair (vector count != metadata count) is corruption: Load
// refuses to install any of the partial state.
func (s *Store) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return fmt.Errorf("load %s: decode: %w", path, domain.ErrIndexCorruption)
	}
	if len(snap.Vectors) != len(snap.Metadata) {
		return fmt.Errorf("load %s: %d vectors vs %d metadata entries: %w", path, len(snap.Vectors), len(snap.Metadata), domain.ErrIndexCorruption)
	}
	if snap.Dimension <= 0 {
		return fmt.Errorf("load %s: dimension %d: %w", path, snap.Dimension, domain.ErrIndexCorruption)
	}
	for i, v := range snap.Vectors {
		if len(v) != snap.Dimension {
			return fmt.Errorf("load %s: vector %d has dimension %d, expected %d: %w", path, i, len(v), snap.Dimension, domain.ErrIndexCorruption)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = snap.Dimension
	s.vectors = snap.Vectors
	s.metadata = snap.Metadata
	return nil
}

func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
