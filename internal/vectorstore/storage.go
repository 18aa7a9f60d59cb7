package vectorstore

import "codeguardian/internal/domain"

// Storage stores embeddings with lock-step metadata and supports cosine
// nearest-neighbor search. Append-only for the lifetime of the process;
// ordinal position is identity.
type Storage interface {
	Add(vectors [][]float64, metadata []domain.ChunkMetadata) error
	Search(query []float64, topK int) ([]domain.SimilarityResult, error)
	Stats() domain.IndexStats
	Save(path string) error
	Load(path string) error
}
