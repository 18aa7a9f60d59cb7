package domain

// Chunk is a bounded, possibly overlapping word window extracted from a
// source document. StartWord and EndWord are absolute word indices into the
// normalized token stream, StartWord < EndWord.
type Chunk struct {
	Text         string
	StartWord    int
	EndWord      int
	OriginalText string
}

// RepoOrigin is the optional repository attribution carried by chunks that
// were ingested from a fetched repository rather than a direct upload.
type RepoOrigin struct {
	Owner    string
	Repo     string
	Branch   string
	FilePath string
}

// ChunkMetadata describes one ingested chunk. It is stored in the index at
// the same ordinal position as the chunk's embedding and never mutated.
type ChunkMetadata struct {
	SubmissionID   string
	ChunkID        string
	TeamName       string
	SubmissionName string
	Language       string
	StartWord      int
	EndWord        int
	OriginalText   string
	ProcessedText  string
	Repo           *RepoOrigin
}

// SimilarityResult is a single neighbor returned by an index search.
// ID is the ordinal index id of the matched vector.
type SimilarityResult struct {
	ID                   int
	Score                float64
	SimilarityPercentage float64
	Metadata             ChunkMetadata
}

// PlagiarismReport is the per-query scoring result. It is derived per call
// and never stored.
type PlagiarismReport struct {
	PlagiarismPercentage float64
	OriginalityScore     float64
	SimilarChunks        []SimilarityResult
	FlaggedChunks        []SimilarityResult
	MaxSimilarity        float64
	TotalChunksChecked   int
}

// ChunkReport is the scoring result for one chunk of a checked document.
type ChunkReport struct {
	ChunkID              string
	StartWord            int
	EndWord              int
	Text                 string
	PlagiarismPercentage float64
	OriginalityScore     float64
	SimilarChunks        []SimilarityResult
	IsFlagged            bool
}

// DocumentReport aggregates chunk reports for a whole checked document.
// Overall plagiarism is the worst chunk; overall originality the best
// chunk's inverse.
type DocumentReport struct {
	CheckID            string
	OverallPlagiarism  float64
	OverallOriginality float64
	TotalChunks        int
	FlaggedChunks      int
	ChunkReports       []ChunkReport
}

// Corpus is one independently ingested body of code under comparison,
// already chunked and embedded.
type Corpus struct {
	SubmissionID string
	Vectors      [][]float64
	Metadata     []ChunkMetadata
}

// LeaderboardEntry ranks one corpus by originality against the shared index.
type LeaderboardEntry struct {
	SubmissionID         string
	TeamName             string
	Repo                 *RepoOrigin
	OriginalityScore     float64
	PlagiarismPercentage float64
	ChunkCount           int
}

// IndexStats reports the current size and shape of a vector index.
type IndexStats struct {
	TotalVectors int
	Dimension    int
	IndexType    string
}

// Embedder converts free text into a fixed-dimension numeric vector.
// Embedding is deterministic for a fixed model version; a backend that
// cannot be reached surfaces ErrModelUnavailable.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Chunker splits raw source text into overlapping word-window chunks.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}

// Index stores embeddings with lock-step metadata and supports cosine
// nearest-neighbor search. Append-only; ordinal position is identity.
type Index interface {
	Add(vectors [][]float64, metadata []ChunkMetadata) error
	Search(query []float64, topK int) ([]SimilarityResult, error)
	Stats() IndexStats
	Save(path string) error
	Load(path string) error
}
