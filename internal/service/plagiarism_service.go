package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"codeguardian/internal/domain"
	"codeguardian/internal/embedding"
	"codeguardian/internal/leaderboard"
	"codeguardian/internal/scoring"
	"codeguardian/internal/vectorstore"
)

// SubmissionInfo is the caller-supplied attribution for an ingest or check.
// A missing SubmissionID gets a fresh uuid; missing names get the same
// placeholders the upload pipeline has always used.
type SubmissionInfo struct {
	SubmissionID   string
	TeamName       string
	SubmissionName string
	Language       string
	Repo           *domain.RepoOrigin
}

// IngestResult reports what an ingestion stored.
type IngestResult struct {
	SubmissionID string
	ChunkCount   int
}

// PlagiarismService wires the chunker, embedder, index, scoring engine and
// aggregator into the upload/check/compare pipelines. The index is
// constructed by the caller and injected, so independent indices (and
// deterministic tests) stay possible.
type PlagiarismService struct {
	chunker    domain.Chunker
	embedder   embedding.Embedder
	index      vectorstore.Storage
	engine     *scoring.Engine
	aggregator *leaderboard.Aggregator
}

func NewPlagiarismService(chunker domain.Chunker, embedder embedding.Embedder, index vectorstore.Storage, engine *scoring.Engine, aggregator *leaderboard.Aggregator) *PlagiarismService {
	return &PlagiarismService{
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		engine:     engine,
		aggregator: aggregator,
	}
}

// Ingest chunks and embeds the code and adds it to the shared index so
// later checks can match against it. All-whitespace or comment-only code
// produces zero chunks, which the ingestion pipeline reports as an error:
// there is nothing to remember.
func (s *PlagiarismService) Ingest(code string, info SubmissionInfo) (IngestResult, error) {
	chunks, err := s.chunker.Chunk(code)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest: %w", err)
	}
	if len(chunks) == 0 {
		return IngestResult{}, fmt.Errorf("ingest: %w", domain.ErrEmptyInput)
	}
	vectors, err := embedding.Batch(s.embedder, chunks)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest: %w", err)
	}
	applyDefaults(&info)
	metadata := make([]domain.ChunkMetadata, len(chunks))
	for i, ch := range chunks {
		metadata[i] = domain.ChunkMetadata{
			SubmissionID:   info.SubmissionID,
			ChunkID:        fmt.Sprintf("%s_chunk_%d", info.SubmissionID, i),
			TeamName:       info.TeamName,
			SubmissionName: info.SubmissionName,
			Language:       info.Language,
			StartWord:      ch.StartWord,
			EndWord:        ch.EndWord,
			OriginalText:   ch.OriginalText,
			ProcessedText:  ch.Text,
			Repo:           info.Repo,
		}
	}
	if err := s.index.Add(vectors, metadata); err != nil {
		return IngestResult{}, fmt.Errorf("ingest: %w", err)
	}
	return IngestResult{SubmissionID: info.SubmissionID, ChunkCount: len(chunks)}, nil
}

// Check scores the code against the current index without adding it.
// Checking and remembering are separate operations: a caller that wants
// both calls Ingest afterwards.
func (s *PlagiarismService) Check(code string) (domain.DocumentReport, error) {
	chunks, err := s.chunker.Chunk(code)
	if err != nil {
		return domain.DocumentReport{}, fmt.Errorf("check: %w", err)
	}
	if len(chunks) == 0 {
		return domain.DocumentReport{}, fmt.Errorf("check: %w", domain.ErrEmptyInput)
	}
	vectors, err := embedding.Batch(s.embedder, chunks)
	if err != nil {
		return domain.DocumentReport{}, fmt.Errorf("check: %w", err)
	}
	return s.engine.CheckDocument(uuid.NewString(), chunks, vectors, "")
}

// IngestFile reads one code file and ingests it as a single submission
// named after the file.
func (s *PlagiarismService) IngestFile(path string, info SubmissionInfo) (IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: %w", path, err)
	}
	if info.SubmissionName == "" {
		info.SubmissionName = filepath.Base(path)
	}
	if info.Language == "" {
		info.Language = languageFromPath(path)
	}
	return s.Ingest(string(data), info)
}

// CheckFile reads one code file and checks it against the index.
func (s *PlagiarismService) CheckFile(path string) (domain.DocumentReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DocumentReport{}, fmt.Errorf("check %s: %w", path, err)
	}
	return s.Check(string(data))
}

// BuildCorpus chunks and embeds every code file under dir into one corpus
// for multi-corpus comparison. Files with non-code extensions are skipped.
func (s *PlagiarismService) BuildCorpus(dir string, info SubmissionInfo) (domain.Corpus, error) {
	applyDefaults(&info)
	corpus := domain.Corpus{SubmissionID: info.SubmissionID}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCodeFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		chunks, err := s.chunker.Chunk(string(data))
		if err != nil {
			return err
		}
		vectors, err := embedding.Batch(s.embedder, chunks)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		origin := info.Repo
		if origin == nil {
			origin = &domain.RepoOrigin{FilePath: rel}
		} else {
			o := *origin
			o.FilePath = rel
			origin = &o
		}
		for i, ch := range chunks {
			corpus.Metadata = append(corpus.Metadata, domain.ChunkMetadata{
				SubmissionID:   info.SubmissionID,
				ChunkID:        fmt.Sprintf("%s_%s_%d", info.SubmissionID, rel, i),
				TeamName:       info.TeamName,
				SubmissionName: info.SubmissionName,
				Language:       languageFromPath(path),
				StartWord:      ch.StartWord,
				EndWord:        ch.EndWord,
				OriginalText:   ch.OriginalText,
				ProcessedText:  ch.Text,
				Repo:           origin,
			})
		}
		corpus.Vectors = append(corpus.Vectors, vectors...)
		return nil
	})
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("corpus %s: %w", dir, err)
	}
	if len(corpus.Vectors) == 0 {
		return domain.Corpus{}, fmt.Errorf("corpus %s: %w", dir, domain.ErrEmptyInput)
	}
	return corpus, nil
}

// Compare ranks the corpora by originality via the shared index.
func (s *PlagiarismService) Compare(corpora []domain.Corpus) ([]domain.LeaderboardEntry, error) {
	return s.aggregator.Compare(corpora)
}

// Stats reports the shared index size.
func (s *PlagiarismService) Stats() domain.IndexStats {
	return s.index.Stats()
}

func applyDefaults(info *SubmissionInfo) {
	if info.SubmissionID == "" {
		info.SubmissionID = uuid.NewString()
	}
	if info.TeamName == "" {
		info.TeamName = "Unknown Team"
	}
	if info.SubmissionName == "" {
		info.SubmissionName = "Unknown Submission"
	}
	if info.Language == "" {
		info.Language = "unknown"
	}
}

var codeExtensions = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".ts":    "typescript",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".rs":    "rust",
	".php":   "php",
	".kt":    "kotlin",
	".swift": "swift",
	".scala": "scala",
}

func isCodeFile(path string) bool {
	_, ok := codeExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func languageFromPath(path string) string {
	if lang, ok := codeExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "unknown"
}
