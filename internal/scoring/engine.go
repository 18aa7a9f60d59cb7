package scoring

import (
	"fmt"
	"math"

	"codeguardian/internal/domain"
	"codeguardian/internal/vectorstore"
)

// Tunable scoring defaults. FlagThreshold applies to individual neighbors
// of a query; ChunkFlagPercent is the distinct document-level threshold a
// chunk's own plagiarism percentage must exceed to flag the chunk.
const (
	DefaultTopK             = 10
	DefaultFlagThreshold    = 0.70
	DefaultChunkFlagPercent = 70.0
)

// Config tunes the engine. Zero values fall back to the defaults above.
type Config struct {
	TopK             int
	FlagThreshold    float64
	ChunkFlagPercent float64
}

// Engine converts neighbor-search results into plagiarism percentages,
// originality scores and flagged evidence. Scoring never mutates the
// index; a caller that wants to check-and-remember a submission adds it
// explicitly afterwards.
type Engine struct {
	index            vectorstore.Storage
	topK             int
	flagThreshold    float64
	chunkFlagPercent float64
}

func NewEngine(index vectorstore.Storage, cfg Config) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.FlagThreshold <= 0 {
		cfg.FlagThreshold = DefaultFlagThreshold
	}
	if cfg.ChunkFlagPercent <= 0 {
		cfg.ChunkFlagPercent = DefaultChunkFlagPercent
	}
	return &Engine{
		index:            index,
		topK:             cfg.TopK,
		flagThreshold:    cfg.FlagThreshold,
		chunkFlagPercent: cfg.ChunkFlagPercent,
	}
}

// Score retrieves up to topK neighbors of the query and derives the
// plagiarism report. An empty index yields 0.0 plagiarism and perfect
// originality: in the absence of any prior corpus nothing can match.
func (e *Engine) Score(query []float64) (domain.PlagiarismReport, error) {
	return e.ScoreExcluding(query, "")
}

// ScoreExcluding is Score with neighbors from the given submission id
// filtered out, so a corpus already in the index can be scored without
// matching itself.
func (e *Engine) ScoreExcluding(query []float64, excludeSubmissionID string) (domain.PlagiarismReport, error) {
	topK := e.topK
	if excludeSubmissionID != "" {
		// Fetch headroom so the filter can still fill topK results.
		topK *= 2
	}
	results, err := e.index.Search(query, topK)
	if err != nil {
		return domain.PlagiarismReport{}, fmt.Errorf("scoring: %w", err)
	}
	if excludeSubmissionID != "" {
		kept := results[:0]
		for _, r := range results {
			if r.Metadata.SubmissionID == excludeSubmissionID {
				continue
			}
			kept = append(kept, r)
		}
		results = kept
		if len(results) > e.topK {
			results = results[:e.topK]
		}
	}
	if len(results) == 0 {
		return domain.PlagiarismReport{
			PlagiarismPercentage: 0.0,
			OriginalityScore:     100.0,
		}, nil
	}

	// Worst-case match: one near-duplicate neighbor is enough to flag.
	maxSimilarity := results[0].SimilarityPercentage
	for _, r := range results[1:] {
		if r.SimilarityPercentage > maxSimilarity {
			maxSimilarity = r.SimilarityPercentage
		}
	}
	plagiarism := round2(maxSimilarity)
	originality := 100 - plagiarism
	if originality < 0 {
		originality = 0
	}

	var flagged []domain.SimilarityResult
	for _, r := range results {
		if r.SimilarityPercentage >= e.flagThreshold*100 {
			flagged = append(flagged, r)
		}
	}
	similar := results
	if len(similar) > 3 {
		similar = similar[:3]
	}
	return domain.PlagiarismReport{
		PlagiarismPercentage: plagiarism,
		OriginalityScore:     round2(originality),
		SimilarChunks:        similar,
		FlaggedChunks:        flagged,
		MaxSimilarity:        round2(maxSimilarity),
		TotalChunksChecked:   len(results),
	}, nil
}

// CheckDocument scores every chunk of a submitted document and aggregates:
// overall plagiarism is the worst chunk, overall originality the minimum
// over chunk originalities. A chunk is flagged iff its own plagiarism
// percentage exceeds the chunk flag threshold.
func (e *Engine) CheckDocument(checkID string, chunks []domain.Chunk, vectors [][]float64, excludeSubmissionID string) (domain.DocumentReport, error) {
	if len(chunks) != len(vectors) {
		return domain.DocumentReport{}, fmt.Errorf("check: %d chunks vs %d vectors: %w", len(chunks), len(vectors), domain.ErrInvalidArgument)
	}
	report := domain.DocumentReport{
		CheckID:            checkID,
		OverallPlagiarism:  0.0,
		OverallOriginality: 100.0,
		TotalChunks:        len(chunks),
	}
	for i, ch := range chunks {
		res, err := e.ScoreExcluding(vectors[i], excludeSubmissionID)
		if err != nil {
			return domain.DocumentReport{}, err
		}
		cr := domain.ChunkReport{
			ChunkID:              fmt.Sprintf("%s_chunk_%d", checkID, i),
			StartWord:            ch.StartWord,
			EndWord:              ch.EndWord,
			Text:                 ch.OriginalText,
			PlagiarismPercentage: res.PlagiarismPercentage,
			OriginalityScore:     res.OriginalityScore,
			SimilarChunks:        res.SimilarChunks,
			IsFlagged:            res.PlagiarismPercentage > e.chunkFlagPercent,
		}
		report.ChunkReports = append(report.ChunkReports, cr)
		if cr.IsFlagged {
			report.FlaggedChunks++
		}
		if i == 0 || cr.PlagiarismPercentage > report.OverallPlagiarism {
			report.OverallPlagiarism = cr.PlagiarismPercentage
		}
		if i == 0 || cr.OriginalityScore < report.OverallOriginality {
			report.OverallOriginality = cr.OriginalityScore
		}
	}
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
