package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeguardian/internal/domain"
	"codeguardian/internal/vectorstore/memory"
)

func newIndex(t *testing.T, dim int) *memory.Store {
	t.Helper()
	s, err := memory.NewStore(dim)
	require.NoError(t, err)
	return s
}

func meta(submission, chunk string) domain.ChunkMetadata {
	return domain.ChunkMetadata{SubmissionID: submission, ChunkID: chunk}
}

func TestScore_EmptyIndex(t *testing.T) {
	e := NewEngine(newIndex(t, 3), Config{})

	report, err := e.Score([]float64{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.PlagiarismPercentage)
	assert.Equal(t, 100.0, report.OriginalityScore)
	assert.Empty(t, report.SimilarChunks)
	assert.Empty(t, report.FlaggedChunks)
	assert.Zero(t, report.TotalChunksChecked)
}

func TestScore_WorstCaseMatchPolicy(t *testing.T) {
	idx := newIndex(t, 2)
	require.NoError(t, idx.Add([][]float64{
		{1, 0}, // identical to the query
		{1, 1}, // ~70.71% similar
		{0, 1}, // orthogonal
	}, []domain.ChunkMetadata{meta("s1", "c0"), meta("s2", "c1"), meta("s3", "c2")}))
	e := NewEngine(idx, Config{})

	report, err := e.Score([]float64{1, 0})
	require.NoError(t, err)
	// plagiarism is the single worst match, not an average
	assert.InDelta(t, 100.0, report.PlagiarismPercentage, 1e-7)
	assert.InDelta(t, 0.0, report.OriginalityScore, 1e-7)
	assert.InDelta(t, report.PlagiarismPercentage, report.MaxSimilarity, 1e-9)
	assert.Equal(t, 3, report.TotalChunksChecked)
	assert.Equal(t, "s1", report.SimilarChunks[0].Metadata.SubmissionID)
}

func TestScore_SimilarChunksCappedAtThree(t *testing.T) {
	idx := newIndex(t, 2)
	vectors := make([][]float64, 5)
	metadata := make([]domain.ChunkMetadata, 5)
	for i := range vectors {
		vectors[i] = []float64{1, float64(i)}
		metadata[i] = meta("s1", "c")
	}
	require.NoError(t, idx.Add(vectors, metadata))
	e := NewEngine(idx, Config{})

	report, err := e.Score([]float64{1, 0})
	require.NoError(t, err)
	assert.Len(t, report.SimilarChunks, 3)
	assert.Equal(t, 5, report.TotalChunksChecked)
}

func TestScore_FlagThresholdBoundary(t *testing.T) {
	idx := newIndex(t, 2)
	require.NoError(t, idx.Add([][]float64{
		{1, 0}, // exactly at a threshold of 1.0 (100%)
		{0, 1}, // far below
	}, []domain.ChunkMetadata{meta("exact", "c0"), meta("below", "c1")}))
	e := NewEngine(idx, Config{FlagThreshold: 1.0})

	report, err := e.Score([]float64{1, 0})
	require.NoError(t, err)
	// a neighbor exactly at flagThreshold*100 is flagged, nothing below it
	require.Len(t, report.FlaggedChunks, 1)
	assert.Equal(t, "exact", report.FlaggedChunks[0].Metadata.SubmissionID)
}

func TestScore_FlaggedSubsetAboveThreshold(t *testing.T) {
	idx := newIndex(t, 2)
	require.NoError(t, idx.Add([][]float64{
		{1, 0},   // 100%
		{1, 0.2}, // ~98%
		{0, 1},   // 0%
	}, []domain.ChunkMetadata{meta("s1", "c0"), meta("s2", "c1"), meta("s3", "c2")}))
	e := NewEngine(idx, Config{FlagThreshold: 0.70})

	report, err := e.Score([]float64{1, 0})
	require.NoError(t, err)
	require.Len(t, report.FlaggedChunks, 2)
	for _, f := range report.FlaggedChunks {
		assert.GreaterOrEqual(t, f.SimilarityPercentage, 70.0)
	}
	// similar chunks are reported regardless of threshold
	assert.Len(t, report.SimilarChunks, 3)
}

func TestScoreExcluding_FiltersSubmission(t *testing.T) {
	idx := newIndex(t, 2)
	require.NoError(t, idx.Add([][]float64{
		{1, 0},
		{1, 1},
	}, []domain.ChunkMetadata{meta("self", "c0"), meta("other", "c1")}))
	e := NewEngine(idx, Config{})

	report, err := e.ScoreExcluding([]float64{1, 0}, "self")
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalChunksChecked)
	assert.Equal(t, "other", report.SimilarChunks[0].Metadata.SubmissionID)
	assert.InDelta(t, 70.71, report.PlagiarismPercentage, 0.01)
}

func TestCheckDocument_Aggregation(t *testing.T) {
	idx := newIndex(t, 2)
	require.NoError(t, idx.Add([][]float64{{1, 0}}, []domain.ChunkMetadata{meta("s1", "c0")}))
	e := NewEngine(idx, Config{})

	chunks := []domain.Chunk{
		{Text: "a", StartWord: 0, EndWord: 1, OriginalText: "a"},
		{Text: "b", StartWord: 1, EndWord: 2, OriginalText: "b"},
	}
	vectors := [][]float64{
		{1, 0}, // exact match, flagged
		{0, 1}, // orthogonal, clean
	}
	report, err := e.CheckDocument("check-1", chunks, vectors, "")
	require.NoError(t, err)

	assert.Equal(t, "check-1", report.CheckID)
	assert.Equal(t, 2, report.TotalChunks)
	assert.Equal(t, 1, report.FlaggedChunks)
	assert.InDelta(t, 100.0, report.OverallPlagiarism, 1e-7)
	assert.InDelta(t, 0.0, report.OverallOriginality, 1e-7)

	require.Len(t, report.ChunkReports, 2)
	assert.Equal(t, "check-1_chunk_0", report.ChunkReports[0].ChunkID)
	assert.True(t, report.ChunkReports[0].IsFlagged)
	assert.False(t, report.ChunkReports[1].IsFlagged)
}

func TestCheckDocument_ChunkFlagIsStrictlyGreater(t *testing.T) {
	idx := newIndex(t, 2)
	require.NoError(t, idx.Add([][]float64{{1, 0}}, []domain.ChunkMetadata{meta("s1", "c0")}))
	// chunk flag threshold exactly at the match percentage: strict >, so no flag
	e := NewEngine(idx, Config{ChunkFlagPercent: 100.0})

	chunks := []domain.Chunk{{Text: "a", StartWord: 0, EndWord: 1, OriginalText: "a"}}
	report, err := e.CheckDocument("check-2", chunks, [][]float64{{1, 0}}, "")
	require.NoError(t, err)
	assert.Zero(t, report.FlaggedChunks)
	assert.False(t, report.ChunkReports[0].IsFlagged)
}

func TestCheckDocument_LengthMismatch(t *testing.T) {
	e := NewEngine(newIndex(t, 2), Config{})
	_, err := e.CheckDocument("check-3", []domain.Chunk{{Text: "a"}}, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCheckDocument_EmptyAgainstEmptyIndex(t *testing.T) {
	e := NewEngine(newIndex(t, 2), Config{})
	report, err := e.CheckDocument("check-4", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.OverallPlagiarism)
	assert.Equal(t, 100.0, report.OverallOriginality)
	assert.Zero(t, report.FlaggedChunks)
}
