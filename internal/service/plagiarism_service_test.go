package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeguardian/internal/chunker"
	"codeguardian/internal/domain"
	"codeguardian/internal/embedding/hashing"
	"codeguardian/internal/leaderboard"
	"codeguardian/internal/scoring"
	"codeguardian/internal/vectorstore/memory"
)

func newService(t *testing.T, excludeSelf bool) (*PlagiarismService, *memory.Store) {
	t.Helper()
	ch, err := chunker.NewWordChunker(50, 10)
	require.NoError(t, err)
	emb, err := hashing.NewEmbedder(hashing.DefaultDimension)
	require.NoError(t, err)
	index, err := memory.NewStore(emb.Dimension())
	require.NoError(t, err)
	engine := scoring.NewEngine(index, scoring.Config{})
	agg := leaderboard.NewAggregator(index, engine, excludeSelf)
	return NewPlagiarismService(ch, emb, index, engine, agg), index
}

func TestCheck_EmptyIndex(t *testing.T) {
	svc, _ := newService(t, false)

	report, err := svc.Check("def add(a,b): return a+b")
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.OverallPlagiarism)
	assert.Equal(t, 100.0, report.OverallOriginality)
	assert.Zero(t, report.FlaggedChunks)
	assert.Equal(t, 1, report.TotalChunks)
}

func TestIngestThenCheck_NearIdenticalCode(t *testing.T) {
	svc, _ := newService(t, false)

	res, err := svc.Ingest("def add(a,b): return a+b", SubmissionInfo{SubmissionID: "S1"})
	require.NoError(t, err)
	assert.Equal(t, "S1", res.SubmissionID)
	assert.Equal(t, 1, res.ChunkCount)

	report, err := svc.Check("def sum(x,y): return x+y")
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalChunks)
	assert.Greater(t, report.OverallPlagiarism, 0.0)

	cr := report.ChunkReports[0]
	require.NotEmpty(t, cr.SimilarChunks)
	assert.Equal(t, "S1", cr.SimilarChunks[0].Metadata.SubmissionID)
}

func TestIngestThenCheck_IdenticalCodeIsFlagged(t *testing.T) {
	svc, _ := newService(t, false)

	code := "func fib(n int) int { if n < 2 { return n }; return fib(n-1) + fib(n-2) }"
	_, err := svc.Ingest(code, SubmissionInfo{SubmissionID: "S1"})
	require.NoError(t, err)

	report, err := svc.Check(code)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, report.OverallPlagiarism, 0.01)
	assert.InDelta(t, 0.0, report.OverallOriginality, 0.01)
	assert.Equal(t, 1, report.FlaggedChunks)
	assert.True(t, report.ChunkReports[0].IsFlagged)
}

func TestCheck_DoesNotMutateIndex(t *testing.T) {
	svc, index := newService(t, false)
	_, err := svc.Ingest("def add(a,b): return a+b", SubmissionInfo{})
	require.NoError(t, err)

	before := index.Stats().TotalVectors
	_, err = svc.Check("def add(a,b): return a+b")
	require.NoError(t, err)
	assert.Equal(t, before, index.Stats().TotalVectors)
}

func TestIngest_EmptyInput(t *testing.T) {
	svc, index := newService(t, false)

	for _, code := range []string{"", "   ", "// nothing but comments\n/* at all */"} {
		_, err := svc.Ingest(code, SubmissionInfo{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	}
	assert.Zero(t, index.Stats().TotalVectors)
}

func TestCheck_EmptyInput(t *testing.T) {
	svc, _ := newService(t, false)
	_, err := svc.Check("/* comment only */")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestIngest_AppliesDefaults(t *testing.T) {
	svc, _ := newService(t, false)

	res, err := svc.Ingest("def add(a,b): return a+b", SubmissionInfo{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SubmissionID)

	report, err := svc.Check("def add(a,b): return a+b")
	require.NoError(t, err)
	top := report.ChunkReports[0].SimilarChunks[0].Metadata
	assert.Equal(t, "Unknown Team", top.TeamName)
	assert.Equal(t, "Unknown Submission", top.SubmissionName)
	assert.Equal(t, res.SubmissionID+"_chunk_0", top.ChunkID)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuildCorpus(t *testing.T) {
	svc, _ := newService(t, false)
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\nfunc main() { println(1) }")
	writeFile(t, dir, "lib/util.py", "def helper(): return 42")
	writeFile(t, dir, "README.txt", "not code, skipped")

	corpus, err := svc.BuildCorpus(dir, SubmissionInfo{SubmissionID: "repo-1", TeamName: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "repo-1", corpus.SubmissionID)
	require.Len(t, corpus.Vectors, 2)
	require.Len(t, corpus.Metadata, 2)

	paths := map[string]string{}
	for _, m := range corpus.Metadata {
		require.NotNil(t, m.Repo)
		paths[m.Repo.FilePath] = m.Language
		assert.Equal(t, "alpha", m.TeamName)
	}
	assert.Equal(t, "go", paths["main.go"])
	assert.Equal(t, "python", paths[filepath.Join("lib", "util.py")])
}

func TestBuildCorpus_NoCodeFiles(t *testing.T) {
	svc, _ := newService(t, false)
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "just prose")

	_, err := svc.BuildCorpus(dir, SubmissionInfo{})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestCompare_EndToEnd(t *testing.T) {
	svc, _ := newService(t, true)

	shared := "def quicksort(arr): pivot = arr[0]; left = [x for x in arr if x < pivot]; return left"
	dirA, dirB, dirC := t.TempDir(), t.TempDir(), t.TempDir()
	writeFile(t, dirA, "sort.py", shared)
	writeFile(t, dirB, "sort.py", shared)
	writeFile(t, dirC, "server.go", "package web\nfunc Listen(port string) error { return http.Serve(nil, nil) }")

	var corpora []domain.Corpus
	for i, dir := range []string{dirA, dirB, dirC} {
		c, err := svc.BuildCorpus(dir, SubmissionInfo{SubmissionID: []string{"A", "B", "C"}[i]})
		require.NoError(t, err)
		corpora = append(corpora, c)
	}

	entries, err := svc.Compare(corpora)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "C", entries[0].SubmissionID)
	assert.Greater(t, entries[0].OriginalityScore, entries[1].OriginalityScore)
	assert.Greater(t, entries[0].OriginalityScore, entries[2].OriginalityScore)
}
