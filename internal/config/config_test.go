package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "hashing", cfg.Embedder.Type)
	assert.Equal(t, 500, cfg.Chunker.MaxChunkWords)
	assert.Equal(t, 100, cfg.Chunker.OverlapWords)
	assert.Equal(t, 10, cfg.Scoring.TopK)
	assert.InDelta(t, 0.70, cfg.Scoring.FlagThreshold, 1e-9)
	assert.InDelta(t, 70.0, cfg.Scoring.ChunkFlagPercent, 1e-9)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "openai", OpenAI: &OpenAIEmbedderConfig{Model: "text-embedding-3-small"}},
		Chunker:  ChunkerConfig{MaxChunkWords: 200, OverlapWords: 40},
		Index:    IndexConfig{PersistPath: "index.gob"},
		Scoring:  ScoringConfig{TopK: 5, FlagThreshold: 0.8, ChunkFlagPercent: 80, ExcludeSelf: true},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", loaded.Embedder.Type)
	assert.Equal(t, 200, loaded.Chunker.MaxChunkWords)
	assert.Equal(t, 40, loaded.Chunker.OverlapWords)
	assert.Equal(t, "index.gob", loaded.Index.PersistPath)
	assert.True(t, loaded.Scoring.ExcludeSelf)
	// openai sub-config gets its remaining defaults applied on load
	require.NotNil(t, loaded.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", loaded.Embedder.OpenAI.APIKeyEnv)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  max_chunk_words: 50\n  overlap_words: 10\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Chunker.MaxChunkWords)
	assert.Equal(t, 10, cfg.Chunker.OverlapWords)
	assert.Equal(t, 10, cfg.Scoring.TopK)
}
