package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"codeguardian/internal/chunker"
	"codeguardian/internal/config"
	"codeguardian/internal/domain"
	"codeguardian/internal/embedding"
	"codeguardian/internal/embedding/hashing"
	"codeguardian/internal/embedding/openai"
	"codeguardian/internal/leaderboard"
	"codeguardian/internal/scoring"
	"codeguardian/internal/service"
	"codeguardian/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var excludeSelf bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file")
	flag.BoolVar(&excludeSelf, "exclude-self", false, "Exclude each corpus's own chunks from its neighbor search")
	flag.Parse()
	dirs := flag.Args()
	if len(dirs) < 2 {
		fmt.Println("Usage: leaderboard [--config=config.yaml] [--exclude-self] dir1 dir2 [dir3 ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "hashing", "":
		dim := hashing.DefaultDimension
		if cfg.Embedder.Hashing != nil && cfg.Embedder.Hashing.Dimension > 0 {
			dim = cfg.Embedder.Hashing.Dimension
		}
		emb, err = hashing.NewEmbedder(dim)
		if err != nil {
			log.Fatalf("hashing embedder init failed: %v", err)
		}
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		emb, err = openai.NewEmbedder(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Dimension: cfg.Embedder.OpenAI.Dimension,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	ch, err := chunker.NewWordChunker(cfg.Chunker.MaxChunkWords, cfg.Chunker.OverlapWords)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}
	index, err := memory.NewStore(emb.Dimension())
	if err != nil {
		log.Fatalf("index init failed: %v", err)
	}
	engine := scoring.NewEngine(index, scoring.Config{
		TopK:             cfg.Scoring.TopK,
		FlagThreshold:    cfg.Scoring.FlagThreshold,
		ChunkFlagPercent: cfg.Scoring.ChunkFlagPercent,
	})
	agg := leaderboard.NewAggregator(index, engine, excludeSelf || cfg.Scoring.ExcludeSelf)
	svc := service.NewPlagiarismService(ch, emb, index, engine, agg)

	corpora := make([]domain.Corpus, 0, len(dirs))
	for i, dir := range dirs {
		corpus, err := svc.BuildCorpus(dir, service.SubmissionInfo{
			TeamName:       fmt.Sprintf("RepoTeam-%d", i+1),
			SubmissionName: filepath.Base(dir),
		})
		if err != nil {
			log.Fatalf("building corpus from %s failed: %v", dir, err)
		}
		fmt.Printf("Corpus %s: %d chunks from %s\n", corpus.SubmissionID, len(corpus.Vectors), dir)
		corpora = append(corpora, corpus)
	}

	entries, err := svc.Compare(corpora)
	if err != nil {
		log.Fatalf("comparison failed: %v", err)
	}

	fmt.Printf("\n%-4s %-14s %-24s %12s %12s %8s\n", "#", "Team", "Submission", "Originality", "Plagiarism", "Chunks")
	for i, e := range entries {
		fmt.Printf("%-4d %-14s %-24s %11.2f%% %11.2f%% %8d\n",
			i+1, e.TeamName, e.SubmissionID, e.OriginalityScore, e.PlagiarismPercentage, e.ChunkCount)
	}
}
