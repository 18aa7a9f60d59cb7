package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"codeguardian/internal/chunker"
	"codeguardian/internal/config"
	"codeguardian/internal/embedding"
	"codeguardian/internal/embedding/hashing"
	"codeguardian/internal/embedding/openai"
	"codeguardian/internal/leaderboard"
	"codeguardian/internal/scoring"
	"codeguardian/internal/service"
	"codeguardian/internal/tui"
	"codeguardian/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var team string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/codeguardian/config.yaml if not provided)")
	flag.StringVar(&team, "team", "", "Team name recorded on ingested submissions")
	flag.Parse()
	inputs := flag.Args()

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

	// Assemble components
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
	if cfg.Index.PersistPath != "" {
		if _, statErr := os.Stat(cfg.Index.PersistPath); statErr == nil {
			if err := index.Load(cfg.Index.PersistPath); err != nil {
				log.Fatalf("index load failed: %v", err)
			}
			if got := index.Stats().Dimension; got != emb.Dimension() {
				log.Fatalf("persisted index dimension %d does not match embedder %q dimension %d", got, emb.Name(), emb.Dimension())
			}
		}
	}

	engine := scoring.NewEngine(index, scoring.Config{
		TopK:             cfg.Scoring.TopK,
		FlagThreshold:    cfg.Scoring.FlagThreshold,
		ChunkFlagPercent: cfg.Scoring.ChunkFlagPercent,
	})
	agg := leaderboard.NewAggregator(index, engine, cfg.Scoring.ExcludeSelf)
	svc := service.NewPlagiarismService(ch, emb, index, engine, agg)

	for _, path := range inputs {
		res, err := svc.IngestFile(path, service.SubmissionInfo{TeamName: team})
		if err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		fmt.Printf("Ingested %s as %s (%d chunks)\n", path, res.SubmissionID, res.ChunkCount)
	}

	m := tui.New(svc)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}

	if cfg.Index.PersistPath != "" {
		if err := index.Save(cfg.Index.PersistPath); err != nil {
			log.Fatalf("index save failed: %v", err)
		}
	}
}
