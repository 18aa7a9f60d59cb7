package leaderboard

import (
	"fmt"
	"sort"

	"codeguardian/internal/domain"
	"codeguardian/internal/scoring"
	"codeguardian/internal/vectorstore"
)

// Aggregator ranks independently ingested corpora by originality against
// the shared index.
//
// Every corpus is ingested before any corpus is scored, so each corpus's
// originality reflects similarity to all compared material, including its
// own vectors. Construct with excludeSelf to filter a corpus's own
// submission id out of its neighbor searches.
type Aggregator struct {
	index       vectorstore.Storage
	engine      *scoring.Engine
	excludeSelf bool
}

func NewAggregator(index vectorstore.Storage, engine *scoring.Engine, excludeSelf bool) *Aggregator {
	return &Aggregator{index: index, engine: engine, excludeSelf: excludeSelf}
}

// Compare ingests every corpus into the shared index sequentially, scores
// each corpus's chunks against the full index and returns entries sorted
// by originality descending, ties broken by plagiarism ascending. Ranking
// a single corpus is meaningless: fewer than two corpora fail before any
// ingestion happens.
func (a *Aggregator) Compare(corpora []domain.Corpus) ([]domain.LeaderboardEntry, error) {
	if len(corpora) < 2 {
		return nil, fmt.Errorf("compare: need at least 2 corpora, got %d: %w", len(corpora), domain.ErrInvalidArgument)
	}
	for _, c := range corpora {
		if err := a.index.Add(c.Vectors, c.Metadata); err != nil {
			return nil, fmt.Errorf("compare: ingesting corpus %s: %w", c.SubmissionID, err)
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(corpora))
	for _, c := range corpora {
		exclude := ""
		if a.excludeSelf {
			exclude = c.SubmissionID
		}
		maxSim := 0.0
		for _, vec := range c.Vectors {
			res, err := a.engine.ScoreExcluding(vec, exclude)
			if err != nil {
				return nil, fmt.Errorf("compare: scoring corpus %s: %w", c.SubmissionID, err)
			}
			if res.PlagiarismPercentage > maxSim {
				maxSim = res.PlagiarismPercentage
			}
		}
		originality := 100 - maxSim
		if originality < 0 {
			originality = 0
		}
		entry := domain.LeaderboardEntry{
			SubmissionID:         c.SubmissionID,
			OriginalityScore:     originality,
			PlagiarismPercentage: maxSim,
			ChunkCount:           len(c.Vectors),
		}
		if len(c.Metadata) > 0 {
			entry.TeamName = c.Metadata[0].TeamName
			entry.Repo = c.Metadata[0].Repo
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].OriginalityScore != entries[j].OriginalityScore {
			return entries[i].OriginalityScore > entries[j].OriginalityScore
		}
		return entries[i].PlagiarismPercentage < entries[j].PlagiarismPercentage
	})
	return entries, nil
}
