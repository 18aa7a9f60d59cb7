package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"codeguardian/internal/domain"
)

// Default window parameters for code chunking.
const (
	DefaultMaxChunkWords = 500
	DefaultOverlapWords  = 100
)

// WordChunker splits normalized source code into overlapping word windows.
// Comments and whitespace runs are stripped first so structurally identical
// code with different comments still produces comparable chunks.
type WordChunker struct {
	maxChunkWords int
	overlapWords  int
	lineComment   *regexp.Regexp
	blockComment  *regexp.Regexp
	whitespace    *regexp.Regexp
}

// NewWordChunker validates the window parameters. Overlap must stay below
// the chunk size so the window stride is at least one word.
func NewWordChunker(maxChunkWords, overlapWords int) (*WordChunker, error) {
	if maxChunkWords <= 0 {
		return nil, fmt.Errorf("chunker: max chunk words %d: %w", maxChunkWords, domain.ErrInvalidArgument)
	}
	if overlapWords < 0 {
		return nil, fmt.Errorf("chunker: overlap words %d: %w", overlapWords, domain.ErrInvalidArgument)
	}
	if overlapWords >= maxChunkWords {
		return nil, fmt.Errorf("chunker: overlap %d >= max chunk words %d: %w", overlapWords, maxChunkWords, domain.ErrInvalidArgument)
	}
	return &WordChunker{
		maxChunkWords: maxChunkWords,
		overlapWords:  overlapWords,
		lineComment:   regexp.MustCompile(`(?m)//.*$`),
		blockComment:  regexp.MustCompile(`(?s)/\*.*?\*/`),
		whitespace:    regexp.MustCompile(`\s+`),
	}, nil
}

// Chunk normalizes text and slides a window of maxChunkWords words,
// advancing by maxChunkWords-overlapWords each step. Start/end indices
// refer to the normalized token stream. A pure function: the same text
// always yields the same chunk sequence.
func (c *WordChunker) Chunk(text string) ([]domain.Chunk, error) {
	words := strings.Fields(c.Normalize(text))
	if len(words) == 0 {
		return nil, nil
	}
	stride := c.maxChunkWords - c.overlapWords
	var chunks []domain.Chunk
	for i := 0; i < len(words); i += stride {
		end := i + c.maxChunkWords
		if end > len(words) {
			end = len(words)
		}
		window := strings.Join(words[i:end], " ")
		if strings.TrimSpace(window) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Text:         window,
			StartWord:    i,
			EndWord:      end,
			OriginalText: window,
		})
	}
	return chunks, nil
}

// Normalize strips // and /* */ comments, collapses whitespace runs to
// single spaces and trims the result.
func (c *WordChunker) Normalize(text string) string {
	text = c.blockComment.ReplaceAllString(text, " ")
	text = c.lineComment.ReplaceAllString(text, "")
	text = c.whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
