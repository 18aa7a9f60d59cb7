package domain

import "errors"

var (
	// ErrInvalidArgument covers malformed caller input: mismatched
	// vector/metadata lengths, non-positive chunk parameters, overlap not
	// smaller than the chunk size, fewer than two corpora to compare.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrModelUnavailable means the embedding backend could not be
	// reached or loaded. Callers must not proceed to indexing.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrIndexCorruption means a persisted index is internally
	// inconsistent (vector count and metadata count disagree).
	ErrIndexCorruption = errors.New("index corruption")

	// ErrEmptyInput means chunking produced zero chunks, so there is
	// nothing to embed or score.
	ErrEmptyInput = errors.New("no valid code chunks found")
)
