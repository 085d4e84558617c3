// Package embed turns text into fixed-length normalized vectors via a
// pluggable embedding backend. The backend is a black box; this package
// handles truncation, batching, caching, and soft degradation when no
// backend is reachable.
package embed

import (
	"context"
	"math"
	"time"
	"unicode/utf8"
)

const (
	// DefaultBatchSize bounds peak memory and concurrency against the
	// embedding backend.
	DefaultBatchSize = 10

	// DefaultTruncateChars caps text length before embedding. The same
	// cap applies to documents and queries; asymmetric caps would
	// corrupt cosine comparisons.
	DefaultTruncateChars = 8000

	// DefaultTimeout for a single embedding request.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries for transient backend failures.
	DefaultMaxRetries = 3
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// Truncate deterministically caps text at max bytes without splitting a
// UTF-8 sequence.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// normalizeVector normalizes a vector to unit length so cosine
// similarity reduces to a dot product.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
