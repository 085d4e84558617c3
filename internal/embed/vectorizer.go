package embed

import (
	"context"
	"log/slog"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
)

// Input is one document to vectorize.
type Input struct {
	ID   string
	Text string
}

// Vectorizer batches documents through an Embedder and collects an
// id -> vector map. A nil embedder makes the whole phase a no-op.
type Vectorizer struct {
	embedder      Embedder
	batchSize     int
	truncateChars int
	logger        *slog.Logger
}

// NewVectorizer creates a Vectorizer. Non-positive sizes take defaults.
func NewVectorizer(embedder Embedder, batchSize, truncateChars int, logger *slog.Logger) *Vectorizer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if truncateChars <= 0 {
		truncateChars = DefaultTruncateChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Vectorizer{
		embedder:      embedder,
		batchSize:     batchSize,
		truncateChars: truncateChars,
		logger:        logger,
	}
}

// Enabled reports whether a backend is wired in.
func (v *Vectorizer) Enabled() bool {
	return v != nil && v.embedder != nil
}

// ModelName names the backend model, empty when disabled.
func (v *Vectorizer) ModelName() string {
	if !v.Enabled() {
		return ""
	}
	return v.embedder.ModelName()
}

// Vectorize embeds inputs in deterministic batch order and returns the
// id -> vector map. A failed batch is logged and skipped; its documents
// are simply absent from the map. Returns nil when disabled.
func (v *Vectorizer) Vectorize(ctx context.Context, inputs []Input) map[string][]float32 {
	if !v.Enabled() || len(inputs) == 0 {
		return nil
	}

	vectors := make(map[string][]float32, len(inputs))

	for start := 0; start < len(inputs); start += v.batchSize {
		end := start + v.batchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		batch := inputs[start:end]

		texts := make([]string, len(batch))
		for i, in := range batch {
			texts[i] = Truncate(in.Text, v.truncateChars)
		}

		vecs, err := v.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			v.logger.Warn("embedding_batch_failed",
				slog.Int("batch_start", start),
				slog.Int("batch_size", len(batch)),
				slog.String("error", err.Error()))
			continue
		}
		for i, in := range batch {
			vectors[in.ID] = vecs[i]
		}
	}

	if len(vectors) == 0 {
		return nil
	}
	return vectors
}

// EmbedQuery embeds a search query through the same truncation path as
// build-time documents.
func (v *Vectorizer) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if !v.Enabled() {
		return nil, kberr.Unavailable(kberr.ErrCodeSemanticUnavailable,
			"no embedding backend configured")
	}
	return v.embedder.Embed(ctx, Truncate(query, v.truncateChars))
}
