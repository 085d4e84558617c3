package embed

import (
	"context"
	"log/slog"
	"time"
)

// Options selects and configures the embedding backend.
type Options struct {
	// Provider is "ollama", "static", or "none".
	Provider string
	// Host is the Ollama endpoint (ollama only).
	Host string
	// Model is the embedding model name (ollama only).
	Model string
	// Timeout for embedding requests.
	Timeout time.Duration
}

// NewFromOptions builds an embedder for the configured provider. A nil
// return means vectorization is disabled: either explicitly ("none") or
// because the backend is unreachable. Backend unavailability is a soft
// failure; the build continues keyword-only.
func NewFromOptions(ctx context.Context, opts Options, logger *slog.Logger) Embedder {
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Provider {
	case "none":
		return nil

	case "static":
		return NewStaticEmbedder()

	default:
		ollama := NewOllamaEmbedder(OllamaConfig{
			Host:    opts.Host,
			Model:   opts.Model,
			Timeout: opts.Timeout,
		})
		if !ollama.Available(ctx) {
			logger.Warn("embedding_backend_unavailable",
				slog.String("host", ollama.config.Host),
				slog.String("model", ollama.ModelName()))
			return nil
		}
		logger.Info("embedding_backend_ready",
			slog.String("provider", "ollama"),
			slog.String("model", ollama.ModelName()))
		return NewCachedEmbedder(ollama, DefaultCacheSize)
	}
}
