package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/chunk"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/config"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/embed"
	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/github"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/output"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/pipeline"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/redact"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/source"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/watcher"
)

// buildOptions holds CLI flags for build.
type buildOptions struct {
	watch    bool
	jsonOut  bool
	embedder string
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the knowledge base artifact",
		Long: `Build acquires source files, redacts secrets, chunks them into
documents, optionally embeds them, and persists the index artifact.

A build is wholesale: it either produces a complete valid artifact or
leaves the previous one intact.

Examples:
  repokb build
  repokb build --watch
  repokb build --embedder static`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild on source changes (local provider only)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the build report as JSON")
	cmd.Flags().StringVar(&opts.embedder, "embedder", "", "Override the embedding provider: ollama, static, none")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.embedder != "" {
		cfg.Embeddings.Provider = opts.embedder
	}
	if opts.watch && cfg.Sources.Provider == "github" {
		return kberr.New(kberr.ErrCodeConfigInvalid,
			"--watch requires the local source provider", nil)
	}
	out := output.New(cmd.OutOrStdout())

	builder, err := newBuilder(ctx, cfg)
	if err != nil {
		return err
	}

	if err := buildOnce(ctx, builder, out, opts.jsonOut); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchAndRebuild(ctx, cfg, builder, out, opts.jsonOut)
}

// buildOnce runs one build and renders its report.
func buildOnce(ctx context.Context, builder *pipeline.Builder, out *output.Writer, jsonOut bool) error {
	report, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		return out.JSON(report)
	}

	out.Successf("%s", report)
	for category, count := range report.Redactions {
		out.Warnf("redacted %d %s finding(s)", count, category)
	}
	if report.Vectors == 0 {
		out.Warnf("no vectors embedded; semantic search will be unavailable")
	}
	return nil
}

// watchAndRebuild rebuilds wholesale on every debounced change signal
// until the context is cancelled. A failed rebuild keeps the previous
// artifact and keeps watching.
func watchAndRebuild(ctx context.Context, cfg *config.Config, builder *pipeline.Builder, out *output.Writer, jsonOut bool) error {
	w, err := watcher.New(cfg.Sources.Root, cfg.Sources.Exclude, 0, slog.Default())
	if err != nil {
		return err
	}
	defer w.Close()

	go func() { _ = w.Run(ctx) }()
	out.Printf("watching %s for changes", cfg.Sources.Root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			if err := buildOnce(ctx, builder, out, jsonOut); err != nil {
				out.Errorf("rebuild failed: %v", err)
			}
		}
	}
}

// newBuilder wires providers, redactor, chunker, and vectorizer from
// the configuration.
func newBuilder(ctx context.Context, cfg *config.Config) (*pipeline.Builder, error) {
	providers, err := newProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Options{
		Providers: providers,
		Redactor: redact.New(redact.Options{
			EntropyThreshold: cfg.Redaction.EntropyThreshold,
			MinTokenLength:   cfg.Redaction.MinTokenLength,
			Disabled:         !cfg.Redaction.Enabled,
		}),
		Chunker:          chunk.New(cfg.Chunking.MinChunkSize, cfg.Chunking.MaxChunkSize),
		Vectorizer:       newVectorizer(ctx, cfg),
		ArtifactDir:      cfg.Artifact.Dir,
		MaxArtifactBytes: cfg.Artifact.MaxBytes,
		Logger:           slog.Default(),
	})
}

func newProviders(ctx context.Context, cfg *config.Config) ([]source.Provider, error) {
	if cfg.Sources.Provider == "github" {
		providers := make([]source.Provider, 0, len(cfg.Sources.Repos))
		for _, repo := range cfg.Sources.Repos {
			p, err := github.NewProvider(ctx, github.Options{
				Repo:      repo,
				Token:     cfg.Sources.Token,
				CrossRefs: cfg.Sources.CrossRefs,
				Exclude:   cfg.Sources.Exclude,
			}, slog.Default())
			if err != nil {
				return nil, err
			}
			providers = append(providers, p)
		}
		return providers, nil
	}

	local, err := source.NewLocal(cfg.Sources.Root, cfg.Sources.Exclude, slog.Default())
	if err != nil {
		return nil, err
	}
	return []source.Provider{local}, nil
}

func newVectorizer(ctx context.Context, cfg *config.Config) *embed.Vectorizer {
	embedder := embed.NewFromOptions(ctx, embed.Options{
		Provider: cfg.Embeddings.Provider,
		Host:     cfg.Embeddings.OllamaHost,
		Model:    cfg.Embeddings.Model,
	}, slog.Default())

	return embed.NewVectorizer(embedder, cfg.Embeddings.BatchSize, cfg.Embeddings.TruncateChars, slog.Default())
}
