// Package pipeline orchestrates one build run: acquire files, redact,
// chunk, vectorize, assemble, persist. A build is wholesale; it either
// produces a complete valid artifact or leaves the previous one intact.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/artifact"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/chunk"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/embed"
	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/redact"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/source"
)

// lockFileName guards the artifact directory against concurrent builds.
const lockFileName = ".build.lock"

// TagRedacted marks documents whose source file had redaction findings.
const TagRedacted = "redacted"

// Builder runs the build pipeline over one or more source providers.
type Builder struct {
	providers   []source.Provider
	redactor    *redact.Redactor
	chunker     *chunk.Chunker
	vectorizer  *embed.Vectorizer
	artifactDir string
	maxBytes    int64
	parallelism int
	logger      *slog.Logger
}

// Options configures a Builder.
type Options struct {
	Providers   []source.Provider
	Redactor    *redact.Redactor
	Chunker     *chunk.Chunker
	Vectorizer  *embed.Vectorizer
	ArtifactDir string
	// MaxArtifactBytes caps the serialized artifact; zero takes the
	// package default.
	MaxArtifactBytes int64
	// Parallelism bounds concurrent per-file work; zero means NumCPU.
	Parallelism int
	Logger      *slog.Logger
}

// New creates a Builder.
func New(opts Options) (*Builder, error) {
	if len(opts.Providers) == 0 {
		return nil, kberr.New(kberr.ErrCodeConfigInvalid, "build needs at least one source provider", nil)
	}
	if opts.ArtifactDir == "" {
		return nil, kberr.New(kberr.ErrCodeConfigInvalid, "build needs an artifact directory", nil)
	}
	if opts.Redactor == nil {
		opts.Redactor = redact.New(redact.Options{})
	}
	if opts.Chunker == nil {
		opts.Chunker = chunk.New(0, 0)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Builder{
		providers:   opts.Providers,
		redactor:    opts.Redactor,
		chunker:     opts.Chunker,
		vectorizer:  opts.Vectorizer,
		artifactDir: opts.ArtifactDir,
		maxBytes:    opts.MaxArtifactBytes,
		parallelism: opts.Parallelism,
		logger:      opts.Logger,
	}, nil
}

// Report summarizes one build run.
type Report struct {
	SourceKeys []string `json:"source_keys"`
	// SkippedSources lists source units whose acquisition failed.
	SkippedSources []string                `json:"skipped_sources,omitempty"`
	Files          int                     `json:"files"`
	Documents      int                     `json:"documents"`
	Vectors        int                     `json:"vectors"`
	Redactions     map[redact.Category]int `json:"redactions,omitempty"`
	CrossRefDocs   int                     `json:"cross_ref_docs"`
	ReadableBytes  int64                   `json:"readable_bytes"`
	CompactBytes   int64                   `json:"compact_bytes"`
	Duration       time.Duration           `json:"duration"`
}

// Build runs the pipeline end to end and persists the artifact. The
// artifact directory is flock-guarded; a second concurrent build fails
// fast with a locked error instead of interleaving writes. A failing
// source unit is logged and skipped; the build fails globally only on
// an empty corpus or an artifact-level structural or size violation.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()

	if err := os.MkdirAll(b.artifactDir, 0o755); err != nil {
		return nil, kberr.Wrap(kberr.ErrCodeArtifactWrite, err)
	}

	lock := flock.New(filepath.Join(b.artifactDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, kberr.Wrap(kberr.ErrCodeBuildLocked, err)
	}
	if !locked {
		return nil, kberr.New(kberr.ErrCodeBuildLocked,
			"another build holds the artifact lock", nil)
	}
	defer func() { _ = lock.Unlock() }()

	report := &Report{Redactions: make(map[redact.Category]int)}
	commits := make(map[string]string)
	var docs []artifact.Document

	for _, provider := range b.providers {
		providerDocs, err := b.processProvider(ctx, provider, report)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			b.logger.Warn("source_unit_failed",
				slog.String("source", provider.Key()),
				slog.String("error", err.Error()))
			report.SkippedSources = append(report.SkippedSources, provider.Key())
			continue
		}
		docs = append(docs, providerDocs...)
		report.SourceKeys = append(report.SourceKeys, provider.Key())
		if c := provider.Commit(); c != "" {
			commits[provider.Key()] = c
		}
	}

	if len(docs) == 0 {
		return nil, kberr.New(kberr.ErrCodeInvalidInput,
			"no indexable documents found", nil)
	}
	if len(commits) == 0 {
		commits = nil
	}

	vectors := b.vectorize(ctx, docs)

	art, err := artifact.Assemble(docs, vectors, b.vectorizer.ModelName(), commits)
	if err != nil {
		return nil, err
	}
	if err := artifact.Write(art, b.artifactDir, b.maxBytes); err != nil {
		return nil, err
	}

	report.Documents = len(docs)
	report.Vectors = len(vectors)
	report.ReadableBytes = fileSize(filepath.Join(b.artifactDir, "index.json"))
	report.CompactBytes = fileSize(filepath.Join(b.artifactDir, "index.json.zst"))
	report.Duration = time.Since(start)
	if len(report.Redactions) == 0 {
		report.Redactions = nil
	}

	b.logger.Info("build_complete",
		slog.Int("files", report.Files),
		slog.Int("documents", report.Documents),
		slog.Int("vectors", report.Vectors),
		slog.Duration("duration", report.Duration))

	return report, nil
}

// processProvider turns one provider's files into documents. Per-file
// work runs in parallel; document order stays deterministic (file
// listing order, then chunk sequence).
func (b *Builder) processProvider(ctx context.Context, provider source.Provider, report *Report) ([]artifact.Document, error) {
	files, err := provider.Files(ctx)
	if err != nil {
		return nil, err
	}
	report.Files += len(files)

	refs, err := provider.CrossRefs(ctx)
	if err != nil {
		// Cross-references enrich documents; their absence never fails
		// a build.
		b.logger.Warn("crossref_lookup_failed",
			slog.String("source", provider.Key()),
			slog.String("error", err.Error()))
		refs = nil
	}

	key := provider.Key()
	perFile := make([][]artifact.Document, len(files))
	perFileFindings := make([][]redact.Finding, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, file := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			perFile[i], perFileFindings[i] = b.processFile(key, file, refs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []artifact.Document
	for i := range perFile {
		docs = append(docs, perFile[i]...)
		for cat, n := range redact.Summary(perFileFindings[i]) {
			report.Redactions[cat] += n
		}
		for _, d := range perFile[i] {
			if d.CrossRef != nil {
				report.CrossRefDocs++
			}
		}
	}
	return docs, nil
}

// processFile redacts and chunks one file into documents.
func (b *Builder) processFile(sourceKey string, file source.File, refs map[string]artifact.CrossRef) ([]artifact.Document, []redact.Finding) {
	clean, findings := b.redactor.Redact(file.Content)

	language := chunk.LanguageForPath(file.Path)
	chunks := b.chunker.Chunk(clean, language)
	if len(chunks) == 0 {
		return nil, findings
	}

	tags := []string{string(chunk.ClassOf(language))}
	if len(findings) > 0 {
		tags = append(tags, TagRedacted)
	}

	var ref *artifact.CrossRef
	if r, ok := refs[file.Path]; ok {
		ref = &r
	}

	docs := make([]artifact.Document, len(chunks))
	for seq, ck := range chunks {
		docs[seq] = artifact.Document{
			ID:          artifact.NewDocumentID(sourceKey, file.Path, seq),
			SourceKey:   sourceKey,
			Path:        file.Path,
			Language:    language,
			StartLine:   ck.StartLine,
			EndLine:     ck.EndLine,
			Title:       ck.Title,
			Content:     ck.Content,
			Tags:        tags,
			ContentHash: artifact.HashContent(ck.Content),
			CrossRef:    ref,
		}
	}
	return docs, findings
}

// vectorize embeds document contents; nil when no backend is wired.
func (b *Builder) vectorize(ctx context.Context, docs []artifact.Document) map[string][]float32 {
	if !b.vectorizer.Enabled() {
		return nil
	}
	inputs := make([]embed.Input, len(docs))
	for i, d := range docs {
		inputs[i] = embed.Input{ID: d.ID, Text: d.Title + "\n" + d.Content}
	}
	return b.vectorizer.Vectorize(ctx, inputs)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// String renders the report for terminal output.
func (r *Report) String() string {
	return fmt.Sprintf("indexed %d files into %d documents (%d vectors) from %v in %s",
		r.Files, r.Documents, r.Vectors, r.SourceKeys, r.Duration.Round(time.Millisecond))
}
