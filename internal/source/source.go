// Package source acquires raw file text for the build pipeline.
// Providers abstract over where documents come from; the pipeline only
// sees paths, contents, and optional cross-reference states.
package source

import (
	"context"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/artifact"
)

// File is one acquired source file.
type File struct {
	// Path is relative to the provider root.
	Path string
	// Content is the raw file text.
	Content string
}

// Provider lists and fetches files from one source.
type Provider interface {
	// Key identifies the source, e.g. "acme/widgets".
	Key() string

	// Files returns all indexable files. Unreadable files are logged
	// and skipped, never fatal.
	Files(ctx context.Context) ([]File, error)

	// Commit identifies the revision the last Files call read from.
	// Empty when the source has no revision notion.
	Commit() string

	// CrossRefs maps file paths to the open change touching them. When
	// several changes touch one file, the most recently updated wins.
	// May return nil when the provider has no cross-reference notion.
	CrossRefs(ctx context.Context) (map[string]artifact.CrossRef, error)
}
