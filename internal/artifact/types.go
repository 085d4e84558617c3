// Package artifact defines the persisted knowledge base artifact: the
// document set, the serialized text index blob, and the optional
// id -> vector map, produced wholesale by one build run and immutable
// thereafter.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Version is the artifact schema version.
const Version = 1

// MaxArtifactBytes is the default hard ceiling for the serialized
// artifact. Exceeding it is build-fatal.
const MaxArtifactBytes = 20 << 20 // 20 MiB

// Document is the atomic retrievable unit: a bounded, line-addressed
// excerpt of one source file.
type Document struct {
	// ID is derived deterministically from (SourceKey, Path, sequence).
	ID string `json:"id"`
	// SourceKey identifies the originating repository or corpus.
	SourceKey string `json:"source_key"`
	// Path is the file path relative to the source root.
	Path string `json:"path"`
	// Language is the detected language hint.
	Language string `json:"language"`
	// StartLine and EndLine address the excerpt within the file,
	// 1-indexed and inclusive.
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
	// Title is the chunk's derived title.
	Title string `json:"title"`
	// Content is the excerpt text. Never empty.
	Content string `json:"content"`
	// Tags carry free-form attributes for filtering.
	Tags []string `json:"tags,omitempty"`
	// ContentHash is the SHA-256 of Content, for change detection
	// across rebuilds.
	ContentHash string `json:"content_hash"`
	// CrossRef links the file to an open change touching it, when the
	// source has a cross-reference backend. Attached post-hoc; does not
	// affect chunk identity.
	CrossRef *CrossRef `json:"cross_ref,omitempty"`
}

// CrossRef describes an open change request touching a document's file.
type CrossRef struct {
	Number           int       `json:"number"`
	Title            string    `json:"title"`
	State            string    `json:"state"`
	ChangedFileCount int       `json:"changed_file_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	URL              string    `json:"url"`
}

// CrossRefStats summarizes cross-reference coverage of one build.
type CrossRefStats struct {
	// OpenCount is the number of distinct open changes referenced.
	OpenCount int `json:"open_count"`
	// DocumentCount is the number of documents carrying a cross-reference.
	DocumentCount int `json:"document_count"`
}

// Meta describes one build run.
type Meta struct {
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	SourceKeys []string  `json:"source_keys"`
	// SourceCommits maps each source key to the revision its files were
	// read at. Sources without a revision notion are absent.
	SourceCommits map[string]string `json:"source_commits,omitempty"`
	DocumentCount int               `json:"document_count"`
	VectorCount   int               `json:"vector_count"`
	EmbedModel    string            `json:"embed_model,omitempty"`
	// CrossRefStats is nil when no document carries a cross-reference.
	CrossRefStats *CrossRefStats `json:"cross_ref_stats,omitempty"`
}

// Artifact is the complete persisted index.
type Artifact struct {
	Meta Meta       `json:"meta"`
	Docs []Document `json:"docs"`
	// TextIndex is the opaque serialized inverted index blob.
	TextIndex []byte `json:"text_index"`
	// Vectors maps document id to its embedding. Documents without a
	// vector are simply absent.
	Vectors map[string][]float32 `json:"vectors,omitempty"`
}

// NewDocumentID derives a stable document id from the source key, path,
// and chunk sequence number: the first 16 hex characters of the SHA-256
// digest. Stable across rebuilds while the coordinates are unchanged.
func NewDocumentID(sourceKey, path string, seq int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", sourceKey, path, seq)))
	return hex.EncodeToString(sum[:])[:16]
}

// HashContent returns the full SHA-256 hex digest of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
