// Package chunk splits file text into bounded, structurally coherent
// segments. Each segment becomes a retrievable document candidate.
//
// Three policies apply depending on the language hint: heading-delimited
// splitting for markdown-like prose, brace-depth tracking for code, and
// fixed-size windows for everything else. Chunking is a pure function of
// the input text; it never reads the filesystem.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// Default chunk size bounds in characters.
const (
	DefaultMinChunkSize = 200
	DefaultMaxChunkSize = 2000
)

// titleWidth caps titles derived from content lines.
const titleWidth = 80

// untitledPlaceholder is used when no heading, declaration, or content
// line yields a title.
const untitledPlaceholder = "(untitled)"

// ContentClass selects the chunking policy for a file.
type ContentClass string

const (
	// ClassText is heading-delimited prose (markdown and friends).
	ClassText ContentClass = "text"
	// ClassCode is brace-structured source code.
	ClassCode ContentClass = "code"
	// ClassPlain is everything else, chunked by fixed windows.
	ClassPlain ContentClass = "plain"
)

// Chunk is one bounded segment of a source file.
type Chunk struct {
	// Title is derived by priority: heading text, declaration name,
	// first non-blank line, placeholder.
	Title string
	// Content is the chunk text. Never empty.
	Content string
	// StartLine is the 1-indexed first line of the chunk in the file.
	StartLine int
	// EndLine is the inclusive last line.
	EndLine int
}

// Chunker splits text into chunks within the configured size bounds.
type Chunker struct {
	minSize int
	maxSize int
}

// New creates a Chunker. Non-positive bounds take the defaults.
func New(minSize, maxSize int) *Chunker {
	if minSize <= 0 {
		minSize = DefaultMinChunkSize
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	return &Chunker{minSize: minSize, maxSize: maxSize}
}

// Chunk splits text according to the policy for languageHint.
// Every returned chunk has non-empty content and at most maxSize
// characters; all but the last chunk of a file have at least minSize.
func (c *Chunker) Chunk(text, languageHint string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	switch ClassOf(languageHint) {
	case ClassText:
		return c.chunkText(text)
	case ClassCode:
		return c.chunkCode(text)
	default:
		return c.chunkWindows(text)
	}
}

// titleFromContent derives a title from the first non-blank line,
// truncated to the display width.
func titleFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return truncateTitle(trimmed)
	}
	return untitledPlaceholder
}

// truncateTitle caps s at titleWidth bytes without splitting a rune.
func truncateTitle(s string) string {
	if len(s) <= titleWidth {
		return s
	}
	cut := titleWidth
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
