package chunk

import (
	"regexp"
	"strings"
)

// declPatterns detect top-level declarations and capture their names.
// Ordered roughly by how specific the prefix is.
var declPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)`),
	regexp.MustCompile(`^(?:export\s+)?(?:public\s+|private\s+|protected\s+)?(?:abstract\s+)?(?:final\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
	regexp.MustCompile(`^(?:export\s+)?interface\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
	regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait|impl)\s+([A-Za-z_][A-Za-z0-9_]*)`),
}

// chunkCode splits brace-structured source by tracking nesting depth
// line by line. A chunk opens when depth leaves zero at the top level
// and closes when it returns to zero, pulling any preamble (imports,
// comments, small declarations) in with it. Closed chunks below minSize
// merge into the following one.
//
// This is a line-and-brace heuristic, not a parser; braces inside string
// or comment literals can skew the depth count.
func (c *Chunker) chunkCode(text string) []Chunk {
	lines := strings.Split(text, "\n")

	var chunks []Chunk
	var cur []string
	curStart := 1
	curLen := 0
	depth := 0
	opened := false

	for i, line := range lines {
		delta := nestingDelta(line)
		if depth == 0 && delta > 0 {
			opened = true
		}
		depth += delta
		if depth < 0 {
			depth = 0
		}

		cur = append(cur, line)
		curLen += len(line) + 1

		if opened && depth == 0 {
			opened = false
			if curLen-1 >= c.minSize {
				chunks = append(chunks, c.emitCode(cur, curStart)...)
				cur = nil
				curLen = 0
				curStart = i + 2
			}
		}
	}

	if len(cur) > 0 {
		chunks = append(chunks, c.emitCode(cur, curStart)...)
	}

	return chunks
}

// emitCode builds chunks from one closed block, slicing oversized
// blocks into maxSize windows.
func (c *Chunker) emitCode(lines []string, startLine int) []Chunk {
	out := c.windowChunks(lines, startLine)
	for i := range out {
		if name := firstDeclName(out[i].Content); name != "" {
			out[i].Title = name
		}
	}
	return out
}

// firstDeclName returns the name of the first declaration found in
// content, or "".
func firstDeclName(content string) string {
	for _, line := range strings.Split(content, "\n") {
		for _, pat := range declPatterns {
			if m := pat.FindStringSubmatch(line); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// nestingDelta is the net brace/bracket/paren depth change of one line.
func nestingDelta(line string) int {
	delta := 0
	for _, r := range line {
		switch r {
		case '{', '[', '(':
			delta++
		case '}', ']', ')':
			delta--
		}
	}
	return delta
}
