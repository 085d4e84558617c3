package chunk

import (
	"regexp"
	"strings"
)

// headingPattern matches markdown headings: # Title through ###### Title.
var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// chunkText splits heading-delimited prose. Lines accumulate into the
// current chunk; a new heading closes it only once it has reached
// minSize. A chunk that outgrows maxSize before the next heading is
// force-split at the last blank line inside it; when no blank line
// exists, or the head before it is still below minSize, the chunk is
// hard-cut into maxSize windows instead, carrying any short tail
// forward so every non-final chunk meets minSize.
func (c *Chunker) chunkText(text string) []Chunk {
	lines := strings.Split(text, "\n")

	var chunks []Chunk
	var cur []string
	curStart := 1
	curLen := 0

	for i, line := range lines {
		lineNo := i + 1

		if headingPattern.MatchString(line) && curLen-1 >= c.minSize {
			if chk, ok := c.emitText(cur, curStart, lineNo-1); ok {
				chunks = append(chunks, chk)
			}
			cur = nil
			curLen = 0
			curStart = lineNo
		}

		cur = append(cur, line)
		curLen += len(line) + 1

		for curLen-1 > c.maxSize {
			blank := lastBlankLine(cur)
			if blank > 0 && joinedLen(cur[:blank])-1 >= c.minSize {
				if chk, ok := c.emitText(cur[:blank], curStart, curStart+blank-1); ok {
					chunks = append(chunks, chk)
				}
				rest := append([]string(nil), cur[blank+1:]...)
				curStart += blank + 1
				cur = rest
				curLen = joinedLen(rest)
				continue
			}

			wins := c.windowChunks(cur, curStart)
			for wi := range wins {
				wins[wi].Title = textTitle(wins[wi].Content)
			}
			cur = nil
			curLen = 0
			curStart = lineNo + 1
			if n := len(wins); n > 0 && len(wins[n-1].Content) < c.minSize {
				// The short tail keeps accumulating with later lines.
				tail := wins[n-1]
				wins = wins[:n-1]
				cur = strings.Split(tail.Content, "\n")
				curStart = tail.StartLine
				curLen = joinedLen(cur)
			}
			chunks = append(chunks, wins...)
		}
	}

	if len(cur) > 0 {
		if chk, ok := c.emitText(cur, curStart, len(lines)); ok {
			chunks = append(chunks, chk)
		}
	}

	return chunks
}

// emitText builds a prose chunk from accumulated lines. Returns false
// for blank-only content.
func (c *Chunker) emitText(lines []string, startLine, endLine int) (Chunk, bool) {
	content := strings.TrimRight(strings.Join(lines, "\n"), "\n")
	if strings.TrimSpace(content) == "" {
		return Chunk{}, false
	}
	return Chunk{
		Title:     textTitle(content),
		Content:   content,
		StartLine: startLine,
		EndLine:   endLine,
	}, true
}

// textTitle prefers the first heading's text, then the first non-blank
// line.
func textTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			return truncateTitle(strings.TrimSpace(m[2]))
		}
	}
	return titleFromContent(content)
}

// lastBlankLine returns the index of the last blank line in lines,
// excluding the first and last positions, or -1.
func lastBlankLine(lines []string) int {
	for j := len(lines) - 2; j > 0; j-- {
		if strings.TrimSpace(lines[j]) == "" {
			return j
		}
	}
	return -1
}

func joinedLen(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	return n
}
