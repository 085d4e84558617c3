package chunk

import "strings"

// chunkWindows is the fallback policy: fixed-size, non-overlapping
// windows of at most maxSize characters.
func (c *Chunker) chunkWindows(text string) []Chunk {
	return c.windowChunks(strings.Split(text, "\n"), 1)
}

// windowChunks packs lines into chunks of at most maxSize characters,
// preferring cuts at line boundaries. A window that would close below
// minSize is filled to maxSize by cutting the overflowing line itself;
// the line's remainder carries into the next window, so only the last
// chunk may fall short of minSize. Slices of a cut line share that
// line's number.
func (c *Chunker) windowChunks(lines []string, startLine int) []Chunk {
	var chunks []Chunk
	var cur []string
	curStart := startLine
	curLen := 0

	flush := func(end int) {
		content := strings.TrimRight(strings.Join(cur, "\n"), "\n")
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, Chunk{
				Title:     titleFromContent(content),
				Content:   content,
				StartLine: curStart,
				EndLine:   end,
			})
		}
		cur = nil
		curLen = 0
	}

	lineNo := startLine - 1
	for _, line := range lines {
		lineNo++
		sep := 0
		if len(cur) > 0 {
			sep = 1
		}

		if curLen+sep+len(line) <= c.maxSize {
			if len(cur) == 0 {
				curStart = lineNo
			}
			cur = append(cur, line)
			curLen += sep + len(line)
			continue
		}

		if curLen >= c.minSize {
			flush(lineNo - 1)
			if len(line) <= c.maxSize {
				cur = []string{line}
				curStart = lineNo
				curLen = len(line)
				continue
			}
			curStart = lineNo
			sep = 0
		}

		head := c.maxSize - curLen - sep
		cur = append(cur, line[:head])
		flush(lineNo)
		rest := line[head:]
		for len(rest) > c.maxSize {
			cur = []string{rest[:c.maxSize]}
			curStart = lineNo
			flush(lineNo)
			rest = rest[c.maxSize:]
		}
		curStart = lineNo
		if len(rest) > 0 {
			cur = []string{rest}
			curLen = len(rest)
		}
	}

	if len(cur) > 0 {
		flush(lineNo)
	}

	return chunks
}
