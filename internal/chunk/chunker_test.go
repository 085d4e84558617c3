package chunk

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_SplitsAtHeadings(t *testing.T) {
	c := New(10, 1000)

	input := strings.Join([]string{
		"# Alpha",
		"The first section talks about one thing.",
		"",
		"# Beta",
		"The second section talks about another.",
	}, "\n")

	chunks := c.Chunk(input, "markdown")
	require.Len(t, chunks, 2)

	assert.Equal(t, "Alpha", chunks[0].Title)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Contains(t, chunks[0].Content, "first section")

	assert.Equal(t, "Beta", chunks[1].Title)
	assert.Equal(t, 4, chunks[1].StartLine)
	assert.Equal(t, 5, chunks[1].EndLine)
}

func TestChunkText_HoldsSectionsBelowMin(t *testing.T) {
	c := New(500, 2000)

	input := strings.Join([]string{
		"# Alpha",
		"Short.",
		"# Beta",
		"Also short.",
	}, "\n")

	chunks := c.Chunk(input, "markdown")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Alpha", chunks[0].Title)
	assert.Contains(t, chunks[0].Content, "# Beta")
}

func TestChunkText_ForceSplitsAtBlankLine(t *testing.T) {
	c := New(10, 80)

	var lines []string
	lines = append(lines, "# Alpha")
	for i := 0; i < 6; i++ {
		lines = append(lines, fmt.Sprintf("paragraph %d with some padding text here", i))
		lines = append(lines, "")
	}

	chunks := c.Chunk(strings.Join(lines, "\n"), "markdown")
	require.Greater(t, len(chunks), 1)

	for _, chk := range chunks {
		assert.LessOrEqual(t, len(chk.Content), 80)
		assert.NotEmpty(t, strings.TrimSpace(chk.Content))
	}
	assert.Equal(t, "Alpha", chunks[0].Title)
}

func TestChunkCode_BraceBlocks(t *testing.T) {
	c := New(10, 1000)

	input := strings.Join([]string{
		"package demo",
		"",
		"func Alpha() {",
		"\ta()",
		"}",
		"",
		"func Beta() {",
		"\tb()",
		"}",
	}, "\n")

	chunks := c.Chunk(input, "go")
	require.Len(t, chunks, 2)

	assert.Equal(t, "Alpha", chunks[0].Title)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 5, chunks[0].EndLine)
	assert.Contains(t, chunks[0].Content, "package demo")

	assert.Equal(t, "Beta", chunks[1].Title)
	assert.Greater(t, chunks[1].StartLine, chunks[0].EndLine)
}

func TestChunkCode_MergesSmallBlocks(t *testing.T) {
	c := New(500, 2000)

	input := strings.Join([]string{
		"func Alpha() {",
		"\ta()",
		"}",
		"func Beta() {",
		"\tb()",
		"}",
	}, "\n")

	chunks := c.Chunk(input, "go")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Alpha", chunks[0].Title)
	assert.Contains(t, chunks[0].Content, "Beta")
}

func TestChunkCode_OversizedBlockSliced(t *testing.T) {
	c := New(10, 60)

	var lines []string
	lines = append(lines, "func Huge() {")
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("\tstep%d(arg)", i))
	}
	lines = append(lines, "}")

	chunks := c.Chunk(strings.Join(lines, "\n"), "go")
	require.Greater(t, len(chunks), 1)
	for _, chk := range chunks {
		assert.LessOrEqual(t, len(chk.Content), 60)
	}
	assert.Equal(t, "Huge", chunks[0].Title)
}

func TestChunkWindows_Fallback(t *testing.T) {
	c := New(10, 50)

	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, fmt.Sprintf("record %d with a little data", i))
	}

	chunks := c.Chunk(strings.Join(lines, "\n"), "python")
	require.Greater(t, len(chunks), 1)

	prevEnd := 0
	for _, chk := range chunks {
		assert.LessOrEqual(t, len(chk.Content), 50)
		assert.NotEmpty(t, strings.TrimSpace(chk.Content))
		assert.Greater(t, chk.StartLine, prevEnd)
		assert.GreaterOrEqual(t, chk.EndLine, chk.StartLine)
		prevEnd = chk.EndLine
	}
	assert.Equal(t, "record 0 with a little data", chunks[0].Title)
}

func TestChunkWindows_HardCutsHugeLine(t *testing.T) {
	c := New(10, 50)

	chunks := c.Chunk(strings.Repeat("x", 130), "text")
	require.Len(t, chunks, 3)
	assert.Equal(t, 50, len(chunks[0].Content))
	assert.Equal(t, 30, len(chunks[2].Content))
}

func TestChunkText_ShortHeadBeforeLongParagraph(t *testing.T) {
	c := New(200, 2000)

	chunks := c.Chunk("x\n\n"+strings.Repeat("a", 3000), "markdown")
	require.NotEmpty(t, chunks)

	for i, chk := range chunks {
		assert.LessOrEqual(t, len(chk.Content), 2000)
		if i < len(chunks)-1 {
			assert.GreaterOrEqual(t, len(chk.Content), 200, "chunk %d is below the minimum", i)
		}
	}
}

func TestChunk_SizeBoundsProperty(t *testing.T) {
	c := New(200, 2000)

	inputs := map[string]string{
		"short head then long paragraph": "x\n\n" + strings.Repeat("a", 3000),
		"long line then prose":           strings.Repeat("b", 5000) + "\n\nclosing words after the cut.",
		"tiny paragraphs":                strings.Repeat("tiny.\n\n", 400),
		"headings with long bodies": strings.Repeat(
			"# Section\n"+strings.Repeat("body text with several words in it. ", 80)+"\n\n", 3),
	}

	for name, input := range inputs {
		for _, language := range []string{"markdown", "text"} {
			chunks := c.Chunk(input, language)
			require.NotEmpty(t, chunks, "%s (%s)", name, language)

			for i, chk := range chunks {
				assert.LessOrEqual(t, len(chk.Content), 2000, "%s (%s) chunk %d", name, language, i)
				assert.NotEmpty(t, strings.TrimSpace(chk.Content))
				if i < len(chunks)-1 {
					assert.GreaterOrEqual(t, len(chk.Content), 200, "%s (%s) chunk %d", name, language, i)
				}
			}
		}
	}
}

func TestTitleTruncationKeepsValidUTF8(t *testing.T) {
	line := strings.Repeat("日", 40) // 120 bytes of 3-byte runes

	title := titleFromContent(line)
	assert.True(t, utf8.ValidString(title))
	assert.LessOrEqual(t, len(title), titleWidth)

	heading := textTitle("# " + line)
	assert.True(t, utf8.ValidString(heading))
	assert.LessOrEqual(t, len(heading), titleWidth)
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New(0, 0)

	assert.Nil(t, c.Chunk("", "markdown"))
	assert.Nil(t, c.Chunk("   \n\t\n", "go"))
}

func TestChunk_DefaultBoundsProperty(t *testing.T) {
	c := New(0, 0)

	var lines []string
	for s := 0; s < 4; s++ {
		lines = append(lines, fmt.Sprintf("# Section %d", s))
		for p := 0; p < 8; p++ {
			lines = append(lines, strings.Repeat(fmt.Sprintf("sentence %d-%d ", s, p), 12))
			lines = append(lines, "")
		}
	}

	chunks := c.Chunk(strings.Join(lines, "\n"), "markdown")
	require.NotEmpty(t, chunks)

	for i, chk := range chunks {
		assert.LessOrEqual(t, len(chk.Content), DefaultMaxChunkSize)
		assert.NotEmpty(t, strings.TrimSpace(chk.Content))
		if i < len(chunks)-1 {
			assert.GreaterOrEqual(t, len(chk.Content), DefaultMinChunkSize)
		}
	}
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassText, ClassOf("markdown"))
	assert.Equal(t, ClassCode, ClassOf("go"))
	assert.Equal(t, ClassCode, ClassOf("TypeScript"))
	assert.Equal(t, ClassPlain, ClassOf("python"))
	assert.Equal(t, ClassPlain, ClassOf(""))
}

func TestLanguageForPath(t *testing.T) {
	assert.Equal(t, "go", LanguageForPath("internal/search/engine.go"))
	assert.Equal(t, "markdown", LanguageForPath("docs/README.md"))
	assert.Equal(t, "typescript", LanguageForPath("src/App.tsx"))
	assert.Equal(t, "text", LanguageForPath("LICENSE"))
}
