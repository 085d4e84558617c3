package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_PlainWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	assert.False(t, w.TTY())

	w.Successf("indexed %d files", 3)
	w.Warnf("no vectors")
	w.Errorf("boom")

	out := buf.String()
	assert.Contains(t, out, "ok indexed 3 files")
	assert.Contains(t, out, "warn no vectors")
	assert.Contains(t, out, "error boom")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriter_Hit(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Hit(1, 0.8731, "ParseConfig", "acme/widgets internal/parser.go:1-30", "func ParseConfig reads\nthe YAML file")

	out := buf.String()
	assert.Contains(t, out, " 1. ParseConfig")
	assert.Contains(t, out, "(0.8731) acme/widgets internal/parser.go:1-30")
	assert.Contains(t, out, "      func ParseConfig reads")
	assert.Contains(t, out, "      the YAML file")
}

func TestWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	require.NoError(t, w.JSON(map[string]int{"documents": 4}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 4, decoded["documents"])
}
