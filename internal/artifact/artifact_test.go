package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/textindex"
)

func sampleDocs() []Document {
	docs := []Document{
		{
			SourceKey: "acme/widgets",
			Path:      "internal/parser/parser.go",
			Language:  "go",
			StartLine: 1, EndLine: 40,
			Title:   "ParseConfig",
			Content: "func ParseConfig(data []byte) (*Config, error) { ... }",
			Tags:    []string{"code"},
		},
		{
			SourceKey: "acme/widgets",
			Path:      "docs/setup.md",
			Language:  "markdown",
			StartLine: 1, EndLine: 20,
			Title:   "Setup",
			Content: "Install the widgets toolchain and run the setup script.",
			Tags:    []string{"docs"},
			CrossRef: &CrossRef{
				Number: 7, Title: "Improve setup docs", State: "open",
				ChangedFileCount: 2,
				URL:              "https://github.com/acme/widgets/pull/7",
			},
		},
	}
	for i := range docs {
		docs[i].ID = NewDocumentID(docs[i].SourceKey, docs[i].Path, i)
		docs[i].ContentHash = HashContent(docs[i].Content)
	}
	return docs
}

func TestNewDocumentID(t *testing.T) {
	id := NewDocumentID("acme/widgets", "main.go", 0)
	assert.Len(t, id, 16)
	assert.Equal(t, id, NewDocumentID("acme/widgets", "main.go", 0))
	assert.NotEqual(t, id, NewDocumentID("acme/widgets", "main.go", 1))
	assert.NotEqual(t, id, NewDocumentID("other/repo", "main.go", 0))
}

func TestHashContent(t *testing.T) {
	h := HashContent("some content")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashContent("some content"))
	assert.NotEqual(t, h, HashContent("other content"))
}

func TestAssemble(t *testing.T) {
	docs := sampleDocs()
	vectors := map[string][]float32{docs[0].ID: {0.6, 0.8}}

	art, err := Assemble(docs, vectors, "test-model", map[string]string{"acme/widgets": "0f3a9c1"})
	require.NoError(t, err)

	assert.Equal(t, Version, art.Meta.Version)
	assert.Equal(t, 2, art.Meta.DocumentCount)
	assert.Equal(t, 1, art.Meta.VectorCount)
	assert.Equal(t, []string{"acme/widgets"}, art.Meta.SourceKeys)
	assert.Equal(t, map[string]string{"acme/widgets": "0f3a9c1"}, art.Meta.SourceCommits)
	assert.Equal(t, "test-model", art.Meta.EmbedModel)
	require.NotNil(t, art.Meta.CrossRefStats)
	assert.Equal(t, 1, art.Meta.CrossRefStats.OpenCount)
	assert.Equal(t, 1, art.Meta.CrossRefStats.DocumentCount)

	ix, err := textindex.Load(art.TextIndex)
	require.NoError(t, err)
	hits := ix.Search("parse config", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, docs[0].ID, hits[0].DocID)
}

func TestAssemble_DuplicateIDFails(t *testing.T) {
	docs := sampleDocs()
	docs[1].ID = docs[0].ID

	_, err := Assemble(docs, nil, "", nil)
	require.Error(t, err)
	assert.True(t, kberr.IsFatal(err))
}

func TestValidate_VectorOrphan(t *testing.T) {
	art, err := Assemble(sampleDocs(), nil, "", nil)
	require.NoError(t, err)

	art.Vectors = map[string][]float32{"deadbeefdeadbeef": {1, 0}}
	err = Validate(art)
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeVectorOrphan, kberr.GetCode(err))
	assert.True(t, kberr.IsStructural(err))
}

func TestValidate_EmptyContent(t *testing.T) {
	docs := sampleDocs()
	art, err := Assemble(docs, nil, "", nil)
	require.NoError(t, err)

	art.Docs[0].Content = ""
	err = Validate(art)
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeIndexInconsistent, kberr.GetCode(err))
}

func TestWriteAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	art, err := Assemble(sampleDocs(), nil, "", nil)
	require.NoError(t, err)

	require.NoError(t, Write(art, dir, 0))

	_, err = os.Stat(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "index.json.zst"))
	require.NoError(t, err)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, art.Docs, loaded.Docs)
	assert.Equal(t, art.Meta.DocumentCount, loaded.Meta.DocumentCount)
}

func TestLoad_FallsBackToReadable(t *testing.T) {
	dir := t.TempDir()
	art, err := Assemble(sampleDocs(), nil, "", nil)
	require.NoError(t, err)
	require.NoError(t, Write(art, dir, 0))

	// Corrupt the compact encoding; the readable one still loads.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json.zst"), []byte("garbage"), 0o644))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, art.Docs, loaded.Docs)
}

func TestLoad_RejectsInconsistentArtifact(t *testing.T) {
	dir := t.TempDir()
	art, err := Assemble(sampleDocs(), nil, "", nil)
	require.NoError(t, err)

	// Drop a document after assembly; the persisted text index still
	// references it.
	art.Docs = art.Docs[:1]
	require.NoError(t, Write(art, dir, 0))

	_, err = Load(dir)
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeIndexInconsistent, kberr.GetCode(err))
	assert.True(t, kberr.IsFatal(err))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeArtifactNotFound, kberr.GetCode(err))
}

func TestWrite_SizeCeiling(t *testing.T) {
	dir := t.TempDir()
	art, err := Assemble(sampleDocs(), nil, "", nil)
	require.NoError(t, err)

	err = Write(art, dir, 64)
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeArtifactTooLarge, kberr.GetCode(err))
	assert.True(t, kberr.IsFatal(err))

	// Nothing partial persisted.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
