package textindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"camelCase", "getUserById", []string{"get", "user", "by", "id"}},
		{"snake_case", "parse_http_request", []string{"parse", "http", "request"}},
		{"acronym run", "parseHTTPRequest", []string{"parse", "http", "request"}},
		{"path separators", "internal/search/engine.go", []string{"internal", "search", "engine", "go"}},
		{"short tokens dropped", "a b cd", []string{"cd"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func buildIndex(t *testing.T, docs []Fields) *Index {
	t.Helper()
	ix := New()
	for _, d := range docs {
		require.NoError(t, ix.Add(d))
	}
	return ix
}

func TestSearch_TitleOutweighsContent(t *testing.T) {
	ix := buildIndex(t, []Fields{
		{ID: "in-content", Title: "other topic", Content: "alpha filler words here"},
		{ID: "in-title", Title: "alpha", Content: "filler words here instead"},
	})

	results := ix.Search("alpha notes", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "in-title", results[0].DocID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	ix := buildIndex(t, []Fields{
		{ID: "first", Title: "widget parser", Content: "identical body"},
		{ID: "second", Title: "widget parser", Content: "identical body"},
		{ID: "third", Title: "widget parser", Content: "identical body"},
	})

	results := ix.Search("widget parser", 10)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{results[0].DocID, results[1].DocID, results[2].DocID})
}

func TestSearch_LimitAndMiss(t *testing.T) {
	ix := buildIndex(t, []Fields{
		{ID: "a", Title: "config loader", Content: "reads yaml"},
		{ID: "b", Title: "config writer", Content: "writes yaml"},
	})

	assert.Len(t, ix.Search("config yaml", 1), 1)
	assert.Nil(t, ix.Search("nonexistent gibberish", 10))
	assert.Nil(t, ix.Search("", 10))
}

func TestAdd_RejectsDuplicateAndEmptyIDs(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add(Fields{ID: "dup", Title: "one"}))

	err := ix.Add(Fields{ID: "dup", Title: "two"})
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeIndexInconsistent, kberr.GetCode(err))
	assert.True(t, kberr.IsFatal(err))

	err = ix.Add(Fields{ID: ""})
	assert.True(t, kberr.IsValidation(err))
}

func TestSerialize_RoundTrip(t *testing.T) {
	ix := buildIndex(t, []Fields{
		{ID: "a", Title: "retry backoff", Path: "internal/net/retry.go", SourceKey: "acme/netlib", Language: "go", Content: "exponential backoff with jitter"},
		{ID: "b", Title: "rate limiter", Path: "internal/net/limit.go", SourceKey: "acme/netlib", Language: "go", Content: "token bucket limiter"},
	})

	blob, err := ix.Serialize()
	require.NoError(t, err)

	restored, err := Load(blob)
	require.NoError(t, err)

	assert.Equal(t, ix.Len(), restored.Len())
	assert.Equal(t, ix.DocIDs(), restored.DocIDs())
	assert.Equal(t, ix.Search("backoff jitter", 5), restored.Search("backoff jitter", 5))
}

func TestLoad_CorruptBlob(t *testing.T) {
	_, err := Load([]byte("not json"))
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeArtifactCorrupt, kberr.GetCode(err))
	assert.True(t, kberr.IsStructural(err))

	_, err = Load([]byte(`{"version": 99}`))
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeArtifactCorrupt, kberr.GetCode(err))
}
