package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "local", cfg.Sources.Provider)
	assert.Equal(t, 200, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 2000, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 3.5, cfg.Redaction.EntropyThreshold)
	assert.Equal(t, 16, cfg.Redaction.MinTokenLength)
	assert.Equal(t, 10, cfg.Embeddings.BatchSize)
	assert.Equal(t, 8000, cfg.Embeddings.TruncateChars)
	assert.Equal(t, int64(20<<20), cfg.Artifact.MaxBytes)
	assert.Equal(t, 0.6, cfg.Search.KeywordWeight)
	assert.Equal(t, 0.4, cfg.Search.SemanticWeight)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Chunking, cfg.Chunking)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
chunking:
  max_chunk_size: 4000
search:
  max_results: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 200, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, 0.6, cfg.Search.KeywordWeight)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking: [oops"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeConfigInvalid, kberr.GetCode(err))
}

func TestValidate_ChunkBoundsInverted(t *testing.T) {
	cfg := Default()
	cfg.Chunking.MinChunkSize = 3000
	cfg.Chunking.MaxChunkSize = 2000

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, kberr.ErrCodeConfigInvalid, kberr.GetCode(err))
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.Sources.Provider = "gitlab"

	require.Error(t, cfg.Validate())
}

func TestValidate_GitHubNeedsRepos(t *testing.T) {
	cfg := Default()
	cfg.Sources.Provider = "github"

	require.Error(t, cfg.Validate())

	cfg.Sources.Repos = []string{"acme/widgets"}
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_OllamaOverrides(t *testing.T) {
	t.Setenv("REPOKB_OLLAMA_HOST", "http://gpu-box:11434")
	t.Setenv("REPOKB_EMBEDDER", "static")

	cfg := Default()
	cfg.applyEnv()

	assert.Equal(t, "http://gpu-box:11434", cfg.Embeddings.OllamaHost)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
}

func TestArtifactPaths(t *testing.T) {
	cfg := Default()
	cfg.Artifact.Dir = "/tmp/kb"

	assert.Equal(t, filepath.Join("/tmp/kb", "index.json.zst"), cfg.CompactArtifactPath())
	assert.Equal(t, filepath.Join("/tmp/kb", "index.json"), cfg.ReadableArtifactPath())
}
