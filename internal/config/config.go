// Package config loads and validates the repokb configuration file.
//
// Configuration is YAML with defaults applied for any omitted field.
// Environment variables override the embedding backend settings
// (REPOKB_OLLAMA_HOST, REPOKB_OLLAMA_MODEL, REPOKB_EMBEDDER).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
)

// Config is the complete repokb configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Sources    SourcesConfig    `yaml:"sources" json:"sources"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Redaction  RedactionConfig  `yaml:"redaction" json:"redaction"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Artifact   ArtifactConfig   `yaml:"artifact" json:"artifact"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// SourcesConfig configures where documents are acquired from.
type SourcesConfig struct {
	// Provider selects the source provider: "local" or "github".
	Provider string `yaml:"provider" json:"provider"`
	// Root is the directory to index for the local provider.
	Root string `yaml:"root" json:"root"`
	// Repos lists "owner/name" repositories for the github provider.
	Repos []string `yaml:"repos" json:"repos"`
	// Exclude lists glob patterns that are never indexed.
	Exclude []string `yaml:"exclude" json:"exclude"`
	// Token is the GitHub API token. Usually supplied via GITHUB_TOKEN.
	Token string `yaml:"token" json:"-"`
	// CrossRefs enables pull-request cross-reference lookup (github only).
	CrossRefs bool `yaml:"cross_refs" json:"cross_refs"`
}

// ChunkingConfig bounds chunk sizes in characters.
type ChunkingConfig struct {
	MinChunkSize int `yaml:"min_chunk_size" json:"min_chunk_size"`
	MaxChunkSize int `yaml:"max_chunk_size" json:"max_chunk_size"`
}

// RedactionConfig configures secret detection.
// The entropy threshold and minimum token length are empirical constants;
// no derivation is documented, so they stay configurable.
type RedactionConfig struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	EntropyThreshold float64 `yaml:"entropy_threshold" json:"entropy_threshold"`
	MinTokenLength   int     `yaml:"min_token_length" json:"min_token_length"`
}

// EmbeddingsConfig configures the embedding backend.
type EmbeddingsConfig struct {
	// Provider selects the backend: "ollama", "static", or "none".
	Provider string `yaml:"provider" json:"provider"`
	Model    string `yaml:"model" json:"model"`
	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	// BatchSize is the number of documents embedded per batch.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// TruncateChars caps text length before embedding. The same cap is
	// applied to queries; asymmetric caps would corrupt cosine comparisons.
	TruncateChars int `yaml:"truncate_chars" json:"truncate_chars"`
}

// ArtifactConfig configures artifact persistence.
type ArtifactConfig struct {
	// Dir is the directory holding the artifact encodings.
	Dir string `yaml:"dir" json:"dir"`
	// MaxBytes is the hard size ceiling for the serialized artifact.
	// Exceeding it fails the build; nothing partial is persisted.
	MaxBytes int64 `yaml:"max_bytes" json:"max_bytes"`
}

// SearchConfig configures hybrid retrieval.
type SearchConfig struct {
	// KeywordWeight and SemanticWeight drive hybrid fusion. The fused
	// score is a running weighted average, not a sum.
	KeywordWeight  float64 `yaml:"keyword_weight" json:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`
	MaxResults     int     `yaml:"max_results" json:"max_results"`
}

// Defaults mirroring the documented constants.
const (
	DefaultMinChunkSize     = 200
	DefaultMaxChunkSize     = 2000
	DefaultEntropyThreshold = 3.5
	DefaultMinTokenLength   = 16
	DefaultEmbedBatchSize   = 10
	DefaultTruncateChars    = 8000
	DefaultKeywordWeight    = 0.6
	DefaultSemanticWeight   = 0.4
	DefaultMaxResults       = 10
	DefaultMaxArtifactBytes = 20 << 20 // 20 MiB
)

// defaultExcludePatterns are never indexed.
var defaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/*.min.js",
	"**/package-lock.json",
	"**/go.sum",
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Version: 1,
		Sources: SourcesConfig{
			Provider: "local",
			Root:     ".",
			Exclude:  defaultExcludePatterns,
		},
		Chunking: ChunkingConfig{
			MinChunkSize: DefaultMinChunkSize,
			MaxChunkSize: DefaultMaxChunkSize,
		},
		Redaction: RedactionConfig{
			Enabled:          true,
			EntropyThreshold: DefaultEntropyThreshold,
			MinTokenLength:   DefaultMinTokenLength,
		},
		Embeddings: EmbeddingsConfig{
			Provider:      "ollama",
			OllamaHost:    "http://localhost:11434",
			BatchSize:     DefaultEmbedBatchSize,
			TruncateChars: DefaultTruncateChars,
		},
		Artifact: ArtifactConfig{
			Dir:      ".repokb",
			MaxBytes: DefaultMaxArtifactBytes,
		},
		Search: SearchConfig{
			KeywordWeight:  DefaultKeywordWeight,
			SemanticWeight: DefaultSemanticWeight,
			MaxResults:     DefaultMaxResults,
		},
		LogLevel: "info",
	}
}

// Load reads the configuration file at path, applying defaults for any
// omitted field. A missing file returns the defaults without error; a
// malformed file returns a config error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, kberr.Wrap(kberr.ErrCodeConfigNotFound, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, kberr.New(kberr.ErrCodeConfigInvalid,
			fmt.Sprintf("cannot parse %s: %v", path, err), err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return kberr.Wrap(kberr.ErrCodeConfigInvalid, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return kberr.Wrap(kberr.ErrCodeConfigInvalid, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnv layers environment overrides onto the configuration.
func (c *Config) applyEnv() {
	if host := os.Getenv("REPOKB_OLLAMA_HOST"); host != "" {
		c.Embeddings.OllamaHost = host
	}
	if model := os.Getenv("REPOKB_OLLAMA_MODEL"); model != "" {
		c.Embeddings.Model = model
	}
	if provider := os.Getenv("REPOKB_EMBEDDER"); provider != "" {
		c.Embeddings.Provider = provider
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && c.Sources.Token == "" {
		c.Sources.Token = token
	}
}

// Validate checks invariants that cannot be recovered by defaulting.
func (c *Config) Validate() error {
	if c.Chunking.MinChunkSize <= 0 {
		c.Chunking.MinChunkSize = DefaultMinChunkSize
	}
	if c.Chunking.MaxChunkSize <= 0 {
		c.Chunking.MaxChunkSize = DefaultMaxChunkSize
	}
	if c.Chunking.MinChunkSize >= c.Chunking.MaxChunkSize {
		return kberr.New(kberr.ErrCodeConfigInvalid,
			fmt.Sprintf("min_chunk_size (%d) must be smaller than max_chunk_size (%d)",
				c.Chunking.MinChunkSize, c.Chunking.MaxChunkSize), nil)
	}

	if c.Redaction.EntropyThreshold <= 0 {
		c.Redaction.EntropyThreshold = DefaultEntropyThreshold
	}
	if c.Redaction.MinTokenLength <= 0 {
		c.Redaction.MinTokenLength = DefaultMinTokenLength
	}

	if c.Embeddings.BatchSize <= 0 {
		c.Embeddings.BatchSize = DefaultEmbedBatchSize
	}
	if c.Embeddings.TruncateChars <= 0 {
		c.Embeddings.TruncateChars = DefaultTruncateChars
	}

	if c.Artifact.MaxBytes <= 0 {
		c.Artifact.MaxBytes = DefaultMaxArtifactBytes
	}

	if c.Search.KeywordWeight <= 0 || c.Search.SemanticWeight <= 0 {
		return kberr.New(kberr.ErrCodeConfigInvalid,
			"search weights must be positive", nil)
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = DefaultMaxResults
	}

	switch c.Sources.Provider {
	case "", "local", "github":
	default:
		return kberr.New(kberr.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown source provider %q (use local or github)", c.Sources.Provider), nil)
	}

	if c.Sources.Provider == "github" && len(c.Sources.Repos) == 0 {
		return kberr.New(kberr.ErrCodeConfigInvalid,
			"github provider requires at least one repo (owner/name)", nil)
	}

	return nil
}

// CompactArtifactPath returns the compact (zstd) artifact encoding path.
func (c *Config) CompactArtifactPath() string {
	return filepath.Join(c.Artifact.Dir, "index.json.zst")
}

// ReadableArtifactPath returns the human-readable artifact encoding path.
func (c *Config) ReadableArtifactPath() string {
	return filepath.Join(c.Artifact.Dir, "index.json")
}
