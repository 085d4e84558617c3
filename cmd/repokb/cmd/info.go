package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/artifact"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/output"
)

func newInfoCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show artifact metadata",
		Long:  `Info prints the built artifact's metadata: snapshot version, source scope, document and vector counts, and encoding sizes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print metadata as JSON")
	return cmd
}

// artifactInfo is the info command's JSON shape.
type artifactInfo struct {
	artifact.Meta
	ReadableBytes int64 `json:"readable_bytes"`
	CompactBytes  int64 `json:"compact_bytes"`
}

func runInfo(cmd *cobra.Command, jsonOut bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := output.New(cmd.OutOrStdout())

	art, err := artifact.Load(cfg.Artifact.Dir)
	if err != nil {
		return err
	}

	info := artifactInfo{
		Meta:          art.Meta,
		ReadableBytes: statSize(cfg.ReadableArtifactPath()),
		CompactBytes:  statSize(cfg.CompactArtifactPath()),
	}

	if jsonOut {
		return out.JSON(info)
	}

	out.Printf("artifact %s", cfg.Artifact.Dir)
	out.Field("generated", info.CreatedAt.Format(time.RFC3339))
	out.Field("snapshot", info.Version)
	out.Field("sources", fmt.Sprintf("%v", info.SourceKeys))
	for _, key := range slices.Sorted(maps.Keys(info.SourceCommits)) {
		out.Field("commit "+key, info.SourceCommits[key])
	}
	out.Field("documents", info.DocumentCount)
	out.Field("vectors", info.VectorCount)
	if info.EmbedModel != "" {
		out.Field("embed model", info.EmbedModel)
	}
	if info.CrossRefStats != nil {
		out.Field("open changes", info.CrossRefStats.OpenCount)
		out.Field("crossref docs", info.CrossRefStats.DocumentCount)
	}
	out.Field("readable bytes", info.ReadableBytes)
	out.Field("compact bytes", info.CompactBytes)
	return nil
}

func statSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
