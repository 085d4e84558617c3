package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/output"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	mode      string
	limit     int
	sourceKey string
	language  string
	tag       string
	crossRef  string
	extension string
	jsonOut   bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search runs a query against the built artifact.

Modes: keyword (inverted index), semantic (vector similarity), hybrid
(weighted fusion of both; degrades to keyword when vectors are absent).

Examples:
  repokb search "authentication middleware"
  repokb search "setup instructions" --mode keyword --language markdown
  repokb search "error handling" --crossref open
  repokb search "retry policy" --mode semantic --limit 5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "hybrid", "Search mode: keyword, semantic, hybrid")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().StringVar(&opts.sourceKey, "source", "", "Filter by source key (owner/name)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Filter by language (e.g. go, markdown)")
	cmd.Flags().StringVarP(&opts.tag, "tag", "t", "", "Filter by tag")
	cmd.Flags().StringVar(&opts.crossRef, "crossref", "", "Filter by cross-reference state (\"*\" for any)")
	cmd.Flags().StringVar(&opts.extension, "ext", "", "Filter by file extension")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := output.New(cmd.OutOrStdout())

	mode, err := search.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	engine := search.NewEngine(search.Options{
		Dir:            cfg.Artifact.Dir,
		Vectorizer:     newVectorizer(ctx, cfg),
		KeywordWeight:  cfg.Search.KeywordWeight,
		SemanticWeight: cfg.Search.SemanticWeight,
		MaxResults:     cfg.Search.MaxResults,
		Logger:         slog.Default(),
	})

	hits, err := engine.Search(ctx, search.Query{
		Text:  query,
		Mode:  mode,
		Limit: opts.limit,
		Filters: search.Filters{
			SourceKey: opts.sourceKey,
			Language:  opts.language,
			Tag:       opts.tag,
			CrossRef:  opts.crossRef,
			Extension: opts.extension,
		},
	})
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return out.JSON(hits)
	}
	if len(hits) == 0 {
		out.Warnf("no results for %q", query)
		return nil
	}

	for i, hit := range hits {
		location := fmt.Sprintf("%s %s:%d-%d", hit.Doc.SourceKey, hit.Doc.Path, hit.Doc.StartLine, hit.Doc.EndLine)
		out.Hit(i+1, hit.Score, hit.Doc.Title, location, snippet(hit.Doc.Content))
		if hit.Doc.CrossRef != nil {
			out.Printf("      open change #%d: %s", hit.Doc.CrossRef.Number, hit.Doc.CrossRef.Title)
		}
	}
	return nil
}

// snippetLines bounds the content preview per hit.
const snippetLines = 3

func snippet(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > snippetLines {
		lines = append(lines[:snippetLines:snippetLines], "...")
	}
	return strings.Join(lines, "\n")
}
