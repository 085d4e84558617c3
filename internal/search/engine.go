// Package search answers queries against the persisted artifact in
// keyword, semantic, and hybrid modes.
//
// The artifact is loaded lazily and memoized; concurrent first callers
// share one load via singleflight. After a rebuild, Reset discards the
// memoized snapshot so the next query picks up the new artifact.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/artifact"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/embed"
	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/textindex"
)

// Mode selects the retrieval strategy.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// ParseMode validates a mode string. Empty defaults to hybrid.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeHybrid, nil
	case ModeKeyword, ModeSemantic, ModeHybrid:
		return Mode(s), nil
	default:
		return "", kberr.New(kberr.ErrCodeInvalidMode,
			"unknown search mode \""+s+"\" (use keyword, semantic, or hybrid)", nil)
	}
}

// Filters are conjunctive predicates; a candidate failing any supplied
// predicate is excluded silently. Empty fields are not applied.
type Filters struct {
	// SourceKey matches exactly.
	SourceKey string
	// Language matches exactly.
	Language string
	// Tag must be a member of the document's tag set.
	Tag string
	// CrossRef matches the cross-reference state exactly; the wildcard
	// "*" matches any document carrying a cross-reference.
	CrossRef string
	// Extension matches the file extension case-insensitively, with or
	// without the leading dot.
	Extension string
}

// Query is one search invocation.
type Query struct {
	Text    string
	Mode    Mode
	Filters Filters
	// Limit caps the result count; non-positive takes the engine default.
	Limit int
}

// Result is one ranked hit.
type Result struct {
	Doc   artifact.Document `json:"doc"`
	Score float64           `json:"score"`
}

// Engine serves queries over one artifact directory.
type Engine struct {
	dir            string
	vectorizer     *embed.Vectorizer
	keywordWeight  float64
	semanticWeight float64
	maxResults     int
	logger         *slog.Logger

	// load is swappable for tests counting artifact parses.
	load func() (*artifact.Artifact, error)

	group singleflight.Group
	mu    sync.RWMutex
	snap  *snapshot
}

// snapshot is the memoized read-only view of one loaded artifact.
type snapshot struct {
	art *artifact.Artifact
	ix  *textindex.Index
	// byID resolves text index hits back to documents.
	byID map[string]*artifact.Document
}

// Options configures an Engine.
type Options struct {
	// Dir is the artifact directory.
	Dir string
	// Vectorizer embeds queries for semantic retrieval; nil or disabled
	// makes semantic mode unavailable.
	Vectorizer *embed.Vectorizer
	// KeywordWeight and SemanticWeight drive hybrid fusion; non-positive
	// values take the documented defaults.
	KeywordWeight  float64
	SemanticWeight float64
	// MaxResults is the default result cap.
	MaxResults int
	Logger     *slog.Logger
}

// NewEngine creates an Engine. The artifact is not loaded until the
// first query.
func NewEngine(opts Options) *Engine {
	if opts.KeywordWeight <= 0 {
		opts.KeywordWeight = 0.6
	}
	if opts.SemanticWeight <= 0 {
		opts.SemanticWeight = 0.4
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Engine{
		dir:            opts.Dir,
		vectorizer:     opts.Vectorizer,
		keywordWeight:  opts.KeywordWeight,
		semanticWeight: opts.SemanticWeight,
		maxResults:     opts.MaxResults,
		logger:         opts.Logger,
	}
	e.load = func() (*artifact.Artifact, error) { return artifact.Load(e.dir) }
	return e
}

// Search runs one query. Identical snapshot, query, filters, and mode
// yield identical ordered output.
func (e *Engine) Search(ctx context.Context, q Query) ([]Result, error) {
	if len(strings.Fields(q.Text)) < 2 {
		return nil, kberr.New(kberr.ErrCodeQueryTooShort,
			"query needs at least 2 words", nil)
	}
	mode, err := ParseMode(string(q.Mode))
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = e.maxResults
	}

	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	var hits []Result
	switch mode {
	case ModeKeyword:
		hits = e.keyword(snap, q.Text)
	case ModeSemantic:
		hits, err = e.semantic(ctx, snap, q.Text)
		if err != nil {
			return nil, err
		}
	case ModeHybrid:
		hits = e.hybrid(ctx, snap, q.Text)
	}

	hits = applyFilters(hits, q.Filters)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Meta returns the loaded artifact's metadata.
func (e *Engine) Meta() (*artifact.Meta, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return &snap.art.Meta, nil
}

// Reset discards the memoized snapshot; the next query reloads the
// artifact from disk.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.snap = nil
	e.mu.Unlock()
}

// snapshot returns the memoized artifact view, loading it on first use.
// Concurrent first callers collapse into one load.
func (e *Engine) snapshot() (*snapshot, error) {
	e.mu.RLock()
	snap := e.snap
	e.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	v, err, _ := e.group.Do("artifact", func() (any, error) {
		e.mu.RLock()
		cached := e.snap
		e.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		art, err := e.load()
		if err != nil {
			return nil, err
		}
		ix, err := textindex.Load(art.TextIndex)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]*artifact.Document, len(art.Docs))
		for i := range art.Docs {
			byID[art.Docs[i].ID] = &art.Docs[i]
		}

		loaded := &snapshot{art: art, ix: ix, byID: byID}
		e.mu.Lock()
		e.snap = loaded
		e.mu.Unlock()

		e.logger.Info("artifact_loaded",
			slog.Int("documents", len(art.Docs)),
			slog.Int("vectors", len(art.Vectors)))
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

// keyword runs the ranked inverted-index query. Ties keep the index's
// native order.
func (e *Engine) keyword(snap *snapshot, text string) []Result {
	var hits []Result
	for _, hit := range snap.ix.Search(text, 0) {
		doc, ok := snap.byID[hit.DocID]
		if !ok {
			continue
		}
		hits = append(hits, Result{Doc: *doc, Score: hit.Score})
	}
	return hits
}

// semantic scans every document vector linearly with cosine similarity.
// Vectors are unit length, so cosine reduces to a dot product. Ties
// keep original document order.
func (e *Engine) semantic(ctx context.Context, snap *snapshot, text string) ([]Result, error) {
	if len(snap.art.Vectors) == 0 {
		return nil, kberr.Unavailable(kberr.ErrCodeSemanticUnavailable,
			"artifact has no vectors (rebuild with an embedding backend)")
	}

	queryVec, err := e.vectorizer.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	var hits []Result
	for i := range snap.art.Docs {
		doc := &snap.art.Docs[i]
		vec, ok := snap.art.Vectors[doc.ID]
		if !ok {
			continue
		}
		score := dot(queryVec, vec)
		if score <= 0 {
			continue
		}
		hits = append(hits, Result{Doc: *doc, Score: score})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	return hits, nil
}

// hybrid fuses keyword and semantic scores with an order-dependent
// running weighted average. A semantic failure degrades the query to
// keyword-only instead of failing it.
func (e *Engine) hybrid(ctx context.Context, snap *snapshot, text string) []Result {
	kwHits := e.keyword(snap, text)

	semHits, err := e.semantic(ctx, snap, text)
	if err != nil {
		semHits = nil
	}

	fused := fuse(kwHits, semHits, e.keywordWeight, e.semanticWeight)

	hits := make([]Result, 0, len(fused))
	for _, f := range fused {
		doc, ok := snap.byID[f.id]
		if !ok {
			continue
		}
		hits = append(hits, Result{Doc: *doc, Score: f.score})
	}
	return hits
}

type fusedScore struct {
	id    string
	score float64
}

// fuse combines the two ranked lists. Keyword hits enter the
// accumulator first at their weight; each semantic hit then either
// enters at its weight or recombines with the existing entry as
// (existing + incoming*weight) / (1 + weight). A running weighted
// average, not a sum; summing changes ranking outcomes. Ties keep
// accumulator insertion order.
func fuse(keyword, semantic []Result, keywordWeight, semanticWeight float64) []fusedScore {
	scores := make(map[string]float64, len(keyword)+len(semantic))
	order := make([]string, 0, len(keyword)+len(semantic))

	insert := func(id string, score, weight float64) {
		if existing, ok := scores[id]; ok {
			scores[id] = (existing + score*weight) / (1 + weight)
			return
		}
		scores[id] = score * weight
		order = append(order, id)
	}

	for _, hit := range keyword {
		insert(hit.Doc.ID, hit.Score, keywordWeight)
	}
	for _, hit := range semantic {
		insert(hit.Doc.ID, hit.Score, semanticWeight)
	}

	fused := make([]fusedScore, len(order))
	for i, id := range order {
		fused[i] = fusedScore{id: id, score: scores[id]}
	}
	sort.SliceStable(fused, func(a, b int) bool { return fused[a].score > fused[b].score })
	return fused
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
