// Package textindex implements the inverted text index over document
// fields. Unlike a disk-backed search engine, the whole index serializes
// into one opaque blob inside the knowledge base artifact and reloads
// without a rebuild.
//
// Scoring is BM25 over weighted term frequencies. Field weights are a
// hard contract: title x10, path x5, sourceKey x3, language x2,
// content x1.
package textindex

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
)

// Relative field weights applied to term frequencies at index time.
const (
	WeightTitle     = 10.0
	WeightPath      = 5.0
	WeightSourceKey = 3.0
	WeightLanguage  = 2.0
	WeightContent   = 1.0
)

// BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// snapshotVersion guards blob compatibility across releases.
const snapshotVersion = 1

// Fields is the indexable view of one document.
type Fields struct {
	ID        string
	Title     string
	Path      string
	SourceKey string
	Language  string
	Content   string
}

// Result is one scored hit from a ranked query.
type Result struct {
	DocID string
	Score float64
}

// Index is the in-memory inverted index. Build with Add calls, then
// query with Search; Serialize captures the whole structure.
type Index struct {
	// postings maps term -> docID -> weighted term frequency.
	postings map[string]map[string]float64
	// lengths maps docID -> weighted document length.
	lengths map[string]float64
	// order records insertion order; it is the native tie-break order
	// for equal scores.
	order    []string
	orderIdx map[string]int

	avgLength float64
}

// New creates an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string]map[string]float64),
		lengths:  make(map[string]float64),
		orderIdx: make(map[string]int),
	}
}

// Add indexes one document. IDs must be unique and non-empty.
func (ix *Index) Add(f Fields) error {
	if f.ID == "" {
		return kberr.Validation("document id must not be empty")
	}
	if _, dup := ix.orderIdx[f.ID]; dup {
		return kberr.Structural(kberr.ErrCodeIndexInconsistent,
			fmt.Sprintf("duplicate document id %q", f.ID))
	}

	length := 0.0
	add := func(text string, weight float64) {
		for _, term := range Tokenize(text) {
			docs := ix.postings[term]
			if docs == nil {
				docs = make(map[string]float64)
				ix.postings[term] = docs
			}
			docs[f.ID] += weight
			length += weight
		}
	}

	add(f.Title, WeightTitle)
	add(f.Path, WeightPath)
	add(f.SourceKey, WeightSourceKey)
	add(f.Language, WeightLanguage)
	add(f.Content, WeightContent)

	ix.orderIdx[f.ID] = len(ix.order)
	ix.order = append(ix.order, f.ID)
	ix.lengths[f.ID] = length
	ix.recomputeAvgLength()

	return nil
}

func (ix *Index) recomputeAvgLength() {
	if len(ix.order) == 0 {
		ix.avgLength = 0
		return
	}
	total := 0.0
	for _, l := range ix.lengths {
		total += l
	}
	ix.avgLength = total / float64(len(ix.order))
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.order)
}

// DocIDs returns all indexed document ids in insertion order.
func (ix *Index) DocIDs() []string {
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

// Search runs a ranked BM25 query. Results are sorted by descending
// score; equal scores keep the index's native (insertion) order.
// limit <= 0 returns all hits.
func (ix *Index) Search(query string, limit int) []Result {
	terms := Tokenize(query)
	if len(terms) == 0 || len(ix.order) == 0 {
		return nil
	}

	n := float64(len(ix.order))
	scores := make(map[string]float64)

	for _, term := range terms {
		docs, ok := ix.postings[term]
		if !ok {
			continue
		}
		df := float64(len(docs))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))

		for docID, tf := range docs {
			dl := ix.lengths[docID]
			norm := bm25K1 * (1 - bm25B + bm25B*dl/ix.avgLength)
			scores[docID] += idf * tf * (bm25K1 + 1) / (tf + norm)
		}
	}

	results := make([]Result, 0, len(scores))
	for docID, score := range scores {
		results = append(results, Result{DocID: docID, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return ix.orderIdx[results[i].DocID] < ix.orderIdx[results[j].DocID]
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// snapshot is the serialized index layout.
type snapshot struct {
	Version   int                           `json:"version"`
	Order     []string                      `json:"order"`
	Postings  map[string]map[string]float64 `json:"postings"`
	Lengths   map[string]float64            `json:"lengths"`
	AvgLength float64                       `json:"avg_length"`
}

// Serialize captures the index into an opaque blob that Load restores
// without re-indexing.
func (ix *Index) Serialize() ([]byte, error) {
	blob, err := json.Marshal(snapshot{
		Version:   snapshotVersion,
		Order:     ix.order,
		Postings:  ix.postings,
		Lengths:   ix.lengths,
		AvgLength: ix.avgLength,
	})
	if err != nil {
		return nil, kberr.Wrap(kberr.ErrCodeArtifactWrite, err)
	}
	return blob, nil
}

// Load restores an index from a Serialize blob.
func Load(blob []byte) (*Index, error) {
	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, kberr.Structural(kberr.ErrCodeArtifactCorrupt,
			fmt.Sprintf("text index blob: %v", err))
	}
	if snap.Version != snapshotVersion {
		return nil, kberr.Structural(kberr.ErrCodeArtifactCorrupt,
			fmt.Sprintf("text index version %d, expected %d", snap.Version, snapshotVersion))
	}

	ix := &Index{
		postings:  snap.Postings,
		lengths:   snap.Lengths,
		order:     snap.Order,
		orderIdx:  make(map[string]int, len(snap.Order)),
		avgLength: snap.AvgLength,
	}
	if ix.postings == nil {
		ix.postings = make(map[string]map[string]float64)
	}
	if ix.lengths == nil {
		ix.lengths = make(map[string]float64)
	}
	for i, id := range snap.Order {
		ix.orderIdx[id] = i
	}
	return ix, nil
}
