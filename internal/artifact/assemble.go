package artifact

import (
	"fmt"
	"time"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/textindex"
)

// Assemble builds the inverted text index over the documents, attaches
// the vector map, and validates the result. vectors may be nil for a
// keyword-only artifact; commits maps source keys to the revisions
// their files were read at. A validation failure is fatal; no partial
// artifact is returned.
func Assemble(docs []Document, vectors map[string][]float32, embedModel string, commits map[string]string) (*Artifact, error) {
	ix := textindex.New()
	sourceKeys := make([]string, 0, 4)
	seenSources := make(map[string]bool)
	refNumbers := make(map[int]bool)
	refDocs := 0

	for _, doc := range docs {
		err := ix.Add(textindex.Fields{
			ID:        doc.ID,
			Title:     doc.Title,
			Path:      doc.Path,
			SourceKey: doc.SourceKey,
			Language:  doc.Language,
			Content:   doc.Content,
		})
		if err != nil {
			return nil, err
		}
		if !seenSources[doc.SourceKey] {
			seenSources[doc.SourceKey] = true
			sourceKeys = append(sourceKeys, doc.SourceKey)
		}
		if doc.CrossRef != nil {
			refNumbers[doc.CrossRef.Number] = true
			refDocs++
		}
	}

	var refStats *CrossRefStats
	if refDocs > 0 {
		refStats = &CrossRefStats{OpenCount: len(refNumbers), DocumentCount: refDocs}
	}

	blob, err := ix.Serialize()
	if err != nil {
		return nil, err
	}

	art := &Artifact{
		Meta: Meta{
			Version:       Version,
			CreatedAt:     time.Now().UTC(),
			SourceKeys:    sourceKeys,
			SourceCommits: commits,
			DocumentCount: len(docs),
			VectorCount:   len(vectors),
			EmbedModel:    embedModel,
			CrossRefStats: refStats,
		},
		Docs:      docs,
		TextIndex: blob,
		Vectors:   vectors,
	}

	if err := Validate(art); err != nil {
		return nil, err
	}
	return art, nil
}

// Validate checks the artifact's structural invariants: unique non-empty
// ids, non-empty content, referential integrity between docs, text
// index, and vector map. Violations are fatal structural errors.
func Validate(art *Artifact) error {
	ids := make(map[string]bool, len(art.Docs))
	for _, doc := range art.Docs {
		if doc.ID == "" {
			return kberr.Structural(kberr.ErrCodeIndexInconsistent, "document with empty id")
		}
		if ids[doc.ID] {
			return kberr.Structural(kberr.ErrCodeIndexInconsistent,
				fmt.Sprintf("duplicate document id %q", doc.ID))
		}
		ids[doc.ID] = true
		if doc.Content == "" {
			return kberr.Structural(kberr.ErrCodeIndexInconsistent,
				fmt.Sprintf("document %q has empty content", doc.ID))
		}
	}

	ix, err := textindex.Load(art.TextIndex)
	if err != nil {
		return err
	}
	indexed := ix.DocIDs()
	if len(indexed) != len(art.Docs) {
		return kberr.Structural(kberr.ErrCodeIndexInconsistent,
			fmt.Sprintf("text index holds %d documents, artifact holds %d",
				len(indexed), len(art.Docs)))
	}
	for _, id := range indexed {
		if !ids[id] {
			return kberr.Structural(kberr.ErrCodeIndexInconsistent,
				fmt.Sprintf("text index references unknown document %q", id))
		}
	}

	for id := range art.Vectors {
		if !ids[id] {
			return kberr.Structural(kberr.ErrCodeVectorOrphan,
				fmt.Sprintf("vector for unknown document %q", id))
		}
	}

	if art.Meta.DocumentCount != len(art.Docs) {
		return kberr.Structural(kberr.ErrCodeIndexInconsistent,
			fmt.Sprintf("meta document count %d, actual %d",
				art.Meta.DocumentCount, len(art.Docs)))
	}

	return nil
}
