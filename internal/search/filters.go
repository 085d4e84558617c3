package search

import (
	"path/filepath"
	"strings"
)

// CrossRefWildcard matches any document carrying a cross-reference,
// regardless of its state.
const CrossRefWildcard = "*"

// applyFilters keeps the hits passing every supplied predicate,
// preserving order. Exclusion is silent.
func applyFilters(hits []Result, f Filters) []Result {
	if f == (Filters{}) {
		return hits
	}

	kept := hits[:0:0]
	for _, hit := range hits {
		if matches(hit, f) {
			kept = append(kept, hit)
		}
	}
	return kept
}

func matches(hit Result, f Filters) bool {
	doc := hit.Doc

	if f.SourceKey != "" && doc.SourceKey != f.SourceKey {
		return false
	}
	if f.Language != "" && doc.Language != f.Language {
		return false
	}
	if f.Tag != "" && !containsTag(doc.Tags, f.Tag) {
		return false
	}
	if f.CrossRef != "" {
		if doc.CrossRef == nil {
			return false
		}
		if f.CrossRef != CrossRefWildcard && doc.CrossRef.State != f.CrossRef {
			return false
		}
	}
	if f.Extension != "" {
		want := strings.TrimPrefix(strings.ToLower(f.Extension), ".")
		got := strings.TrimPrefix(strings.ToLower(filepath.Ext(doc.Path)), ".")
		if want != got {
			return false
		}
	}
	return true
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
