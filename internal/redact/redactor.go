// Package redact detects and masks secret-like substrings in raw text
// before it enters the knowledge base.
//
// Detection is a fixed rule table of structural token formats plus one
// entropy-based catch-all for opaque high-entropy tokens. Redaction is
// idempotent and never fails: worst case the input is returned unchanged
// with no findings.
package redact

import (
	"strings"
)

// Placeholder replaces every detected secret in place.
const Placeholder = "[REDACTED]"

// Finding records one detected secret occurrence.
type Finding struct {
	// Rule is the name of the rule that matched ("high-entropy-token"
	// for the catch-all).
	Rule string
	// Category groups the finding for the build report.
	Category Category
}

// Redactor masks secrets in text using the rule table and an entropy scan.
type Redactor struct {
	rules            []Rule
	entropyThreshold float64
	minTokenLength   int
	enabled          bool
}

// Options configures a Redactor. Zero values take the documented defaults.
type Options struct {
	// EntropyThreshold is the minimum Shannon entropy (bits per char)
	// for the catch-all rule (default 3.5).
	EntropyThreshold float64
	// MinTokenLength is the minimum token length the catch-all
	// considers (default 16).
	MinTokenLength int
	// Disabled turns redaction off entirely.
	Disabled bool
}

// New creates a Redactor with the default rule table.
func New(opts Options) *Redactor {
	if opts.EntropyThreshold <= 0 {
		opts.EntropyThreshold = 3.5
	}
	if opts.MinTokenLength <= 0 {
		opts.MinTokenLength = 16
	}
	return &Redactor{
		rules:            defaultRules,
		entropyThreshold: opts.EntropyThreshold,
		minTokenLength:   opts.MinTokenLength,
		enabled:          !opts.Disabled,
	}
}

// Redact masks all detected secrets in text. It returns the redacted text
// and one finding per masked occurrence. Applying Redact to its own output
// yields the same text and no new findings.
func (r *Redactor) Redact(text string) (string, []Finding) {
	if !r.enabled || text == "" {
		return text, nil
	}

	var findings []Finding

	for _, rule := range r.rules {
		text = rule.Pattern.ReplaceAllStringFunc(text, func(match string) string {
			loc := rule.Pattern.FindStringSubmatchIndex(match)
			if loc == nil || len(loc) < 4 || loc[2] < 0 {
				return match
			}
			secret := match[loc[2]:loc[3]]
			if secret == Placeholder {
				// Already masked by an earlier run.
				return match
			}
			findings = append(findings, Finding{Rule: rule.Name, Category: rule.Category})
			return match[:loc[2]] + Placeholder + match[loc[3]:]
		})
	}

	text, entropyFindings := r.redactHighEntropy(text)
	findings = append(findings, entropyFindings...)

	return text, findings
}

// redactHighEntropy flags whitespace-delimited tokens whose entropy and
// length exceed the thresholds, replacing every occurrence of the exact
// token.
func (r *Redactor) redactHighEntropy(text string) (string, []Finding) {
	var findings []Finding
	seen := make(map[string]bool)

	for _, field := range strings.Fields(text) {
		token := strings.Trim(field, `"'` + "`,;:()[]{}<>")
		if len(token) < r.minTokenLength || seen[token] {
			continue
		}
		if strings.Contains(token, Placeholder) {
			continue
		}
		if ShannonEntropy(token) < r.entropyThreshold {
			continue
		}
		seen[token] = true

		count := strings.Count(text, token)
		text = strings.ReplaceAll(text, token, Placeholder)
		for i := 0; i < count; i++ {
			findings = append(findings, Finding{Rule: "high-entropy-token", Category: CategoryHighEntropy})
		}
	}

	return text, findings
}

// Summary aggregates findings into per-category counts for the build report.
func Summary(findings []Finding) map[Category]int {
	if len(findings) == 0 {
		return nil
	}
	counts := make(map[Category]int)
	for _, f := range findings {
		counts[f.Category]++
	}
	return counts
}
