package redact

import "regexp"

// Category classifies what kind of secret a rule detects.
type Category string

const (
	CategoryAccessToken Category = "access_token"
	CategoryKeyMaterial Category = "key_material"
	CategoryCredential  Category = "credential_assignment"
	CategoryHighEntropy Category = "high_entropy"
)

// Rule is one structural secret pattern. New patterns are added to the
// table, not to code.
type Rule struct {
	// Name identifies the rule in findings and the build report.
	Name string
	// Category groups related rules for reporting.
	Category Category
	// Pattern matches the secret. If the pattern has a capture group,
	// only group 1 is replaced; otherwise the whole match is.
	Pattern *regexp.Regexp
}

// defaultRules covers the common structural token formats. Order matters
// only for finding attribution; replacement is in-place either way.
var defaultRules = []Rule{
	{
		Name:     "aws-access-key-id",
		Category: CategoryAccessToken,
		Pattern:  regexp.MustCompile(`\b(AKIA[0-9A-Z]{16})\b`),
	},
	{
		Name:     "aws-secret-key",
		Category: CategoryCredential,
		Pattern:  regexp.MustCompile(`(?i)aws[_-]?secret[_-]?(?:access[_-]?)?key\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	},
	{
		Name:     "github-token",
		Category: CategoryAccessToken,
		Pattern:  regexp.MustCompile(`\b(gh[pousr]_[A-Za-z0-9]{36,255})\b`),
	},
	{
		Name:     "gitlab-token",
		Category: CategoryAccessToken,
		Pattern:  regexp.MustCompile(`\b(glpat-[A-Za-z0-9\-_]{20,})\b`),
	},
	{
		Name:     "stripe-key",
		Category: CategoryAccessToken,
		Pattern:  regexp.MustCompile(`\b((?:sk|pk|rk)_(?:live|test)_[A-Za-z0-9]{24,})\b`),
	},
	{
		Name:     "slack-token",
		Category: CategoryAccessToken,
		Pattern:  regexp.MustCompile(`\b(xox[baprs]-[A-Za-z0-9\-]{10,})\b`),
	},
	{
		Name:     "openai-key",
		Category: CategoryAccessToken,
		Pattern:  regexp.MustCompile(`\b(sk-[A-Za-z0-9]{20}T3BlbkFJ[A-Za-z0-9]{20})\b`),
	},
	{
		Name:     "private-key-block",
		Category: CategoryKeyMaterial,
		Pattern:  regexp.MustCompile(`(?s)(-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----.*?-----END (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----)`),
	},
	{
		Name:     "jwt",
		Category: CategoryAccessToken,
		Pattern:  regexp.MustCompile(`\b(eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,})\b`),
	},
	{
		Name:     "credential-assignment",
		Category: CategoryCredential,
		Pattern:  regexp.MustCompile(`(?i)(?:password|passwd|pwd|secret|api[_-]?key|auth[_-]?token|access[_-]?token)\s*[:=]\s*["']([^"'\s]{8,})["']`),
	},
	{
		Name:     "bearer-header",
		Category: CategoryCredential,
		Pattern:  regexp.MustCompile(`(?i)authorization:\s*bearer\s+([A-Za-z0-9._\-]{16,})`),
	},
	{
		Name:     "connection-string",
		Category: CategoryCredential,
		Pattern:  regexp.MustCompile(`(?i)\b[a-z][a-z0-9+]*://[^:/\s]+:([^@\s]{6,})@`),
	},
}
