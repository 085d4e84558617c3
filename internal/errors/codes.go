// Package errors provides structured error handling for the knowledge base.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, artifact)
//   - 3XX: Transient errors (source/embedding backends)
//   - 4XX: Validation errors (malformed queries and inputs)
//   - 5XX: Structural errors (artifact integrity, fatal)
//   - 6XX: Unavailable errors (feature prerequisite missing)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and artifact I/O errors.
	CategoryIO Category = "IO"
	// CategoryTransient indicates recoverable per-unit failures; the
	// pipeline logs and skips them.
	CategoryTransient Category = "TRANSIENT"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryStructural indicates artifact integrity violations.
	// These are fatal to a build or load, never silently patched.
	CategoryStructural Category = "STRUCTURAL"
	// CategoryUnavailable indicates a feature was requested but its
	// prerequisite data is absent (e.g. semantic search without vectors).
	CategoryUnavailable Category = "UNAVAILABLE"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileUnreadable   = "ERR_201_FILE_UNREADABLE"
	ErrCodeArtifactNotFound = "ERR_202_ARTIFACT_NOT_FOUND"
	ErrCodeArtifactWrite    = "ERR_203_ARTIFACT_WRITE"
	ErrCodeBuildLocked      = "ERR_204_BUILD_LOCKED"

	// Transient errors (300-399)
	ErrCodeSourceFetch   = "ERR_301_SOURCE_FETCH"
	ErrCodeCrossRefFetch = "ERR_302_CROSSREF_FETCH"
	ErrCodeEmbeddingCall = "ERR_303_EMBEDDING_CALL"

	// Validation errors (400-499)
	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeQueryTooShort = "ERR_402_QUERY_TOO_SHORT"
	ErrCodeInvalidMode   = "ERR_403_INVALID_MODE"

	// Structural errors (500-599, fatal)
	ErrCodeArtifactCorrupt   = "ERR_501_ARTIFACT_CORRUPT"
	ErrCodeArtifactTooLarge  = "ERR_502_ARTIFACT_TOO_LARGE"
	ErrCodeIndexInconsistent = "ERR_503_INDEX_INCONSISTENT"
	ErrCodeVectorOrphan      = "ERR_504_VECTOR_ORPHAN"

	// Unavailable errors (600-699)
	ErrCodeSemanticUnavailable = "ERR_601_SEMANTIC_UNAVAILABLE"
	ErrCodeNotIndexed          = "ERR_602_NOT_INDEXED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryStructural
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryTransient
	case '4':
		return CategoryValidation
	case '5':
		return CategoryStructural
	case '6':
		return CategoryUnavailable
	default:
		return CategoryStructural
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryStructural:
		return SeverityFatal
	case CategoryTransient:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode checks if an error code represents a retryable failure.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeSourceFetch, ErrCodeCrossRefFetch, ErrCodeEmbeddingCall:
		return true
	default:
		return false
	}
}
