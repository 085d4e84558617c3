package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
		severity Severity
	}{
		{"validation", ErrCodeQueryTooShort, CategoryValidation, SeverityError},
		{"structural is fatal", ErrCodeArtifactTooLarge, CategoryStructural, SeverityFatal},
		{"unavailable", ErrCodeSemanticUnavailable, CategoryUnavailable, SeverityError},
		{"transient is warning", ErrCodeSourceFetch, CategoryTransient, SeverityWarning},
		{"config", ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{"io", ErrCodeArtifactNotFound, CategoryIO, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestKBError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeQueryTooShort, "query must contain at least 2 tokens", nil)
	assert.Equal(t, "[ERR_402_QUERY_TOO_SHORT] query must contain at least 2 tokens", err.Error())
}

func TestKBError_UnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeEmbeddingCall, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, New(ErrCodeEmbeddingCall, "other message", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeSourceFetch, "other code", nil)))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeSourceFetch, nil))
}

func TestCategoryPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("bad input")))
	assert.True(t, IsUnavailable(Unavailable(ErrCodeSemanticUnavailable, "no vectors")))
	assert.True(t, IsStructural(Structural(ErrCodeIndexInconsistent, "orphan id")))
	assert.True(t, IsFatal(Structural(ErrCodeArtifactCorrupt, "bad artifact")))

	plain := fmt.Errorf("plain")
	assert.False(t, IsValidation(plain))
	assert.False(t, IsFatal(plain))
	assert.False(t, IsRetryable(plain))
}

func TestRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Transient(ErrCodeSourceFetch, fmt.Errorf("timeout"))))
	assert.False(t, IsRetryable(Validation("nope")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeFileUnreadable, "cannot read", nil).
		WithDetail("path", "docs/readme.md").
		WithDetail("source", "acme/widgets")

	assert.Equal(t, "docs/readme.md", err.Details["path"])
	assert.Equal(t, "acme/widgets", err.Details["source"])
}
