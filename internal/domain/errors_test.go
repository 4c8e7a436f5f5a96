package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorMessage(t *testing.T) {
	plain := NewDomainError(ErrCodeValidation, "bad input")
	assert.Equal(t, "[VALIDATION_ERROR] bad input", plain.Error())

	cause := errors.New("dial timeout")
	wrapped := NewDomainErrorWithCause(ErrCodeBackend, "store unreachable", cause)
	assert.Equal(t, "[BACKEND_ERROR] store unreachable: dial timeout", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, CodeOf(ErrEmptyQuery))
	assert.Equal(t, ErrCodeNotFound, CodeOf(ErrCollectionNotFound))
	assert.Equal(t, ErrCodeBackend, CodeOf(Backendf(nil, "boom")))
	assert.Equal(t, ErrCodeInternalError, CodeOf(errors.New("plain")))

	// wrapped domain errors keep their code
	wrapped := fmt.Errorf("search failed: %w", ErrEmptyQuery)
	assert.Equal(t, ErrCodeValidation, CodeOf(wrapped))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsValidation(ErrInvalidBatchSize))
	assert.True(t, IsNotFound(ErrCollectionNotFound))
	assert.True(t, IsBackend(Backendf(nil, "boom")))
	assert.False(t, IsValidation(errors.New("plain")))
}
