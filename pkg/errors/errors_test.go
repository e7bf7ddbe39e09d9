package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeAndMatches(t *testing.T) {
	clone := Clone(ErrInvalidTransition, "leave request already approved")

	assert.Equal(t, "leave request already approved", clone.Message)
	assert.Equal(t, http.StatusConflict, clone.Status)
	assert.True(t, errors.Is(clone, ErrInvalidTransition))
	assert.False(t, errors.Is(clone, ErrConflict))
	assert.Equal(t, "invalid status transition", ErrInvalidTransition.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestFromErrorUnwrapsTyped(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Clone(ErrNotFound, "course not found"))

	err := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "course not found", err.Message)
}

func TestWrapFormatsCause(t *testing.T) {
	err := Wrap(fmt.Errorf("timeout"), ErrGenerationFailed.Code, ErrGenerationFailed.Status, "generation failed")

	assert.Equal(t, "generation failed: timeout", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "timeout")
}
