package errors

import (
	"database/sql"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, "letter request not found")
	wrapped := fmt.Errorf("handler: %w", typed)

	got := FromError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "letter request not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	require.NotNil(t, got)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestClonedErrorsMatchTemplate(t *testing.T) {
	clone := Clone(ErrConflict, "letter request already processed")
	assert.True(t, stdErrors.Is(clone, ErrConflict))
	assert.False(t, stdErrors.Is(clone, ErrNotFound))
	assert.Equal(t, "conflict", ErrConflict.Message)
}

func TestInternalAndValidationHelpers(t *testing.T) {
	cause := stdErrors.New("boom")

	internal := Internal(cause, "failed to list letter requests")
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "failed to list letter requests: boom", internal.Error())

	validation := Validation(cause, "invalid payload")
	assert.Equal(t, ErrValidation.Code, validation.Code)
	assert.ErrorIs(t, validation, cause)
}
