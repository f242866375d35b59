package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssert(t *testing.T) {
	assert.NoError(t, Assert(true, http.StatusConflict, "never"))

	err := Assert(false, http.StatusConflict, "category has payments")
	assert.EqualError(t, err, "category has payments")
	assert.Equal(t, http.StatusConflict, StatusOf(err))
	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrPermissionDenied, http.StatusForbidden, "you do not have permission")
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "you do not have permission", err.Error())
	assert.Contains(t, err.Stack(), "permission denied")
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal(errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "internal server error", err.Error())
	assert.Contains(t, err.Stack(), "connection refused")
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.False(t, IsStatus(errors.New("boom"), http.StatusNotFound))
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("student not found")))
	assert.Equal(t, "Bad Request", (&AppError{Status: http.StatusBadRequest}).Error())
}
