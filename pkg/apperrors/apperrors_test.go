package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validationf("bad")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflictf("taken")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(DependencyInUsef("in use")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("missing")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Internalf("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestIsKind(t *testing.T) {
	err := Conflictf("Gift %s already issued", "g1")
	assert.True(t, IsKind(err, Conflict))
	assert.False(t, IsKind(err, NotFound))
	assert.False(t, IsKind(errors.New("plain"), Conflict))
	assert.False(t, IsKind(nil, Conflict))
}

func TestWrappedError(t *testing.T) {
	inner := NotFoundf("Gift %s not found", "g1")
	wrapped := fmt.Errorf("handling request: %w", inner)
	assert.True(t, IsKind(wrapped, NotFound))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestErrorMessage(t *testing.T) {
	err := Validationf("weight must be positive, got %v", -1.5)
	assert.Equal(t, "weight must be positive, got -1.5", err.Error())
}
