package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPolicy_Strict(t *testing.T) {
	p := NewStatusPolicy("strict")

	want := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindNotFound:         http.StatusNotFound,
		KindConflict:         http.StatusConflict,
		KindUnauthorized:     http.StatusUnauthorized,
		KindForbidden:        http.StatusForbidden,
		KindStore:            http.StatusInternalServerError,
		KindInternal:         http.StatusInternalServerError,
		KindUnsupportedMedia: http.StatusUnsupportedMediaType,
		KindTooLarge:         http.StatusRequestEntityTooLarge,
	}
	for k, status := range want {
		assert.Equal(t, status, p.Status(k), "kind=%s", k)
	}
	assert.Equal(t, http.StatusCreated, p.CreatedStatus())
}

func TestStatusPolicy_CompatCollapsesToNotFound(t *testing.T) {
	p := NewStatusPolicy("compat")

	want := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindNotFound:         http.StatusNotFound,
		KindConflict:         http.StatusNotFound,
		KindUnauthorized:     http.StatusNotFound,
		KindForbidden:        http.StatusNotFound,
		KindStore:            http.StatusNotFound,
		KindInternal:         http.StatusInternalServerError,
		KindUnsupportedMedia: http.StatusUnsupportedMediaType,
		KindTooLarge:         http.StatusRequestEntityTooLarge,
	}
	for k, status := range want {
		assert.Equal(t, status, p.Status(k), "kind=%s", k)
	}
	assert.Equal(t, http.StatusOK, p.CreatedStatus())
}

func TestNewStatusPolicy_UnknownModeIsStrict(t *testing.T) {
	assert.Equal(t, ModeStrict, NewStatusPolicy("").Mode)
	assert.Equal(t, ModeStrict, NewStatusPolicy("lenient").Mode)
}

func TestFrom(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("list users: %w", Store("Could not list users", cause))

	e := From(wrapped)
	assert.Equal(t, KindStore, e.Kind)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "Could not list users: connection refused", e.Error())

	plain := From(errors.New("boom"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, "internal_error", plain.Kind.Code())
}
