package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	base := Conflict(ResourceFaculty, "faculty already has an active assignment")
	wrapped := fmt.Errorf("assign: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.Equal(t, ResourceFaculty, ResourceOf(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.False(t, Is(nil, KindInternal))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("deadline")
	err := Unavailable("store timeout", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store timeout: deadline", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindInvalidState: http.StatusBadRequest,
		KindForbidden:    http.StatusForbidden,
		KindConflict:     http.StatusConflict,
		KindNotFound:     http.StatusNotFound,
		KindUnavailable:  http.StatusServiceUnavailable,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), string(kind))
	}
}
