package domainerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndHasCode(t *testing.T) {
	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeNotFound, "hotspot missing")
		outer := Wrap(inner, CodeConfiguration, "presence check")

		assert.True(t, HasCode(outer, CodeConfiguration))
		assert.False(t, HasCode(outer, CodeNotFound))
		assert.Equal(t, CodeConfiguration, CodeOf(outer))
	})

	t.Run("sentinel survives wrapping", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := Wrap(sentinel, CodeUnavailable, "collaborator down")

		require.Error(t, err)
		assert.True(t, Is(err, sentinel))
		assert.Equal(t, "collaborator down: boom", err.Error())
	})

	t.Run("plain errors map to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:         http.StatusBadRequest,
		CodeConflict:           http.StatusConflict,
		CodeComplianceDenied:   http.StatusForbidden,
		CodeVerificationFailed: http.StatusUnprocessableEntity,
		CodeFeatureDisabled:    http.StatusServiceUnavailable,
		CodeConfiguration:      http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, ToHTTPStatus(code), code)
	}
}
