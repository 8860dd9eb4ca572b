package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nilgate/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "redis failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("verification failure includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeVerificationFailed, "post must tag @nilbx"))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body ErrorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "verification_failed", body.Error)
		assert.Equal(t, "post must tag @nilbx", body.Description)
	})

	t.Run("details are itemized", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteErrorWithDetails(w, dErrors.New(dErrors.CodeComplianceDenied, "deal not permitted"),
			[]string{"consent required", "school approval required"})

		require.Equal(t, http.StatusForbidden, w.Code)
		var body ErrorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Len(t, body.Details, 2)
	})
}

type sampleRequest struct {
	Name string `json:"name"`
}

func (p *sampleRequest) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("rejects malformed JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

		_, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("runs validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  "}`))

		_, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-2")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns decoded request", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"hotspot"}`))

		req, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-3")
		require.True(t, ok)
		assert.Equal(t, "hotspot", req.Name)
	})
}
