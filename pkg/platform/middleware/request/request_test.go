package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"nilgate/pkg/requestcontext"
)

func TestContext(t *testing.T) {
	var gotRequestID, gotClaimant string
	h := Context(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = requestcontext.RequestID(r.Context())
		gotClaimant = requestcontext.ClaimantID(r.Context())
	}))

	t.Run("reuses incoming request id and claimant", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HeaderRequestID, "abc-123")
		r.Header.Set(HeaderClaimantID, "athlete-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, "abc-123", gotRequestID)
		assert.Equal(t, "athlete-1", gotClaimant)
		assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	})

	t.Run("generates request id when missing or oversized", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLen+1))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Len(t, gotRequestID, 36)
		assert.Empty(t, gotClaimant)
	})
}
