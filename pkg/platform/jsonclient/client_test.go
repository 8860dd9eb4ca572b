package jsonclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("  ", time.Second)
	require.Error(t, err)
}

func TestDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "svc", r.Header.Get("X-Caller"))
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(map[string]string{"got": in["msg"]})
		case "/detail":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Already checked in"}`))
		case "/plain":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", time.Second, WithHeader("X-Caller", "svc"))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		var out map[string]string
		require.NoError(t, c.Do(ctx, http.MethodPost, "/echo", map[string]string{"msg": "hi"}, &out))
		assert.Equal(t, "hi", out["got"])
	})

	t.Run("detail envelope", func(t *testing.T) {
		err := c.Do(ctx, http.MethodGet, "/detail", nil, nil)
		se, ok := AsStatus(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.Equal(t, "Already checked in", se.Detail)
	})

	t.Run("plain body", func(t *testing.T) {
		se, ok := AsStatus(c.Do(ctx, http.MethodGet, "/plain", nil, nil))
		require.True(t, ok)
		assert.Equal(t, "upstream down", se.Detail)
	})

	t.Run("timeout is unavailable and deadline exceeded", func(t *testing.T) {
		short, err := New(srv.URL, 20*time.Millisecond)
		require.NoError(t, err)
		err = short.Do(ctx, http.MethodGet, "/slow", nil, nil)
		assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("connection refused is unavailable", func(t *testing.T) {
		dead, err := New("http://127.0.0.1:1", time.Second)
		require.NoError(t, err)
		err = dead.Do(ctx, http.MethodGet, "/", nil, nil)
		assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
		_, isStatus := AsStatus(err)
		assert.False(t, isStatus)
	})
}

func TestToDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"not found", &StatusError{StatusCode: http.StatusNotFound, Detail: "deal not found"}, dErrors.CodeConfiguration},
		{"conflict", &StatusError{StatusCode: http.StatusConflict}, dErrors.CodeConflict},
		{"refusal", &StatusError{StatusCode: http.StatusBadRequest, Detail: "Already checked in"}, dErrors.CodeVerificationFailed},
		{"server error", &StatusError{StatusCode: http.StatusInternalServerError}, dErrors.CodeUnavailable},
		{"timeout", fmt.Errorf("x: %w: %w", sentinel.ErrUnavailable, context.DeadlineExceeded), dErrors.CodeTimeout},
		{"unreachable", fmt.Errorf("x: %w", sentinel.ErrUnavailable), dErrors.CodeUnavailable},
		{"other", errors.New("decode response"), dErrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, dErrors.CodeOf(ToDomain(tt.err, "presence check")))
		})
	}

	assert.NoError(t, ToDomain(nil, "x"))
	de, ok := dErrors.As(ToDomain(&StatusError{StatusCode: 400, Detail: "Already checked in"}, "presence check"))
	require.True(t, ok)
	assert.Equal(t, "Already checked in", de.Message)
}
