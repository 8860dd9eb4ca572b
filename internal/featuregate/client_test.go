package featuregate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	t.Run("decodes flags", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/flags", r.URL.Path)
			_, _ = w.Write([]byte(`{"enable_geo_checkins":false,"enable_social_verification":true,"enable_auto_payout":false}`))
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL, time.Second, DefaultFlags)
		require.NoError(t, err)
		fs, err := c.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, FlagSet{SocialProofEnabled: true}, fs)
	})

	t.Run("missing fields inherit defaults", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"enable_auto_payout":false}`))
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL, time.Second, DefaultFlags)
		require.NoError(t, err)
		fs, err := c.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ConservativeFlags, fs)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL, time.Second, DefaultFlags)
		require.NoError(t, err)
		_, err = c.Fetch(context.Background())
		require.Error(t, err)
	})
}

func TestGate_WithUnreachableClientServesDefaults(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", time.Second, DefaultFlags)
	require.NoError(t, err)
	gate, err := New(c)
	require.NoError(t, err)

	fs, err := gate.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DefaultFlags, fs)
	assert.Equal(t, DefaultFlags, gate.Flags())
}

func TestPoller(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		gate, err := New(Static(DefaultFlags))
		require.NoError(t, err)
		_, err = NewPoller(context.Background(), gate, "every now and then", nil)
		require.Error(t, err)
	})

	t.Run("refreshes on schedule", func(t *testing.T) {
		src := &fakeSource{flags: FlagSet{SocialProofEnabled: true}}
		gate, err := New(src)
		require.NoError(t, err)

		p, err := NewPoller(context.Background(), gate, "@every 1s", nil)
		require.NoError(t, err)
		p.Start()
		defer p.Stop()

		require.Eventually(t, func() bool { return gate.Status().Fetched }, 3*time.Second, 20*time.Millisecond)
		assert.Equal(t, FlagSet{SocialProofEnabled: true}, gate.Flags())
	})
}
