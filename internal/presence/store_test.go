package presence

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nilgate/pkg/domain-errors"
)

func TestHotspotStore(t *testing.T) {
	ctx := context.Background()
	store := NewHotspotStore()
	h := mustHotspot(t, 50)

	require.NoError(t, store.Register(ctx, h))

	t.Run("get registered", func(t *testing.T) {
		got, err := store.Get(ctx, "deal-1")
		require.NoError(t, err)
		assert.Equal(t, h, got)
	})

	t.Run("re-register is a conflict", func(t *testing.T) {
		err := store.Register(ctx, h)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("missing hotspot is a configuration error", func(t *testing.T) {
		_, err := store.Get(ctx, "deal-404")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
		assert.ErrorIs(t, err, ErrHotspotNotFound)
	})

}

func TestLoadHotspots(t *testing.T) {
	f, err := os.Open("testdata/hotspots.yaml")
	require.NoError(t, err)
	defer f.Close()

	hotspots, err := LoadHotspots(f)
	require.NoError(t, err)
	require.Len(t, hotspots, 2)
	assert.Equal(t, "deal-coffee", hotspots[0].DealID)
	assert.Equal(t, "25", hotspots[0].Payout.String())
	assert.True(t, hotspots[1].Payout.IsZero())

	_, err = LoadHotspots(strings.NewReader("hotspots:\n  - deal_id: x\n    radius_meters: 0\n"))
	assert.Error(t, err)

	_, err = LoadHotspots(strings.NewReader("hotspots:\n  - deal_id: x\n    radius: 10\n"))
	assert.Error(t, err, "unknown fields are rejected")
}
