//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/store"
	"nilgate/internal/geo"
	"nilgate/pkg/platform/sentinel"
	"nilgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client, store.WithTTL(time.Hour))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeSession() *models.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.NewSession(uuid.NewString(), "deal-1", "ath-1", "CO", decimal.RequireFromString("125.50"), 48*time.Hour, now)
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	session := makeSession()
	d := 42.5
	session.Position = &geo.Coordinate{Lat: 39.7, Lng: -104.9}
	session.DistanceMeters = &d
	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, found.ID)
	s.Equal(int64(1), found.Version)
	s.True(session.Payout.Equal(found.Payout))
	s.Equal(48*time.Hour, found.ReviewDelay)
	s.Equal(*session.Position, *found.Position)
	s.Len(found.History, 1)

	ttl, err := s.redis.Client.TTL(ctx, "checkin:session:"+session.ID).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 50*time.Minute)
}

func (s *RedisStoreSuite) TestNotFoundAndDuplicate() {
	ctx := context.Background()
	_, err := s.store.Get(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	session := makeSession()
	s.Require().NoError(s.store.Create(ctx, session))
	s.ErrorIs(s.store.Create(ctx, session), sentinel.ErrConflict)

	keys, err := s.redis.Keys(ctx, "checkin:session:*")
	s.Require().NoError(err)
	s.Len(keys, 1)
	s.ErrorIs(s.store.Update(ctx, makeSession(), 1), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestStaleUpdateRejected() {
	ctx := context.Background()
	session := makeSession()
	s.Require().NoError(s.store.Create(ctx, session))

	s.Require().NoError(s.store.Update(ctx, session.Clone(), 1))
	s.ErrorIs(s.store.Update(ctx, session.Clone(), 1), sentinel.ErrConflict)
}

// TestConcurrentCompareAndSet verifies that concurrent writers from the same
// version produce exactly one winner.
func (s *RedisStoreSuite) TestConcurrentCompareAndSet() {
	ctx := context.Background()
	session := makeSession()
	s.Require().NoError(s.store.Create(ctx, session))

	const writers = 25
	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Update(ctx, session.Clone(), 1)
			switch {
			case err == nil:
				wins.Add(1)
			case err == sentinel.ErrConflict:
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(writers-1), conflicts.Load())
}
