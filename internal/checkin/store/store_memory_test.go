package store

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
	"nilgate/pkg/platform/sentinel"
)

// Justification: version compare-and-set is the store's only invariant and
// the workflow's stale-write protection depends on it.
type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
}

func newSession() *models.Session {
	return models.NewSession(uuid.NewString(), "deal-1", "ath-1", "CA", decimal.NewFromInt(25), 0, time.Now())
}

func (s *InMemoryStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	session := newSession()
	s.Require().NoError(s.store.Create(ctx, session))
	s.Equal(int64(1), session.Version)

	found, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session, found)

	s.ErrorIs(s.store.Create(ctx, session), sentinel.ErrConflict)

	_, err = s.store.Get(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestGetReturnsCopies() {
	ctx := context.Background()
	session := newSession()
	s.Require().NoError(s.store.Create(ctx, session))

	found, _ := s.store.Get(ctx, session.ID)
	found.State = models.StateAbandoned

	again, _ := s.store.Get(ctx, session.ID)
	s.Equal(models.StateInitiated, again.State)
}

func (s *InMemoryStoreSuite) TestUpdateCompareAndSet() {
	ctx := context.Background()
	session := newSession()
	s.Require().NoError(s.store.Create(ctx, session))

	s.Run("matching version succeeds and bumps", func() {
		session.LastError = "first"
		s.Require().NoError(s.store.Update(ctx, session, 1))
		s.Equal(int64(2), session.Version)
	})

	s.Run("stale version conflicts", func() {
		stale := session.Clone()
		stale.LastError = "stale"
		s.ErrorIs(s.store.Update(ctx, stale, 1), sentinel.ErrConflict)

		found, _ := s.store.Get(ctx, session.ID)
		s.Equal("first", found.LastError)
	})

	s.Run("missing session", func() {
		s.ErrorIs(s.store.Update(ctx, newSession(), 1), sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestConcurrentUpdatesExactlyOneWins() {
	ctx := context.Background()
	session := newSession()
	s.Require().NoError(s.store.Create(ctx, session))

	const writers = 20
	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mine := session.Clone()
			if s.store.Update(ctx, mine, 1) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}
