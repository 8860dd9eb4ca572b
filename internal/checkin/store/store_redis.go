package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nilgate/internal/checkin/models"
	"nilgate/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix  = "checkin:session:"
	defaultSessionTTL = 7 * 24 * time.Hour
)

// RedisStore keeps sessions as JSON documents. Updates use WATCH/MULTI so a
// write based on a stale version never lands, even across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithTTL sets how long an untouched session is kept.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: defaultSessionTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	next := session.Clone()
	next.Version = 1
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	created, err := s.client.SetNX(ctx, sessionKeyPrefix+session.ID, payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !created {
		return sentinel.ErrConflict
	}
	session.Version = 1
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Update is a compare-and-set on the stored version. A concurrent writer
// touching the key between WATCH and EXEC also yields sentinel.ErrConflict.
func (s *RedisStore) Update(ctx context.Context, session *models.Session, expectedVersion int64) error {
	key := sessionKeyPrefix + session.ID
	next := session.Clone()
	next.Version = expectedVersion + 1
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		var current struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode session version: %w", err)
		}
		if current.Version != expectedVersion {
			return sentinel.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txf, key)
	switch {
	case err == nil:
		session.Version = expectedVersion + 1
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return sentinel.ErrConflict
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrNotFound):
		return err
	}
	return fmt.Errorf("update session: %w", err)
}
