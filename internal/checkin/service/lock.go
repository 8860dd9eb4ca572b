package service

import "sync"

// numSessionShards spreads in-flight session ids across independent maps so
// unrelated sessions rarely contend on the same mutex.
const numSessionShards = 64

// sessionLocks is a per-session try-lock. A second acquire for an id that is
// already held fails immediately instead of queueing.
type sessionLocks struct {
	shards [numSessionShards]lockShard
}

type lockShard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newSessionLocks() *sessionLocks {
	l := &sessionLocks{}
	for i := range l.shards {
		l.shards[i].inflight = make(map[string]struct{})
	}
	return l
}

// tryAcquire marks id as busy. The returned release must be called exactly
// once when ok is true.
func (l *sessionLocks) tryAcquire(id string) (release func(), ok bool) {
	shard := &l.shards[hashSessionID(id)%numSessionShards]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, busy := shard.inflight[id]; busy {
		return nil, false
	}
	shard.inflight[id] = struct{}{}
	return func() {
		shard.mu.Lock()
		delete(shard.inflight, id)
		shard.mu.Unlock()
	}, true
}

// hashSessionID is FNV-1a.
func hashSessionID(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
