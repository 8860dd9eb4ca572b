package featuregate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nilgate/internal/featuregate/metrics"
	"nilgate/pkg/platform/circuit"
)

const defaultFetchTimeout = 750 * time.Millisecond

// Gate caches the last successfully fetched FlagSet. Refresh never fails in a
// way that leaves the caller without flags.
type Gate struct {
	source   Source
	fallback FlagSet
	timeout  time.Duration
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics

	group singleflight.Group

	mu        sync.RWMutex
	lastGood  *FlagSet
	fetchedAt time.Time
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithFallback replaces DefaultFlags as the set served when nothing has been
// fetched yet or the latest fetch failed.
func WithFallback(fs FlagSet) Option {
	return func(g *Gate) {
		g.fallback = fs
	}
}

// WithTimeout bounds each fetch. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithBreaker replaces the default breaker (3 failures to open, 1 success to
// close, 10s cooldown).
func WithBreaker(b *circuit.Breaker) Option {
	return func(g *Gate) {
		if b != nil {
			g.breaker = b
		}
	}
}

func New(source Source, opts ...Option) (*Gate, error) {
	if source == nil {
		return nil, errors.New("flag source is required")
	}
	g := &Gate{
		source:   source,
		fallback: DefaultFlags,
		timeout:  defaultFetchTimeout,
		breaker: circuit.New("feature-flags",
			circuit.WithFailureThreshold(3),
			circuit.WithSuccessThreshold(1),
			circuit.WithCooldown(10*time.Second),
		),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ErrCircuitOpen is returned by Refresh when the breaker is open and its
// cooldown has not elapsed; no fetch was attempted.
var ErrCircuitOpen = errors.New("feature flag circuit open")

// Refresh fetches the flags once. On success the result is cached and
// returned with a nil error. On failure the fallback set is returned together
// with the fetch error, which is for logging only. Concurrent calls share one
// fetch, and that fetch is recorded on the breaker once.
func (g *Gate) Refresh(ctx context.Context) (FlagSet, error) {
	v, err, _ := g.group.Do("refresh", func() (any, error) {
		if !g.breaker.Allow() {
			g.metrics.IncrementRefresh("skipped")
			return nil, ErrCircuitOpen
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		fs, err := g.source.Fetch(fetchCtx)
		if err != nil {
			g.recordFailure(ctx, err)
			return nil, err
		}
		g.recordSuccess(ctx, fs)
		return fs, nil
	})
	if err != nil {
		return g.fallback, err
	}
	return v.(FlagSet), nil
}

func (g *Gate) recordFailure(ctx context.Context, err error) {
	useFallback, change := g.breaker.RecordFailure()
	g.metrics.IncrementRefresh("fallback")
	g.metrics.SetDegraded(useFallback)
	if g.logger != nil {
		g.logger.WarnContext(ctx, "feature flag service unavailable, using fallback flags",
			"error", err,
			"circuit", g.breaker.State().String(),
		)
		if change.Opened {
			g.logger.ErrorContext(ctx, "feature flag circuit opened", "breaker", g.breaker.Name())
		}
	}
	g.publish(g.Flags())
}

func (g *Gate) recordSuccess(ctx context.Context, fs FlagSet) {
	_, change := g.breaker.RecordSuccess()
	g.metrics.IncrementRefresh("fetched")
	g.metrics.SetDegraded(g.breaker.IsOpen())
	if change.Closed && g.logger != nil {
		g.logger.InfoContext(ctx, "feature flag circuit closed", "breaker", g.breaker.Name())
	}

	g.mu.Lock()
	g.lastGood = &fs
	g.fetchedAt = time.Now()
	g.mu.Unlock()
	g.publish(fs)
}

// Flags returns the last successfully fetched set, or the fallback if no fetch
// has ever succeeded.
func (g *Gate) Flags() FlagSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.lastGood == nil {
		return g.fallback
	}
	return *g.lastGood
}

// Status describes the gate for the flags endpoint.
type Status struct {
	Flags     FlagSet
	Fetched   bool
	FetchedAt time.Time
	Degraded  bool
}

func (g *Gate) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	st := Status{Flags: g.fallback, Degraded: g.breaker.IsOpen()}
	if g.lastGood != nil {
		st.Flags = *g.lastGood
		st.Fetched = true
		st.FetchedAt = g.fetchedAt
	}
	return st
}

func (g *Gate) publish(fs FlagSet) {
	g.metrics.SetFlags(fs.PresenceChecksEnabled, fs.SocialProofEnabled, fs.AutoSettlementEnabled)
}
