package presence

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nilgate/internal/geo"
)

// CheckRequest is one presence attempt.
type CheckRequest struct {
	DealID     string
	ClaimantID string
	Position   geo.Coordinate
}

// CheckResult is what a presence collaborator reports.
type CheckResult struct {
	CheckinID      string
	Verified       bool
	DistanceMeters float64
	Payout         decimal.Decimal
}

// HotspotGetter resolves the hotspot of a deal.
type HotspotGetter interface {
	Get(ctx context.Context, dealID string) (Hotspot, error)
}

// LocalChecker is the in-process presence collaborator: it resolves the
// deal's hotspot and runs the Verifier. Each attempt gets a fresh check-in id.
type LocalChecker struct {
	hotspots HotspotGetter
	verifier Verifier
	newID    func() string
	logger   *slog.Logger
}

type CheckerOption func(*LocalChecker)

func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *LocalChecker) {
		c.logger = logger
	}
}

// WithIDGenerator overrides uuid-based check-in ids.
func WithIDGenerator(fn func() string) CheckerOption {
	return func(c *LocalChecker) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func NewLocalChecker(hotspots HotspotGetter, opts ...CheckerOption) *LocalChecker {
	c := &LocalChecker{hotspots: hotspots, newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LocalChecker) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if err := req.Position.Validate(); err != nil {
		return nil, err
	}
	h, err := c.hotspots.Get(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	res := c.verifier.Verify(h, req.Position)
	if c.logger != nil {
		c.logger.DebugContext(ctx, "presence evaluated",
			"deal_id", req.DealID,
			"claimant_id", req.ClaimantID,
			"verified", res.Verified,
			"distance", res.Formatted(),
		)
	}
	return &CheckResult{
		CheckinID:      c.newID(),
		Verified:       res.Verified,
		DistanceMeters: res.DistanceMeters,
		Payout:         h.Payout,
	}, nil
}
