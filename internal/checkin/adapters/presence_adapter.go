package adapters

import (
	"context"

	"nilgate/internal/checkin/ports"
	"nilgate/internal/geo"
	"nilgate/internal/presence"
)

// PresenceChecker is satisfied by presence.LocalChecker and presence.Client.
type PresenceChecker interface {
	Check(ctx context.Context, req presence.CheckRequest) (*presence.CheckResult, error)
}

// PresenceAdapter implements ports.PresencePort.
type PresenceAdapter struct {
	checker PresenceChecker
}

func NewPresenceAdapter(checker PresenceChecker) ports.PresencePort {
	return &PresenceAdapter{checker: checker}
}

func (a *PresenceAdapter) CheckPresence(ctx context.Context, check ports.PresenceCheck) (*ports.PresenceVerdict, error) {
	res, err := a.checker.Check(ctx, presence.CheckRequest{
		DealID:     check.DealID,
		ClaimantID: check.ClaimantID,
		Position:   geo.Coordinate{Lat: check.Lat, Lng: check.Lng},
	})
	if err != nil {
		return nil, err
	}
	return &ports.PresenceVerdict{
		CheckinID:      res.CheckinID,
		Verified:       res.Verified,
		DistanceMeters: res.DistanceMeters,
		Payout:         res.Payout,
	}, nil
}
