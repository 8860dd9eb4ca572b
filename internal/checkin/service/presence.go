package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/ports"
	"nilgate/internal/geo"
	dErrors "nilgate/pkg/domain-errors"
)

// PositionResult reports a presence attempt. A rejected attempt is not an
// error: the session stays initiated and the claimant may retry.
type PositionResult struct {
	Session        *models.Session
	Verified       bool
	DistanceMeters float64
	Distance       string
}

// SubmitPosition verifies the claimant's position against the deal hotspot.
func (s *Service) SubmitPosition(ctx context.Context, sessionID string, position geo.Coordinate) (result *PositionResult, err error) {
	ctx, span := s.startSpan(ctx, "checkin.SubmitPosition", sessionID)
	defer func() { endSpan(span, err) }()

	if err := position.Validate(); err != nil {
		return nil, err
	}
	release, err := s.acquire(sessionID, "position")
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateInitiated {
		return nil, invalidState(session, string(models.StateInitiated))
	}
	flags := s.flags.CurrentFlags(ctx)
	if !flags.PresenceChecksEnabled {
		return nil, dErrors.New(dErrors.CodeFeatureDisabled, "location check-ins are currently disabled")
	}
	expected := session.Version

	callCtx, cancel := s.detached(ctx)
	start := time.Now()
	verdict, err := s.presence.CheckPresence(callCtx, ports.PresenceCheck{
		DealID:     session.DealID,
		ClaimantID: session.ClaimantID,
		Lat:        position.Lat,
		Lng:        position.Lng,
	})
	cancel()
	s.metrics.ObserveCollaborator("presence", start)
	if err != nil {
		s.metrics.IncrementPresenceResult("error")
		s.logger.WarnContext(ctx, "presence check failed",
			"session_id", session.ID,
			"deal_id", session.DealID,
			"error", err,
		)
		return nil, collaboratorError(err, "presence service")
	}
	if verdict == nil || (verdict.Verified && verdict.CheckinID == "") {
		// Social proof is keyed by check-in id.
		s.metrics.IncrementPresenceResult("error")
		s.logger.WarnContext(ctx, "presence service returned a malformed verdict",
			"session_id", session.ID,
			"deal_id", session.DealID,
		)
		return nil, dErrors.New(dErrors.CodeUnavailable, "presence service returned a verified check-in without an id")
	}
	span.SetAttributes(attribute.Bool("checkin.presence_verified", verdict.Verified))

	now := s.now()
	distance := verdict.DistanceMeters
	session.PresenceAttempts++
	session.Position = &position
	session.DistanceMeters = &distance
	if verdict.CheckinID != "" {
		session.CheckinID = verdict.CheckinID
	}
	result = &PositionResult{
		Session:        session,
		Verified:       verdict.Verified,
		DistanceMeters: distance,
		Distance:       geo.FormatDistance(distance),
	}

	if !verdict.Verified {
		s.metrics.IncrementPresenceResult("rejected")
		session.RejectPresence("outside hotspot radius: "+result.Distance+" away", now)
		session.LastError = "You're " + result.Distance + " from the hotspot"
		if err := s.commit(ctx, session, expected, "position"); err != nil {
			return nil, err
		}
		return result, nil
	}

	s.metrics.IncrementPresenceResult("verified")
	session.LastError = ""
	if verdict.Payout.IsPositive() {
		session.Payout = verdict.Payout
	}
	session.Transition(models.StatePresenceVerified, "presence_verified", now)
	if flags.SocialProofEnabled {
		session.Transition(models.StateAwaitingSocialProof, "social_proof_requested", now)
	} else {
		session.Transition(models.StateSocialVerified, "social_proof_skipped", now)
		s.authorize(session, flags, false, now)
	}
	if err := s.commit(ctx, session, expected, "position"); err != nil {
		return nil, err
	}
	s.transitioned(ctx, session)
	if session.State == models.StateSocialVerified {
		s.publish(ctx, session)
	}
	return result, nil
}
