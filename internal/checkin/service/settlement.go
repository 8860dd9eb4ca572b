package service

import (
	"context"
	"time"

	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/ports"
	dErrors "nilgate/pkg/domain-errors"
)

// authorize records the settlement on a session that just reached
// social_verified. A jurisdiction review delay always forces manual mode.
// AutoTriggered reports the collaborator's own payout trigger whenever
// auto-settlement is enabled, independent of the mode.
func (s *Service) authorize(session *models.Session, flags ports.Flags, collaboratorTriggered bool, now time.Time) {
	mode := models.SettlementManual
	if flags.AutoSettlementEnabled && session.ReviewDelay == 0 {
		mode = models.SettlementAuto
	}
	session.Settlement = &models.Settlement{
		Mode:          mode,
		AutoTriggered: flags.AutoSettlementEnabled && collaboratorTriggered,
		AuthorizedAt:  now,
		EligibleAt:    now.Add(session.ReviewDelay),
	}
	s.metrics.IncrementSettlement(string(mode))
}

// publish emits the settlement of a committed session and marks it
// published. Failures are logged and left for RetrySettlement; the session
// state is already final.
func (s *Service) publish(ctx context.Context, session *models.Session) {
	if err := s.emit(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "settlement publish failed",
			"session_id", session.ID,
			"deal_id", session.DealID,
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, session *models.Session) error {
	callCtx, cancel := s.detached(ctx)
	defer cancel()
	if err := s.settlement.PublishSettlement(callCtx, models.SettlementEventFor(session)); err != nil {
		s.metrics.IncrementPublishFailure()
		return err
	}

	expected := session.Version
	publishedAt := s.now()
	session.Settlement.PublishedAt = &publishedAt
	session.Record("settlement_published", string(session.Settlement.Mode), publishedAt)
	if err := s.commit(ctx, session, expected, "settlement"); err != nil {
		// The event is out; only the marker is missing. A retry re-emits and
		// consumers deduplicate on session id.
		session.Settlement.PublishedAt = nil
		s.logger.WarnContext(ctx, "settlement published but not marked",
			"session_id", session.ID,
			"error", err,
		)
	}
	return nil
}

// RetrySettlement re-emits the settlement of a verified session whose
// publication failed.
func (s *Service) RetrySettlement(ctx context.Context, sessionID string) (session *models.Session, err error) {
	ctx, span := s.startSpan(ctx, "checkin.RetrySettlement", sessionID)
	defer func() { endSpan(span, err) }()

	release, err := s.acquire(sessionID, "settlement")
	if err != nil {
		return nil, err
	}
	defer release()

	session, err = s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateSocialVerified || session.Settlement == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "check-in session has no authorized settlement")
	}
	if session.Settlement.Published() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "settlement already published")
	}
	if err := s.emit(ctx, session); err != nil {
		return nil, collaboratorError(err, "settlement publisher")
	}
	s.logger.InfoContext(ctx, "settlement republished", "session_id", session.ID)
	return session, nil
}
