package service

import (
	"context"
	"errors"

	"nilgate/internal/checkin/models"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

const abandonAttempts = 3

// Abandon moves a non-terminal session to abandoned. It does not take the
// per-session lock, so a claimant can always walk away from a verification
// that is still in flight; that verification's result is then discarded.
// Abandoning an abandoned session returns it unchanged.
func (s *Service) Abandon(ctx context.Context, sessionID string) (session *models.Session, err error) {
	ctx, span := s.startSpan(ctx, "checkin.Abandon", sessionID)
	defer func() { endSpan(span, err) }()

	for attempt := 0; attempt < abandonAttempts; attempt++ {
		session, err = s.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if session.State == models.StateAbandoned {
			return session, nil
		}
		expected := session.Version
		if !session.Abandon(s.now()) {
			return nil, dErrors.New(dErrors.CodeInvalidState, "check-in session is already "+string(session.State))
		}
		err = s.store.Update(ctx, session, expected)
		if err == nil {
			s.transitioned(ctx, session)
			return session, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to abandon check-in session")
		}
		s.metrics.IncrementConflict("abandon")
	}
	return nil, dErrors.New(dErrors.CodeConflict, "check-in session kept changing; retry abandon")
}
