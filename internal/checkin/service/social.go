package service

import (
	"context"
	"strings"
	"time"

	"nilgate/internal/checkin/models"
	"nilgate/internal/socialproof"
	dErrors "nilgate/pkg/domain-errors"
)

// SocialResult reports a social proof attempt.
type SocialResult struct {
	Session             *models.Session
	Verified            bool
	Status              string
	AutoPayoutTriggered bool
	Platform            string
}

// SubmitSocialReference verifies a public post for a session awaiting social
// proof. A negative verdict keeps the session awaiting and returns the result
// together with a CodeVerificationFailed error.
func (s *Service) SubmitSocialReference(ctx context.Context, sessionID, reference string) (result *SocialResult, err error) {
	ctx, span := s.startSpan(ctx, "checkin.SubmitSocialReference", sessionID)
	defer func() { endSpan(span, err) }()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "social post reference is required")
	}
	release, err := s.acquire(sessionID, "social")
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateAwaitingSocialProof {
		return nil, invalidState(session, string(models.StateAwaitingSocialProof))
	}
	flags := s.flags.CurrentFlags(ctx)
	if !flags.SocialProofEnabled {
		return nil, dErrors.New(dErrors.CodeFeatureDisabled, "social proof verification is currently disabled")
	}
	expected := session.Version

	callCtx, cancel := s.detached(ctx)
	start := time.Now()
	verdict, verifyErr := s.social.VerifySocialProof(callCtx, session.CheckinID, reference)
	cancel()
	s.metrics.ObserveCollaborator("social_proof", start)

	if verdict == nil {
		if verifyErr == nil {
			verifyErr = dErrors.New(dErrors.CodeUnavailable, "social proof service returned no verdict")
		}
		s.metrics.IncrementSocialResult("error")
		s.logger.WarnContext(ctx, "social proof check failed",
			"session_id", session.ID,
			"error", verifyErr,
		)
		return nil, collaboratorError(verifyErr, "social proof service")
	}

	now := s.now()
	session.SocialAttempts++
	session.SocialReference = reference
	result = &SocialResult{
		Session:             session,
		Verified:            verdict.Verified,
		Status:              verdict.Status,
		AutoPayoutTriggered: verdict.AutoPayoutTriggered,
		Platform:            verdict.Platform,
	}

	if !verdict.Verified {
		s.metrics.IncrementSocialResult("rejected")
		if verifyErr == nil || !dErrors.HasCode(verifyErr, dErrors.CodeVerificationFailed) {
			verifyErr = dErrors.New(dErrors.CodeVerificationFailed, socialproof.RequiredTagsMessage)
		}
		session.Record("social_proof_rejected", verdict.Status, now)
		session.LastError = socialproof.RequiredTagsMessage
		if err := s.commit(ctx, session, expected, "social"); err != nil {
			return nil, err
		}
		return result, verifyErr
	}

	s.metrics.IncrementSocialResult("verified")
	session.LastError = ""
	session.Transition(models.StateSocialVerified, "social_proof_verified", now)
	s.authorize(session, flags, verdict.AutoPayoutTriggered, now)
	if err := s.commit(ctx, session, expected, "social"); err != nil {
		return nil, err
	}
	s.transitioned(ctx, session)
	s.publish(ctx, session)
	return result, nil
}
