package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/ports"
	"nilgate/internal/compliance"
	dErrors "nilgate/pkg/domain-errors"
)

// StartRequest opens a check-in for a deal.
type StartRequest struct {
	DealID      string
	ClaimantID  string
	Participant compliance.Participant
	Proposal    compliance.Proposal
}

// StartResult carries the session and the compliance decision. On a
// compliance denial Session is nil and Decision lists every reason.
type StartResult struct {
	Session  *models.Session
	Decision *ports.ComplianceDecision
}

// Start runs the compliance gate and, when the deal is allowed, creates an
// initiated session carrying the jurisdiction's review delay.
func (s *Service) Start(ctx context.Context, req StartRequest) (result *StartResult, err error) {
	ctx, span := s.startSpan(ctx, "checkin.Start", "")
	defer func() { endSpan(span, err) }()

	req.DealID = strings.TrimSpace(req.DealID)
	req.ClaimantID = strings.TrimSpace(req.ClaimantID)
	if req.DealID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "deal id is required")
	}
	if req.ClaimantID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "claimant id is required")
	}

	decision, err := s.compliance.CheckDeal(ctx, req.Participant, req.Proposal)
	if err != nil {
		if _, ok := dErrors.As(err); !ok {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "compliance evaluation failed")
		}
		return &StartResult{Decision: decision}, err
	}
	if !decision.Allowed {
		s.logger.InfoContext(ctx, "check-in denied by compliance",
			"deal_id", req.DealID,
			"jurisdiction", decision.Jurisdiction,
			"reasons", len(decision.Reasons),
		)
		return &StartResult{Decision: decision}, dErrors.New(dErrors.CodeComplianceDenied,
			"deal not permitted: "+strings.Join(decision.Reasons, "; "))
	}

	session := models.NewSession(s.newID(), req.DealID, req.ClaimantID, decision.Jurisdiction,
		req.Proposal.Amount, decision.ReviewDelay, s.now())
	span.SetAttributes(attribute.String("checkin.session_id", session.ID))
	if err := s.store.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create check-in session")
	}
	s.transitioned(ctx, session)
	return &StartResult{Session: session, Decision: decision}, nil
}
