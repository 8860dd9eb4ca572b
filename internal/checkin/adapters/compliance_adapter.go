package adapters

import (
	"context"

	"nilgate/internal/checkin/ports"
	"nilgate/internal/compliance"
)

type dealEvaluator interface {
	Evaluate(p compliance.Participant, prop compliance.Proposal) (compliance.Verdict, error)
}

// ComplianceAdapter implements ports.CompliancePort with the in-process
// evaluator.
type ComplianceAdapter struct {
	evaluator dealEvaluator
}

func NewComplianceAdapter(evaluator *compliance.Evaluator) ports.CompliancePort {
	return &ComplianceAdapter{evaluator: evaluator}
}

// CheckDeal keeps the denying decision alongside a configuration error so
// callers can still show the reason.
func (a *ComplianceAdapter) CheckDeal(_ context.Context, p compliance.Participant, prop compliance.Proposal) (*ports.ComplianceDecision, error) {
	verdict, err := a.evaluator.Evaluate(p, prop)
	decision := &ports.ComplianceDecision{
		Allowed:      verdict.Allowed,
		Jurisdiction: verdict.Jurisdiction,
		Reasons:      verdict.Reasons,
		ReviewDelay:  verdict.ReviewDelay,
	}
	if err != nil {
		if len(verdict.Reasons) == 0 {
			return nil, err
		}
		return decision, err
	}
	return decision, nil
}
