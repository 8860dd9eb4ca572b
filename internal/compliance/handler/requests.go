package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"nilgate/internal/compliance"
	dErrors "nilgate/pkg/domain-errors"
)

// ParticipantRequest is the participant portion of compliance requests.
type ParticipantRequest struct {
	Role            string `json:"role"`
	Age             *int   `json:"age"`
	Jurisdiction    string `json:"jurisdiction"`
	ConsentApproved bool   `json:"consent_approved"`
	SchoolApproved  bool   `json:"school_approved"`
	SchoolNotified  bool   `json:"school_notified"`
}

// ToDomain validates the participant and converts it.
func (p *ParticipantRequest) ToDomain() (compliance.Participant, error) {
	if p.Age == nil {
		return compliance.Participant{}, dErrors.New(dErrors.CodeValidation, "participant.age is required")
	}
	if *p.Age < 0 || *p.Age > 130 {
		return compliance.Participant{}, dErrors.New(dErrors.CodeValidation, "participant.age is out of range")
	}
	role, err := compliance.ParseRole(p.Role)
	if err != nil {
		return compliance.Participant{}, dErrors.Wrap(err, dErrors.CodeValidation, "participant.role must be one of minor_athlete, adult_athlete, influencer, sponsor, fan")
	}
	return compliance.Participant{
		Role:            role,
		Age:             *p.Age,
		Jurisdiction:    strings.TrimSpace(p.Jurisdiction),
		ConsentApproved: p.ConsentApproved,
		SchoolApproved:  p.SchoolApproved,
		SchoolNotified:  p.SchoolNotified,
	}, nil
}

// EvaluateRequest is the HTTP request body for POST /compliance/evaluate.
type EvaluateRequest struct {
	Participant ParticipantRequest `json:"participant"`
	Proposal    ProposalRequest    `json:"proposal"`

	parsedParticipant compliance.Participant
}

// ProposalRequest is the deal being checked.
type ProposalRequest struct {
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Jurisdiction string          `json:"jurisdiction,omitempty"`
}

// Validate implements httputil.Validatable.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Proposal.Category) > 64 {
		return dErrors.New(dErrors.CodeValidation, "proposal.category must be at most 64 characters")
	}
	participant, err := r.Participant.ToDomain()
	if err != nil {
		return err
	}
	r.Proposal.Category = strings.TrimSpace(r.Proposal.Category)
	if r.Proposal.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "proposal.category is required")
	}
	if r.Proposal.Amount.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "proposal.amount must not be negative")
	}
	if participant.Jurisdiction == "" && strings.TrimSpace(r.Proposal.Jurisdiction) == "" {
		return dErrors.New(dErrors.CodeValidation, "participant.jurisdiction is required")
	}
	r.parsedParticipant = participant
	return nil
}

func (r *EvaluateRequest) ParsedParticipant() compliance.Participant {
	return r.parsedParticipant
}

func (r *EvaluateRequest) ParsedProposal() compliance.Proposal {
	return compliance.Proposal{
		Category:     r.Proposal.Category,
		Amount:       r.Proposal.Amount,
		Jurisdiction: strings.TrimSpace(r.Proposal.Jurisdiction),
	}
}

// RegistrationRequest is the HTTP request body for POST /compliance/registration.
type RegistrationRequest struct {
	Participant ParticipantRequest `json:"participant"`

	parsedParticipant compliance.Participant
}

func (r *RegistrationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	participant, err := r.Participant.ToDomain()
	if err != nil {
		return err
	}
	if participant.Jurisdiction == "" {
		return dErrors.New(dErrors.CodeValidation, "participant.jurisdiction is required")
	}
	r.parsedParticipant = participant
	return nil
}

func (r *RegistrationRequest) ParsedParticipant() compliance.Participant {
	return r.parsedParticipant
}
