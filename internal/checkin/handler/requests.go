package handler

import (
	"strings"

	"nilgate/internal/compliance"
	compliancehandler "nilgate/internal/compliance/handler"
	"nilgate/internal/geo"
	dErrors "nilgate/pkg/domain-errors"
)

// StartRequest is the HTTP request body for POST /checkins. ClaimantID may
// be omitted when the gateway forwards the claimant identity.
type StartRequest struct {
	DealID      string                               `json:"deal_id"`
	ClaimantID  string                               `json:"claimant_id,omitempty"`
	Participant compliancehandler.ParticipantRequest `json:"participant"`
	Proposal    compliancehandler.ProposalRequest    `json:"proposal"`

	parsedParticipant compliance.Participant
}

func (r *StartRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.DealID = strings.TrimSpace(r.DealID)
	r.ClaimantID = strings.TrimSpace(r.ClaimantID)
	if r.DealID == "" {
		return dErrors.New(dErrors.CodeValidation, "deal_id is required")
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
	r.parsedParticipant = participant
	return nil
}

func (r *StartRequest) ParsedParticipant() compliance.Participant {
	return r.parsedParticipant
}

func (r *StartRequest) ParsedProposal() compliance.Proposal {
	return compliance.Proposal{
		Category:     r.Proposal.Category,
		Amount:       r.Proposal.Amount,
		Jurisdiction: strings.TrimSpace(r.Proposal.Jurisdiction),
	}
}

// PositionRequest is the HTTP request body for POST /checkins/{id}/position.
type PositionRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (r *PositionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Lat == nil || r.Lng == nil {
		return dErrors.New(dErrors.CodeValidation, "lat and lng are required")
	}
	return r.Coordinate().Validate()
}

func (r *PositionRequest) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: *r.Lat, Lng: *r.Lng}
}

// SocialRequest is the HTTP request body for POST /checkins/{id}/social.
// A blank social_url is rejected by the workflow.
type SocialRequest struct {
	SocialURL string `json:"social_url"`
}

func (r *SocialRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}
