// Package ports declares what the check-in workflow needs from the rest of
// the system. Each port uses workflow-local types so collaborators can be
// swapped without touching the service.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"nilgate/internal/checkin/models"
	"nilgate/internal/compliance"
)

// ComplianceDecision is the part of a compliance verdict the workflow uses.
type ComplianceDecision struct {
	Allowed      bool
	Jurisdiction string
	Reasons      []string
	ReviewDelay  time.Duration
}

// CompliancePort decides whether the underlying deal may run at all.
type CompliancePort interface {
	CheckDeal(ctx context.Context, participant compliance.Participant, proposal compliance.Proposal) (*ComplianceDecision, error)
}

// PresenceCheck is one reported position for a deal.
type PresenceCheck struct {
	DealID     string
	ClaimantID string
	Lat        float64
	Lng        float64
}

// PresenceVerdict is the presence collaborator's answer.
type PresenceVerdict struct {
	CheckinID      string
	Verified       bool
	DistanceMeters float64
	Payout         decimal.Decimal
}

// PresencePort verifies a reported position against the deal's hotspot.
type PresencePort interface {
	CheckPresence(ctx context.Context, check PresenceCheck) (*PresenceVerdict, error)
}

// SocialVerdict is the social proof collaborator's answer.
type SocialVerdict struct {
	Verified            bool
	Status              string
	AutoPayoutTriggered bool
	Platform            string
}

// SocialProofPort verifies a public post for a check-in. A negative verdict
// is returned together with a verification-failed error.
type SocialProofPort interface {
	VerifySocialProof(ctx context.Context, checkinID, reference string) (*SocialVerdict, error)
}

// Flags is the toggle snapshot read once per transition.
type Flags struct {
	PresenceChecksEnabled bool
	SocialProofEnabled    bool
	AutoSettlementEnabled bool
}

// FlagPort never fails; it always yields some Flags.
type FlagPort interface {
	CurrentFlags(ctx context.Context) Flags
}

// SettlementPort emits settlement authorizations.
type SettlementPort interface {
	PublishSettlement(ctx context.Context, event models.SettlementEvent) error
}
