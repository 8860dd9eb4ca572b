package handler

import (
	"nilgate/internal/compliance"
)

// VerdictResponse is returned for both allowed and denied evaluations.
type VerdictResponse struct {
	Allowed                    bool     `json:"allowed"`
	Jurisdiction               string   `json:"jurisdiction"`
	Tier                       string   `json:"tier,omitempty"`
	Reasons                    []string `json:"reasons"`
	Violations                 []string `json:"violations"`
	RequiresReview             bool     `json:"requires_review"`
	ReviewDelaySeconds         int64    `json:"review_delay_seconds"`
	ConsentRequired            bool     `json:"consent_required"`
	SchoolNotificationRequired bool     `json:"school_notification_required"`
}

func FromVerdict(v compliance.Verdict) *VerdictResponse {
	violations := make([]string, 0, len(v.Violations))
	for _, c := range v.Violations {
		violations = append(violations, string(c))
	}
	reasons := v.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return &VerdictResponse{
		Allowed:                    v.Allowed,
		Jurisdiction:               v.Jurisdiction,
		Tier:                       string(v.Tier),
		Reasons:                    reasons,
		Violations:                 violations,
		RequiresReview:             v.RequiresReview,
		ReviewDelaySeconds:         int64(v.ReviewDelay.Seconds()),
		ConsentRequired:            v.ConsentRequired,
		SchoolNotificationRequired: v.SchoolNotificationRequired,
	}
}

// JurisdictionResponse describes one rule record.
type JurisdictionResponse struct {
	Key                        string   `json:"key"`
	Name                       string   `json:"name"`
	Description                string   `json:"description,omitempty"`
	Tier                       string   `json:"tier"`
	Consent                    string   `json:"consent"`
	SchoolNotificationRequired bool     `json:"school_notification_required"`
	SchoolApprovalRequired     bool     `json:"school_approval_required"`
	MinorAthletesAllowed       bool     `json:"minor_athletes_allowed"`
	SupportsDeals              bool     `json:"supports_deals"`
	Disallowed                 []string `json:"disallowed"`
	MinAmount                  string   `json:"min_amount"`
	MaxAmount                  string   `json:"max_amount"`
	ReviewDelayHours           int      `json:"review_delay_hours"`
}

func FromRule(r compliance.Rule) JurisdictionResponse {
	return JurisdictionResponse{
		Key:                        r.Key,
		Name:                       r.Name,
		Description:                r.Description,
		Tier:                       string(r.Tier),
		Consent:                    string(r.ConsentPolicy),
		SchoolNotificationRequired: r.SchoolNotificationRequired,
		SchoolApprovalRequired:     r.SchoolApprovalRequired,
		MinorAthletesAllowed:       r.MinorAthletesAllowed,
		SupportsDeals:              r.SupportsDeals(),
		Disallowed:                 r.DisallowedList(),
		MinAmount:                  r.MinAmount.StringFixed(2),
		MaxAmount:                  r.MaxAmount.StringFixed(2),
		ReviewDelayHours:           int(r.ReviewDelay.Hours()),
	}
}

// JurisdictionListResponse is the body of GET /compliance/jurisdictions.
type JurisdictionListResponse struct {
	Jurisdictions []JurisdictionResponse `json:"jurisdictions"`
	Total         int                    `json:"total"`
}
