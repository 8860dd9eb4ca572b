package compliance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "nilgate/pkg/domain-errors"
)

// Tier is the coarse permissiveness classification of a jurisdiction.
type Tier string

const (
	TierPermissive Tier = "permissive"
	TierStandard   Tier = "standard"
	TierRestricted Tier = "restricted"
)

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TierPermissive, TierStandard, TierRestricted:
		return t, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid tier: "+s)
}

// ConsentPolicy says when guardian consent is required.
type ConsentPolicy string

const (
	ConsentNever   ConsentPolicy = "never"
	ConsentIfMinor ConsentPolicy = "if_minor"
	ConsentAlways  ConsentPolicy = "always"
)

func ParseConsentPolicy(s string) (ConsentPolicy, error) {
	p := ConsentPolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ConsentNever, ConsentIfMinor, ConsentAlways:
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid consent policy: "+s)
}

// Requires reports whether a participant of the given age needs consent.
func (p ConsentPolicy) Requires(age int) bool {
	return p == ConsentAlways || (p == ConsentIfMinor && age < AdultAge)
}

// Role is the participant's role on the platform.
type Role string

const (
	RoleMinorAthlete Role = "minor_athlete"
	RoleAdultAthlete Role = "adult_athlete"
	RoleInfluencer   Role = "influencer"
	RoleSponsor      Role = "sponsor"
	RoleFan          Role = "fan"
)

var validRoles = map[Role]bool{
	RoleMinorAthlete: true,
	RoleAdultAthlete: true,
	RoleInfluencer:   true,
	RoleSponsor:      true,
	RoleFan:          true,
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role: "+s)
	}
	return r, nil
}

const (
	// AdultAge is the age at which minor-specific rules stop applying.
	AdultAge = 18
	// MinimumPlatformAge is the COPPA floor for registration.
	MinimumPlatformAge = 13
)

// minorRestrictedCategories always get a targeted reason for minors when the
// jurisdiction disallows them.
var minorRestrictedCategories = []string{"alcohol", "gambling", "tobacco"}

// Rule is the immutable compliance record of one jurisdiction.
type Rule struct {
	Key                        string
	Name                       string
	Description                string
	Tier                       Tier
	ConsentPolicy              ConsentPolicy
	SchoolNotificationRequired bool
	SchoolApprovalRequired     bool
	MinorAthletesAllowed       bool
	// Disallowed categories; empty means no restriction beyond global defaults.
	Disallowed map[string]struct{}
	// MinorRestricted extends the global minor category list for this jurisdiction.
	MinorRestricted []string
	MinAmount       decimal.Decimal
	MaxAmount       decimal.Decimal
	ReviewDelay     time.Duration
}

// Disallows reports whether category is on the jurisdiction's blacklist.
func (r Rule) Disallows(category string) bool {
	_, ok := r.Disallowed[normalizeCategory(category)]
	return ok
}

// SupportsDeals is false for the explicit "no transactions" record (max == 0).
func (r Rule) SupportsDeals() bool {
	return r.MaxAmount.IsPositive()
}

// DisallowedList returns the blacklist sorted for display.
func (r Rule) DisallowedList() []string {
	return sortedKeys(r.Disallowed)
}

func (r Rule) validate() error {
	if len(r.Key) == 0 {
		return dErrors.New(dErrors.CodeConfiguration, "jurisdiction key is required")
	}
	if _, err := ParseTier(string(r.Tier)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeConfiguration, "jurisdiction "+r.Key)
	}
	if _, err := ParseConsentPolicy(string(r.ConsentPolicy)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeConfiguration, "jurisdiction "+r.Key)
	}
	if r.MinAmount.IsNegative() || r.MaxAmount.IsNegative() {
		return dErrors.New(dErrors.CodeConfiguration, "jurisdiction "+r.Key+": amounts must not be negative")
	}
	if r.MaxAmount.IsPositive() && r.MinAmount.GreaterThan(r.MaxAmount) {
		return dErrors.New(dErrors.CodeConfiguration, "jurisdiction "+r.Key+": min amount exceeds max amount")
	}
	if r.ReviewDelay < 0 {
		return dErrors.New(dErrors.CodeConfiguration, "jurisdiction "+r.Key+": review delay must not be negative")
	}
	return nil
}

// Participant is the party whose attributes drive the evaluation.
type Participant struct {
	Role            Role
	Age             int
	Jurisdiction    string
	ConsentApproved bool
	SchoolApproved  bool
	SchoolNotified  bool
}

func (p Participant) IsMinor() bool {
	return p.Age < AdultAge
}

// Proposal is a prospective deal. Jurisdiction overrides the participant's when set.
type Proposal struct {
	Category     string
	Amount       decimal.Decimal
	Jurisdiction string
}

// ViolationCode is the machine-readable twin of a denial reason.
type ViolationCode string

const (
	ViolationJurisdictionUnknown     ViolationCode = "jurisdiction_unknown"
	ViolationCategoryDisallowed      ViolationCode = "category_disallowed"
	ViolationUnsupportedJurisdiction ViolationCode = "unsupported_in_jurisdiction"
	ViolationAmountOutOfRange        ViolationCode = "amount_out_of_range"
	ViolationMinorCategory           ViolationCode = "minor_category_restricted"
	ViolationConsentMissing          ViolationCode = "consent_missing"
	ViolationSchoolApprovalMissing   ViolationCode = "school_approval_missing"
	ViolationUnderMinimumAge         ViolationCode = "under_minimum_age"
	ViolationMinorAthletesNotAllowed ViolationCode = "minor_athletes_not_allowed"
)

// Verdict is the ephemeral result of one evaluation. Reasons is empty iff
// Allowed; Violations is parallel to Reasons.
type Verdict struct {
	Allowed                    bool
	Jurisdiction               string
	Tier                       Tier
	Reasons                    []string
	Violations                 []ViolationCode
	RequiresReview             bool
	ReviewDelay                time.Duration
	ConsentRequired            bool
	SchoolNotificationRequired bool
}

// HasViolation reports whether code was recorded.
func (v Verdict) HasViolation(code ViolationCode) bool {
	for _, c := range v.Violations {
		if c == code {
			return true
		}
	}
	return false
}

func (v *Verdict) deny(code ViolationCode, reason string) {
	v.Violations = append(v.Violations, code)
	v.Reasons = append(v.Reasons, reason)
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func normalizeKey(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}
