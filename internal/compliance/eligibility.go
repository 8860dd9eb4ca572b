package compliance

import (
	"fmt"

	dErrors "nilgate/pkg/domain-errors"
)

// EvaluateRegistration checks whether a participant may register at all in
// their jurisdiction, independent of any particular deal.
func (e *Evaluator) EvaluateRegistration(p Participant) (Verdict, error) {
	if p.Age < 0 {
		return Verdict{}, dErrors.New(dErrors.CodeValidation, "age must not be negative")
	}
	if _, err := ParseRole(string(p.Role)); err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeValidation, "role")
	}

	key := normalizeKey(p.Jurisdiction)
	verdict := Verdict{Jurisdiction: key}
	rule, ok := e.table.Lookup(key)
	if !ok {
		verdict.deny(ViolationJurisdictionUnknown, ReasonJurisdictionNotFound)
		return verdict, dErrors.New(dErrors.CodeConfiguration, ReasonJurisdictionNotFound+": "+key)
	}
	verdict.Tier = rule.Tier
	verdict.ConsentRequired = rule.ConsentPolicy.Requires(p.Age)
	verdict.SchoolNotificationRequired = rule.SchoolNotificationRequired

	if p.Age < MinimumPlatformAge {
		verdict.deny(ViolationUnderMinimumAge,
			fmt.Sprintf("must be %d or older to use the platform", MinimumPlatformAge))
	}
	if p.Role == RoleMinorAthlete && !rule.MinorAthletesAllowed {
		verdict.deny(ViolationMinorAthletesNotAllowed,
			fmt.Sprintf("minor athlete deals are not permitted in %s", rule.Key))
	}
	if verdict.ConsentRequired && !p.ConsentApproved {
		verdict.deny(ViolationConsentMissing, consentReason(rule))
	}

	verdict.Allowed = len(verdict.Reasons) == 0
	return verdict, nil
}
