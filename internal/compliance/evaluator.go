package compliance

import (
	"fmt"
	"log/slog"
	"strings"

	"nilgate/internal/compliance/metrics"
	dErrors "nilgate/pkg/domain-errors"
)

// ReasonJurisdictionNotFound is returned when the rule table has no record.
const ReasonJurisdictionNotFound = "jurisdiction rules not found"

// Evaluator applies a RuleTable to participants and deal proposals. It holds
// no mutable state: the same inputs always produce the same verdict.
type Evaluator struct {
	table   *RuleTable
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

func NewEvaluator(table *RuleTable, opts ...Option) (*Evaluator, error) {
	if table == nil {
		return nil, fmt.Errorf("rule table is required")
	}
	e := &Evaluator{table: table}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Table exposes the injected rule table for read-only listings.
func (e *Evaluator) Table() *RuleTable {
	return e.table
}

// Evaluate decides whether participant may enter the proposed deal.
//
// Denial is a normal return value: every violated rule is listed in
// Verdict.Reasons, in rule order, without short-circuiting. Errors are
// reserved for malformed input (CodeValidation) and a missing jurisdiction
// (CodeConfiguration); the latter also returns a denying verdict.
func (e *Evaluator) Evaluate(p Participant, prop Proposal) (Verdict, error) {
	if err := validateInputs(p, prop); err != nil {
		return Verdict{}, err
	}

	key := normalizeKey(prop.Jurisdiction)
	if key == "" {
		key = normalizeKey(p.Jurisdiction)
	}
	verdict := Verdict{Jurisdiction: key}

	rule, ok := e.table.Lookup(key)
	if !ok {
		verdict.deny(ViolationJurisdictionUnknown, ReasonJurisdictionNotFound)
		e.record(verdict)
		return verdict, dErrors.New(dErrors.CodeConfiguration, ReasonJurisdictionNotFound+": "+key)
	}
	verdict.Tier = rule.Tier
	verdict.ConsentRequired = rule.ConsentPolicy.Requires(p.Age)
	verdict.SchoolNotificationRequired = rule.SchoolNotificationRequired

	category := normalizeCategory(prop.Category)

	// Rule 1: category blacklist
	if rule.Disallows(category) {
		verdict.deny(ViolationCategoryDisallowed,
			fmt.Sprintf("deal category %q is not allowed in %s", category, rule.Key))
	}

	// Rule 2: amount bounds; max == 0 means the region has no deals at all
	if !rule.SupportsDeals() {
		verdict.deny(ViolationUnsupportedJurisdiction,
			fmt.Sprintf("%s does not support this deal type", rule.Key))
	} else if prop.Amount.LessThan(rule.MinAmount) || prop.Amount.GreaterThan(rule.MaxAmount) {
		verdict.deny(ViolationAmountOutOfRange,
			fmt.Sprintf("deal amount $%s is outside allowed range: $%s - $%s",
				prop.Amount.StringFixed(2), rule.MinAmount.StringFixed(2), rule.MaxAmount.StringFixed(2)))
	}

	// Rule 3: minor-specific reasons are surfaced even when rule 1 already fired
	if p.IsMinor() {
		for _, restricted := range minorCategories(rule) {
			if category == restricted && rule.Disallows(restricted) {
				verdict.deny(ViolationMinorCategory, "minors cannot promote "+restricted)
			}
		}
	}

	// Rule 4: guardian consent
	if verdict.ConsentRequired && !p.ConsentApproved {
		verdict.deny(ViolationConsentMissing, consentReason(rule))
	}

	// Rule 5: school approval
	if rule.SchoolApprovalRequired && !p.SchoolApproved {
		verdict.deny(ViolationSchoolApprovalMissing, "this deal requires school approval before submission")
	}

	if len(verdict.Reasons) == 0 {
		verdict.Allowed = true
		verdict.ReviewDelay = rule.ReviewDelay
		verdict.RequiresReview = rule.ReviewDelay > 0
	}
	e.record(verdict)
	return verdict, nil
}

func (e *Evaluator) record(v Verdict) {
	if e.metrics != nil {
		label := v.Jurisdiction
		if v.Tier == "" {
			label = "unknown"
		}
		e.metrics.IncrementVerdict(label, string(v.Tier), v.Allowed)
		for _, code := range v.Violations {
			e.metrics.IncrementViolation(string(code))
		}
	}
	if e.logger != nil && !v.Allowed {
		e.logger.Debug("compliance denied",
			"jurisdiction", v.Jurisdiction,
			"violations", v.Violations,
		)
	}
}

func validateInputs(p Participant, prop Proposal) error {
	if p.Age < 0 {
		return dErrors.New(dErrors.CodeValidation, "age must not be negative")
	}
	if prop.Amount.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "amount must not be negative")
	}
	if strings.TrimSpace(prop.Category) == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if strings.TrimSpace(p.Jurisdiction) == "" && strings.TrimSpace(prop.Jurisdiction) == "" {
		return dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	return nil
}

// minorCategories merges the global minor list with the jurisdiction's additions.
func minorCategories(rule Rule) []string {
	out := append([]string(nil), minorRestrictedCategories...)
	seen := NewCategorySet(out...)
	for _, c := range rule.MinorRestricted {
		n := normalizeCategory(c)
		if _, dup := seen[n]; dup || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func consentReason(rule Rule) string {
	if rule.ConsentPolicy == ConsentAlways {
		return "parental consent required in " + rule.Key
	}
	return "parental consent required for participants under 18"
}
