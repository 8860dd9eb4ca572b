package compliance

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// ruleRecord is the on-disk shape shared by the YAML file and the database.
type ruleRecord struct {
	Key                        string   `yaml:"key"`
	Name                       string   `yaml:"name"`
	Description                string   `yaml:"description"`
	Tier                       string   `yaml:"tier"`
	Consent                    string   `yaml:"consent"`
	SchoolNotificationRequired bool     `yaml:"school_notification_required"`
	SchoolApprovalRequired     bool     `yaml:"school_approval_required"`
	MinorAthletesAllowed       bool     `yaml:"minor_athletes_allowed"`
	Disallowed                 []string `yaml:"disallowed"`
	MinorRestricted            []string `yaml:"minor_restricted"`
	MinAmount                  float64  `yaml:"min_amount"`
	MaxAmount                  float64  `yaml:"max_amount"`
	ReviewDelayHours           int      `yaml:"review_delay_hours"`
}

type ruleFile struct {
	Jurisdictions []ruleRecord `yaml:"jurisdictions"`
}

func (rec ruleRecord) toRule() (Rule, error) {
	tier, err := ParseTier(rec.Tier)
	if err != nil {
		return Rule{}, fmt.Errorf("jurisdiction %s: %w", rec.Key, err)
	}
	consent, err := ParseConsentPolicy(rec.Consent)
	if err != nil {
		return Rule{}, fmt.Errorf("jurisdiction %s: %w", rec.Key, err)
	}
	return Rule{
		Key:                        rec.Key,
		Name:                       rec.Name,
		Description:                rec.Description,
		Tier:                       tier,
		ConsentPolicy:              consent,
		SchoolNotificationRequired: rec.SchoolNotificationRequired,
		SchoolApprovalRequired:     rec.SchoolApprovalRequired,
		MinorAthletesAllowed:       rec.MinorAthletesAllowed,
		Disallowed:                 NewCategorySet(rec.Disallowed...),
		MinorRestricted:            rec.MinorRestricted,
		MinAmount:                  decimal.NewFromFloat(rec.MinAmount),
		MaxAmount:                  decimal.NewFromFloat(rec.MaxAmount),
		ReviewDelay:                time.Duration(rec.ReviewDelayHours) * time.Hour,
	}, nil
}

// LoadYAML builds a table from a YAML document with a top-level
// "jurisdictions" list.
func LoadYAML(r io.Reader) (*RuleTable, error) {
	var file ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode jurisdiction rules: %w", err)
	}
	return fromRecords(file.Jurisdictions)
}

// DefaultTable returns the production table embedded in the binary.
func DefaultTable() (*RuleTable, error) {
	return LoadYAML(bytes.NewReader(defaultRulesYAML))
}

func fromRecords(records []ruleRecord) (*RuleTable, error) {
	rules := make([]Rule, 0, len(records))
	for _, rec := range records {
		rule, err := rec.toRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return NewRuleTable(rules...)
}
