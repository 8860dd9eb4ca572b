package compliance

import (
	"sort"

	dErrors "nilgate/pkg/domain-errors"
)

// RuleTable is an immutable lookup of jurisdiction rules, built once at
// startup and injected into the evaluator. Lookups are case-insensitive.
type RuleTable struct {
	rules map[string]Rule
}

// NewRuleTable validates every rule and indexes it by upper-cased key.
// Duplicate keys are a configuration error.
func NewRuleTable(rules ...Rule) (*RuleTable, error) {
	t := &RuleTable{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		r.Key = normalizeKey(r.Key)
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, exists := t.rules[r.Key]; exists {
			return nil, dErrors.New(dErrors.CodeConfiguration, "duplicate jurisdiction "+r.Key)
		}
		r.Disallowed = copyCategorySet(r.Disallowed)
		r.MinorRestricted = append([]string(nil), r.MinorRestricted...)
		t.rules[r.Key] = r
	}
	return t, nil
}

// Lookup returns the rule for key. The returned rule shares no mutable state
// with the table.
func (t *RuleTable) Lookup(key string) (Rule, bool) {
	r, ok := t.rules[normalizeKey(key)]
	if !ok {
		return Rule{}, false
	}
	r.Disallowed = copyCategorySet(r.Disallowed)
	r.MinorRestricted = append([]string(nil), r.MinorRestricted...)
	return r, true
}

// Keys returns all jurisdiction keys sorted.
func (t *RuleTable) Keys() []string {
	keys := make([]string, 0, len(t.rules))
	for k := range t.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ByTier returns the rules of one tier sorted by key.
func (t *RuleTable) ByTier(tier Tier) []Rule {
	var out []Rule
	for _, k := range t.Keys() {
		if r, _ := t.Lookup(k); r.Tier == tier {
			out = append(out, r)
		}
	}
	return out
}

func (t *RuleTable) Len() int {
	return len(t.rules)
}

// NewCategorySet builds a normalized category set.
func NewCategorySet(categories ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if n := normalizeCategory(c); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func copyCategorySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[normalizeCategory(k)] = struct{}{}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
