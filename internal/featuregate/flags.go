// Package featuregate holds the process-wide toggles that shape the check-in
// workflow. The flag service is never allowed to block a check-in: every read
// yields a usable FlagSet.
package featuregate

import (
	"context"
	"fmt"
	"strings"
)

// FlagSet is one snapshot of the toggles.
type FlagSet struct {
	PresenceChecksEnabled bool `json:"enable_geo_checkins"`
	SocialProofEnabled    bool `json:"enable_social_verification"`
	AutoSettlementEnabled bool `json:"enable_auto_payout"`
}

var (
	// DefaultFlags is the permissive fallback: everything on.
	DefaultFlags = FlagSet{PresenceChecksEnabled: true, SocialProofEnabled: true, AutoSettlementEnabled: true}

	// ConservativeFlags keeps every verification step but routes settlement to
	// manual review while the flag service is unreachable.
	ConservativeFlags = FlagSet{PresenceChecksEnabled: true, SocialProofEnabled: true, AutoSettlementEnabled: false}
)

// FallbackByName resolves the configured fallback policy.
func FallbackByName(name string) (FlagSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "permissive":
		return DefaultFlags, nil
	case "conservative":
		return ConservativeFlags, nil
	}
	return FlagSet{}, fmt.Errorf("unknown feature flag fallback %q", name)
}

// Source fetches the current flags from wherever they live.
type Source interface {
	Fetch(ctx context.Context) (FlagSet, error)
}

// Static is a Source that always returns the same set. Used when no flag
// service is configured.
type Static FlagSet

func (s Static) Fetch(context.Context) (FlagSet, error) {
	return FlagSet(s), nil
}
