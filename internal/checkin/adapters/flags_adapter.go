package adapters

import (
	"context"

	"nilgate/internal/checkin/ports"
	"nilgate/internal/featuregate"
)

// FlagAdapter implements ports.FlagPort with the cached gate. It never
// fetches on the request path; the poller keeps the gate fresh.
type FlagAdapter struct {
	gate *featuregate.Gate
}

func NewFlagAdapter(gate *featuregate.Gate) ports.FlagPort {
	return &FlagAdapter{gate: gate}
}

func (a *FlagAdapter) CurrentFlags(context.Context) ports.Flags {
	fs := a.gate.Flags()
	return ports.Flags{
		PresenceChecksEnabled: fs.PresenceChecksEnabled,
		SocialProofEnabled:    fs.SocialProofEnabled,
		AutoSettlementEnabled: fs.AutoSettlementEnabled,
	}
}
