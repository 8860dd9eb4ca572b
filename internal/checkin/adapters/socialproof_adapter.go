package adapters

import (
	"context"

	"nilgate/internal/checkin/ports"
	"nilgate/internal/socialproof"
)

// SocialProofAdapter implements ports.SocialProofPort with socialproof.Verifier.
type SocialProofAdapter struct {
	verifier *socialproof.Verifier
}

func NewSocialProofAdapter(verifier *socialproof.Verifier) ports.SocialProofPort {
	return &SocialProofAdapter{verifier: verifier}
}

// VerifySocialProof passes through the verifier's negative-verdict error
// together with the verdict.
func (a *SocialProofAdapter) VerifySocialProof(ctx context.Context, checkinID, reference string) (*ports.SocialVerdict, error) {
	verdict, err := a.verifier.Verify(ctx, checkinID, reference)
	if verdict == nil {
		return nil, err
	}
	return &ports.SocialVerdict{
		Verified:            verdict.Verified,
		Status:              verdict.Status,
		AutoPayoutTriggered: verdict.AutoPayoutTriggered,
		Platform:            string(verdict.Platform),
	}, err
}
