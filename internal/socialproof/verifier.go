// Package socialproof checks that a claimant published the required public
// post for a check-in. Judging the post itself is delegated to an external
// collaborator; this package validates input and interprets the verdict.
package socialproof

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	dErrors "nilgate/pkg/domain-errors"
)

// RequiredTagsMessage restates what a post must contain.
const RequiredTagsMessage = "Social post verification failed. Please ensure your post includes @nilbx and the hotspot location."

const maxReferenceLength = 2048

// Verdict is the collaborator's answer.
type Verdict struct {
	Verified            bool
	Status              string
	AutoPayoutTriggered bool
	Platform            Platform
}

// Collaborator judges a public post for a check-in.
type Collaborator interface {
	VerifyPost(ctx context.Context, checkinID, socialURL string) (*Verdict, error)
}

// Verifier validates references before any external call and turns a
// negative verdict into a VerificationFailure.
type Verifier struct {
	collaborator Collaborator
	logger       *slog.Logger
}

type Option func(*Verifier)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

func NewVerifier(collaborator Collaborator, opts ...Option) (*Verifier, error) {
	if collaborator == nil {
		return nil, errors.New("social proof collaborator is required")
	}
	v := &Verifier{collaborator: collaborator}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify returns the verdict. A negative verdict is returned together with a
// CodeVerificationFailed error carrying RequiredTagsMessage.
func (v *Verifier) Verify(ctx context.Context, checkinID, reference string) (*Verdict, error) {
	ref, err := ParseReference(reference)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(checkinID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "check-in id is required")
	}

	verdict, err := v.collaborator.VerifyPost(ctx, checkinID, ref.URL)
	if err != nil {
		if _, ok := dErrors.As(err); !ok {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "social proof service unavailable")
		}
		return nil, err
	}
	if verdict == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "social proof service returned no verdict")
	}
	out := *verdict
	out.Platform = ref.Platform
	verdict = &out
	if v.logger != nil {
		v.logger.DebugContext(ctx, "social proof evaluated",
			"checkin_id", checkinID,
			"platform", ref.Platform,
			"verified", verdict.Verified,
			"status", verdict.Status,
		)
	}
	if !verdict.Verified {
		return verdict, dErrors.New(dErrors.CodeVerificationFailed, RequiredTagsMessage)
	}
	return verdict, nil
}

// Unconfigured is the collaborator used when no social proof service is
// configured. Every call is a transient failure so sessions stay actionable.
type Unconfigured struct{}

func (Unconfigured) VerifyPost(context.Context, string, string) (*Verdict, error) {
	return nil, dErrors.New(dErrors.CodeUnavailable, "social proof service is not configured")
}
