package socialproof

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "nilgate/pkg/domain-errors"
)

// =============================================================================
// Social Proof Verifier Test Suite
// =============================================================================
// Justification for unit tests: local rejection must happen before any
// external call, which is only observable with a counting collaborator.

type VerifierSuite struct {
	suite.Suite
	collab   *fakeCollaborator
	verifier *Verifier
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.collab = &fakeCollaborator{verdict: &Verdict{Verified: true, Status: "approved"}}
	var err error
	s.verifier, err = NewVerifier(s.collab)
	s.Require().NoError(err)
}

type fakeCollaborator struct {
	verdict *Verdict
	err     error
	calls   int
	lastURL string
}

func (f *fakeCollaborator) VerifyPost(_ context.Context, _, socialURL string) (*Verdict, error) {
	f.calls++
	f.lastURL = socialURL
	return f.verdict, f.err
}

func (s *VerifierSuite) TestNew() {
	_, err := NewVerifier(nil)
	s.Error(err)
}

func (s *VerifierSuite) TestRejectsBeforeExternalCall() {
	for _, ref := range []string{"", "   ", "not a url", "ftp://example.com/post", "https://"} {
		s.Run(ref, func() {
			_, err := s.verifier.Verify(context.Background(), "chk-1", ref)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
	s.Zero(s.collab.calls)

	_, err := s.verifier.Verify(context.Background(), "chk-1", " ")
	s.Contains(err.Error(), "reference required")
}

func (s *VerifierSuite) TestVerified() {
	verdict, err := s.verifier.Verify(context.Background(), "chk-1", "  https://twitter.com/a/status/1  ")
	s.Require().NoError(err)
	s.True(verdict.Verified)
	s.Equal(PlatformTwitter, verdict.Platform)
	s.Equal("https://twitter.com/a/status/1", s.collab.lastURL)
	s.Empty(s.collab.verdict.Platform, "collaborator verdict is not mutated")
}

func (s *VerifierSuite) TestUnsupportedPostRejectedBeforeExternalCall() {
	for _, ref := range []string{
		"https://example.com/post/1",
		"https://instagram.com/nilbx",
		"https://x.com/nilbx",
		"https://www.tiktok.com/discover",
		"https://inbox.com/status/1",
	} {
		s.Run(ref, func() {
			_, err := s.verifier.Verify(context.Background(), "chk-1", ref)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "%v", err)
		})
	}
	s.Zero(s.collab.calls)
}

func (s *VerifierSuite) TestMissingVerdictIsTransient() {
	s.collab.verdict = nil
	_, err := s.verifier.Verify(context.Background(), "chk-1", "https://instagram.com/p/x")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *VerifierSuite) TestNegativeVerdictRestatesRequirements() {
	s.collab.verdict = &Verdict{Verified: false, Status: "missing_tags"}

	verdict, err := s.verifier.Verify(context.Background(), "chk-1", "https://instagram.com/p/x")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
	s.Contains(err.Error(), "@nilbx")
	s.Require().NotNil(verdict)
	s.Equal("missing_tags", verdict.Status)
}

func (s *VerifierSuite) TestCollaboratorErrors() {
	s.Run("plain errors are transient", func() {
		s.collab.err = errors.New("dial tcp: refused")
		_, err := s.verifier.Verify(context.Background(), "chk-1", "https://x.com/nilbx/status/1")
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("domain errors pass through", func() {
		s.collab.err = dErrors.New(dErrors.CodeTimeout, "social verification timed out")
		_, err := s.verifier.Verify(context.Background(), "chk-1", "https://x.com/nilbx/status/1")
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	s.Run("unconfigured collaborator", func() {
		v, err := NewVerifier(Unconfigured{})
		s.Require().NoError(err)
		_, err = v.Verify(context.Background(), "chk-1", "https://x.com/nilbx/status/1")
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *VerifierSuite) TestClient() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/checkins/chk%201/social-verify", r.URL.EscapedPath())
		var body map[string]string
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("https://x.com/nilbx/status/1", body["social_url"])
		_, _ = w.Write([]byte(`{"verified":true,"status":"verified","auto_payout_triggered":true}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	s.Require().NoError(err)
	verdict, err := c.VerifyPost(context.Background(), "chk 1", "https://x.com/nilbx/status/1")
	s.Require().NoError(err)
	s.Equal(&Verdict{Verified: true, Status: "verified", AutoPayoutTriggered: true}, verdict)
}
