package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"nilgate/internal/checkin/adapters"
	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/service"
	"nilgate/internal/checkin/settlement"
	"nilgate/internal/checkin/store"
	"nilgate/internal/compliance"
	"nilgate/internal/featuregate"
	"nilgate/internal/geo"
	"nilgate/internal/presence"
	"nilgate/internal/socialproof"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/testutil"
)

type stubCollaborator struct {
	verdict *socialproof.Verdict
	err     error
}

func (c *stubCollaborator) VerifyPost(context.Context, string, string) (*socialproof.Verdict, error) {
	return c.verdict, c.err
}

var center = geo.Coordinate{Lat: 34.0522, Lng: -118.2437}

// HandlerSuite runs the HTTP boundary against the real workflow wired with
// in-process collaborators.
//
// Justification: status codes, error envelopes and the wiring through the
// adapters are only visible at this layer.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
	social *stubCollaborator
	log    *settlement.MemoryLog
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	table, err := compliance.DefaultTable()
	s.Require().NoError(err)
	evaluator, err := compliance.NewEvaluator(table)
	s.Require().NoError(err)

	hotspots := presence.NewHotspotStore()
	h, err := presence.NewHotspot("deal-1", "Campus Bookstore", center, 50, decimal.NewFromInt(150))
	s.Require().NoError(err)
	s.Require().NoError(hotspots.Register(ctx, h))
	checker := presence.NewLocalChecker(hotspots, presence.WithIDGenerator(func() string { return "chk-1" }))

	s.social = &stubCollaborator{verdict: &socialproof.Verdict{Verified: true, Status: "verified", AutoPayoutTriggered: true}}
	verifier, err := socialproof.NewVerifier(s.social)
	s.Require().NoError(err)

	gate, err := featuregate.New(featuregate.Static(featuregate.DefaultFlags))
	s.Require().NoError(err)
	_, err = gate.Refresh(ctx)
	s.Require().NoError(err)

	s.log = settlement.NewMemoryLog()
	seq := 0
	svc, err := service.New(store.New(),
		adapters.NewComplianceAdapter(evaluator),
		adapters.NewPresenceAdapter(checker),
		adapters.NewSocialProofAdapter(verifier),
		adapters.NewFlagAdapter(gate),
		s.log,
		service.WithLogger(logger),
		service.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("sess-%d", seq)
		}),
	)
	s.Require().NoError(err)

	r := chi.NewRouter()
	New(svc, logger, WithHotspots(hotspots)).Register(r)
	s.router = r
}

func startBody(jurisdiction, category string, age int) map[string]any {
	role := "adult_athlete"
	if age < 18 {
		role = "minor_athlete"
	}
	return map[string]any{
		"deal_id":     "deal-1",
		"claimant_id": "ath-1",
		"participant": map[string]any{"role": role, "age": age, "jurisdiction": jurisdiction},
		"proposal":    map[string]any{"category": category, "amount": "500.00"},
	}
}

func (s *HandlerSuite) start() SessionResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins", startBody("CA", "apparel", 21))
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return testutil.Decode[SessionResponse](s.T(), rr)
}

func (s *HandlerSuite) position(id string, lat, lng float64) PositionResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+id+"/position", map[string]any{"lat": lat, "lng": lng})
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	return testutil.Decode[PositionResponse](s.T(), rr)
}

// =============================================================================
// Start
// =============================================================================

func (s *HandlerSuite) TestStart() {
	s.Run("allowed deal opens a session", func() {
		resp := s.start()
		s.Equal("sess-1", resp.ID)
		s.Equal(string(models.StateInitiated), resp.State)
		s.Equal("CA", resp.Jurisdiction)
		s.Equal("500.00", resp.Payout)
		s.False(resp.Terminal)
	})

	s.Run("denied deal is 403 with every reason", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins", startBody("CA", "gambling", 21))
		rr := testutil.DoRequest(s.router, req)
		body := testutil.AssertError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeComplianceDenied))
		s.NotEmpty(body.Details)
	})

	s.Run("forwarded claimant wins over body", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins", startBody("CA", "apparel", 21))
		req = testutil.WithClaimant(req, "ath-forwarded")
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusCreated, rr.Code)
		s.Equal("ath-forwarded", testutil.Decode[SessionResponse](s.T(), rr).ClaimantID)
	})

	s.Run("missing deal id", func() {
		body := startBody("CA", "apparel", 21)
		delete(body, "deal_id")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins", body))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("unknown jurisdiction is a configuration error", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins", startBody("ZZ", "apparel", 21)))
		body := testutil.AssertError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeConfiguration))
		s.NotEmpty(body.Details)
	})
}

// =============================================================================
// Full flow
// =============================================================================

func (s *HandlerSuite) TestHappyPath() {
	session := s.start()

	// ~45m north of the hotspot center.
	pos := s.position(session.ID, center.Lat+0.000405, center.Lng)
	s.True(pos.Verified)
	s.Equal("45m", pos.Distance)
	s.Equal(string(models.StateAwaitingSocialProof), pos.Session.State)
	s.Equal("150.00", pos.Session.Payout)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/social",
		map[string]any{"social_url": "https://instagram.com/p/abc"})
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	social := testutil.Decode[SocialResponse](s.T(), rr)
	s.True(social.Verified)
	s.Equal(string(models.StateSocialVerified), social.Session.State)
	s.True(social.Session.Terminal)
	s.Require().NotNil(social.Session.Settlement)
	s.Equal("auto", social.Session.Settlement.Mode)
	s.True(social.Session.Settlement.AutoTriggered)
	s.NotNil(social.Session.Settlement.PublishedAt)
	s.Len(s.log.Events(), 1)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/checkins/"+session.ID, nil))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(string(models.StateSocialVerified), testutil.Decode[SessionResponse](s.T(), rr).State)
}

func (s *HandlerSuite) TestPresenceRejected() {
	session := s.start()
	pos := s.position(session.ID, center.Lat+0.0108, center.Lng)
	s.False(pos.Verified)
	s.Equal("1.2km", pos.Distance)
	s.Equal(string(models.StateInitiated), pos.Session.State)
	s.Equal("rejected", pos.Session.Outcome)
}

func (s *HandlerSuite) TestSocialRejected() {
	session := s.start()
	s.position(session.ID, center.Lat, center.Lng)
	s.social.verdict = &socialproof.Verdict{Verified: false, Status: "missing_tags"}

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/social",
		map[string]any{"social_url": "https://instagram.com/p/abc"})
	rr := testutil.DoRequest(s.router, req)
	body := testutil.AssertError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeVerificationFailed))
	s.Contains(body.Description, "@nilbx")
	s.Empty(s.log.Events())

	rejected := testutil.Decode[SocialRejectedResponse](s.T(), rr)
	s.Require().NotNil(rejected.Result)
	s.False(rejected.Result.Verified)
	s.Equal("missing_tags", rejected.Result.Status)
	s.Equal("instagram", rejected.Result.Platform)
	s.Equal(string(models.StateAwaitingSocialProof), rejected.Result.Session.State)

	s.Run("blank reference is a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/social",
			map[string]any{"social_url": " "})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("unsupported post link is a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/social",
			map[string]any{"social_url": "https://x.com/nilbx"})
		rr := testutil.DoRequest(s.router, req)
		body := testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
		s.Contains(body.Description, "/status/")
	})
}

func (s *HandlerSuite) TestHotspot() {
	s.Run("registered deal", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/checkins/hotspots/deal-1", nil))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		resp := testutil.Decode[HotspotResponse](s.T(), rr)
		s.Equal("deal-1", resp.DealID)
		s.Equal("Campus Bookstore", resp.Name)
		s.Equal(center.Lat, resp.Lat)
		s.Equal(center.Lng, resp.Lng)
		s.Equal(50.0, resp.RadiusMeters)
		s.Equal("150.00", resp.Payout)
	})

	s.Run("unknown deal", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/checkins/hotspots/deal-9", nil))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *HandlerSuite) TestErrors() {
	s.Run("unknown session", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/checkins/nope", nil))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("position without lng", func() {
		session := s.start()
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/position", map[string]any{"lat": 1.0})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("retry without settlement", func() {
		session := s.start()
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/settlement/retry", nil))
		testutil.AssertError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})
}

func (s *HandlerSuite) TestAbandon() {
	session := s.start()
	s.position(session.ID, center.Lat, center.Lng)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/abandon", nil))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	resp := testutil.Decode[SessionResponse](s.T(), rr)
	s.Equal(string(models.StateAbandoned), resp.State)
	s.Nil(resp.Position)
	s.Equal("chk-1", resp.CheckinID)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkins/"+session.ID+"/social",
		map[string]any{"social_url": "https://instagram.com/p/abc"})
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
}
