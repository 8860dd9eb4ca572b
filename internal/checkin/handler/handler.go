package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/service"
	"nilgate/internal/geo"
	"nilgate/internal/presence"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/httputil"
	"nilgate/pkg/requestcontext"
)

// Service defines the check-in operations the handler needs.
type Service interface {
	Start(ctx context.Context, req service.StartRequest) (*service.StartResult, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	SubmitPosition(ctx context.Context, sessionID string, position geo.Coordinate) (*service.PositionResult, error)
	SubmitSocialReference(ctx context.Context, sessionID, reference string) (*service.SocialResult, error)
	Abandon(ctx context.Context, sessionID string) (*models.Session, error)
	RetrySettlement(ctx context.Context, sessionID string) (*models.Session, error)
}

// Handler wires check-in endpoints to the workflow service.
type Handler struct {
	service  Service
	hotspots presence.HotspotGetter
	logger   *slog.Logger
}

type Option func(*Handler)

// WithHotspots exposes deal hotspots at GET /checkins/hotspots/{dealID}.
func WithHotspots(hotspots presence.HotspotGetter) Option {
	return func(h *Handler) {
		h.hotspots = hotspots
	}
}

func New(svc Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts check-in endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/checkins", func(r chi.Router) {
		r.Post("/", h.HandleStart)
		if h.hotspots != nil {
			r.Get("/hotspots/{dealID}", h.HandleHotspot)
		}
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/position", h.HandlePosition)
		r.Post("/{id}/social", h.HandleSocial)
		r.Post("/{id}/abandon", h.HandleAbandon)
		r.Post("/{id}/settlement/retry", h.HandleRetrySettlement)
	})
}

// HandleStart handles POST /checkins. A compliance denial is a 403 whose
// details list every reason.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[StartRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	claimantID := req.ClaimantID
	if forwarded := requestcontext.ClaimantID(ctx); forwarded != "" {
		claimantID = forwarded
	}

	res, err := h.service.Start(ctx, service.StartRequest{
		DealID:      req.DealID,
		ClaimantID:  claimantID,
		Participant: req.ParsedParticipant(),
		Proposal:    req.ParsedProposal(),
	})
	if err != nil {
		var reasons []string
		if res != nil && res.Decision != nil {
			reasons = res.Decision.Reasons
		}
		h.writeError(ctx, w, err, "start check-in", reasons)
		return
	}

	h.logger.InfoContext(ctx, "check-in started",
		"request_id", requestID,
		"session_id", res.Session.ID,
		"deal_id", res.Session.DealID,
		"jurisdiction", res.Session.Jurisdiction,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromSession(res.Session))
}

// HandleGet handles GET /checkins/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err, "get check-in", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandlePosition handles POST /checkins/{id}/position.
func (h *Handler) HandlePosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PositionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.SubmitPosition(ctx, chi.URLParam(r, "id"), req.Coordinate())
	if err != nil {
		h.writeError(ctx, w, err, "submit position", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPositionResult(res))
}

// HandleSocial handles POST /checkins/{id}/social. A negative verdict is a
// 422 carrying the tag requirements and the attempt's result.
func (h *Handler) HandleSocial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SocialRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.SubmitSocialReference(ctx, chi.URLParam(r, "id"), req.SocialURL)
	if err != nil {
		if res != nil && dErrors.HasCode(err, dErrors.CodeVerificationFailed) {
			body := SocialRejectedResponse{
				ErrorBody: httputil.ErrorBody{Error: string(dErrors.CodeVerificationFailed)},
				Result:    FromSocialResult(res),
			}
			if de, ok := dErrors.As(err); ok {
				body.Description = de.Message
			}
			httputil.WriteJSON(w, dErrors.ToHTTPStatus(dErrors.CodeVerificationFailed), body)
			return
		}
		h.writeError(ctx, w, err, "submit social proof", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSocialResult(res))
}

// HandleHotspot handles GET /checkins/hotspots/{dealID} so a claimant can see
// the target before checking in.
func (h *Handler) HandleHotspot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealID := chi.URLParam(r, "dealID")
	hotspot, err := h.hotspots.Get(ctx, dealID)
	if err != nil {
		if errors.Is(err, presence.ErrHotspotNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "no hotspot registered for deal "+dealID)
		}
		h.writeError(ctx, w, err, "get hotspot", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHotspot(hotspot))
}

// HandleAbandon handles POST /checkins/{id}/abandon.
func (h *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Abandon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err, "abandon check-in", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleRetrySettlement handles POST /checkins/{id}/settlement/retry.
func (h *Handler) HandleRetrySettlement(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.RetrySettlement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err, "retry settlement", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, operation string, details []string) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeConfiguration:
		h.logger.ErrorContext(ctx, operation+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteErrorWithDetails(w, err, details)
}
