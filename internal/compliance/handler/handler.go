package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nilgate/internal/compliance"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/httputil"
	"nilgate/pkg/requestcontext"
)

// Evaluator defines the compliance operations the handler needs.
type Evaluator interface {
	Evaluate(p compliance.Participant, prop compliance.Proposal) (compliance.Verdict, error)
	EvaluateRegistration(p compliance.Participant) (compliance.Verdict, error)
	Table() *compliance.RuleTable
}

// Handler wires compliance endpoints to the evaluator.
type Handler struct {
	evaluator Evaluator
	logger    *slog.Logger
}

func New(evaluator Evaluator, logger *slog.Logger) *Handler {
	return &Handler{evaluator: evaluator, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/evaluate", h.HandleEvaluate)
	r.Post("/compliance/registration", h.HandleRegistration)
	r.Get("/compliance/jurisdictions", h.HandleListJurisdictions)
	r.Get("/compliance/jurisdictions/{key}", h.HandleGetJurisdiction)
}

// HandleEvaluate handles POST /compliance/evaluate. A denial is a 200 with
// allowed=false and every reason listed.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	verdict, err := h.evaluator.Evaluate(req.ParsedParticipant(), req.ParsedProposal())
	if err != nil {
		h.writeEvaluationError(w, r, verdict, err)
		return
	}

	h.logger.InfoContext(ctx, "compliance evaluated",
		"request_id", requestID,
		"jurisdiction", verdict.Jurisdiction,
		"category", req.Proposal.Category,
		"allowed", verdict.Allowed,
		"reason_count", len(verdict.Reasons),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromVerdict(verdict))
}

// HandleRegistration handles POST /compliance/registration.
func (h *Handler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegistrationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	verdict, err := h.evaluator.EvaluateRegistration(req.ParsedParticipant())
	if err != nil {
		h.writeEvaluationError(w, r, verdict, err)
		return
	}

	h.logger.InfoContext(ctx, "registration eligibility evaluated",
		"request_id", requestID,
		"jurisdiction", verdict.Jurisdiction,
		"role", req.Participant.Role,
		"allowed", verdict.Allowed,
	)
	httputil.WriteJSON(w, http.StatusOK, FromVerdict(verdict))
}

// HandleListJurisdictions handles GET /compliance/jurisdictions[?tier=].
func (h *Handler) HandleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	table := h.evaluator.Table()

	var rules []compliance.Rule
	if raw := r.URL.Query().Get("tier"); raw != "" {
		tier, err := compliance.ParseTier(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "tier must be one of permissive, standard, restricted"))
			return
		}
		rules = table.ByTier(tier)
	} else {
		for _, key := range table.Keys() {
			rule, _ := table.Lookup(key)
			rules = append(rules, rule)
		}
	}

	resp := JurisdictionListResponse{Jurisdictions: make([]JurisdictionResponse, 0, len(rules))}
	for _, rule := range rules {
		resp.Jurisdictions = append(resp.Jurisdictions, FromRule(rule))
	}
	resp.Total = len(resp.Jurisdictions)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleGetJurisdiction handles GET /compliance/jurisdictions/{key}.
func (h *Handler) HandleGetJurisdiction(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rule, ok := h.evaluator.Table().Lookup(key)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, compliance.ReasonJurisdictionNotFound))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRule(rule))
}

// writeEvaluationError reports a jurisdiction the table does not know as 404
// so clients can tell it apart from server faults.
func (h *Handler) writeEvaluationError(w http.ResponseWriter, r *http.Request, verdict compliance.Verdict, err error) {
	ctx := r.Context()
	if verdict.HasViolation(compliance.ViolationJurisdictionUnknown) {
		h.logger.WarnContext(ctx, "compliance evaluation for unknown jurisdiction",
			"request_id", requestcontext.RequestID(ctx),
			"jurisdiction", verdict.Jurisdiction,
		)
		httputil.WriteErrorWithDetails(w, dErrors.Wrap(err, dErrors.CodeNotFound, compliance.ReasonJurisdictionNotFound), verdict.Reasons)
		return
	}
	if !dErrors.HasCode(err, dErrors.CodeValidation) {
		h.logger.ErrorContext(ctx, "compliance evaluation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
