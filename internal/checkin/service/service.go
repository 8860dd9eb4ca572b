// Package service runs the check-in workflow: compliance gate, presence
// verification, optional social proof and settlement authorization.
//
// At most one transition runs per session at a time. A concurrent submit
// for the same session fails fast with CodeConflict. Abandon never waits;
// it races verifications through the store's version compare-and-set, and a
// verification that loses that race is discarded.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nilgate/internal/checkin/metrics"
	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/ports"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

const defaultCollaboratorTimeout = 5 * time.Second

// Store persists sessions with compare-and-set updates on Version.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session, expectedVersion int64) error
}

// Service orchestrates check-in sessions.
type Service struct {
	store      Store
	compliance ports.CompliancePort
	presence   ports.PresencePort
	social     ports.SocialProofPort
	flags      ports.FlagPort
	settlement ports.SettlementPort

	locks   *sessionLocks
	timeout time.Duration
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithTimeout bounds each presence and social proof call.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func New(
	store Store,
	compliance ports.CompliancePort,
	presence ports.PresencePort,
	social ports.SocialProofPort,
	flags ports.FlagPort,
	settlement ports.SettlementPort,
	opts ...Option,
) (*Service, error) {
	if store == nil || compliance == nil || presence == nil || social == nil || flags == nil || settlement == nil {
		return nil, errors.New("check-in service requires a store and all collaborators")
	}
	s := &Service{
		store:      store,
		compliance: compliance,
		presence:   presence,
		social:     social,
		flags:      flags,
		settlement: settlement,
		locks:      newSessionLocks(),
		timeout:    defaultCollaboratorTimeout,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     slog.Default(),
		tracer:     otel.Tracer("nilgate/checkin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns a session snapshot.
func (s *Service) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.load(ctx, sessionID)
}

func (s *Service) load(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "session id is required")
	}
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "check-in session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load check-in session")
	}
	return session, nil
}

// acquire takes the per-session try-lock.
func (s *Service) acquire(sessionID, operation string) (func(), error) {
	release, ok := s.locks.tryAcquire(sessionID)
	if !ok {
		s.metrics.IncrementConflict(operation)
		return nil, dErrors.New(dErrors.CodeConflict, "another update for this check-in session is in progress")
	}
	return release, nil
}

// commit writes session if nobody else changed it since expectedVersion. A
// lost race against an abandon discards the caller's result.
func (s *Service) commit(ctx context.Context, session *models.Session, expectedVersion int64, operation string) error {
	err := s.store.Update(ctx, session, expectedVersion)
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		s.metrics.IncrementConflict(operation)
		if current, getErr := s.store.Get(ctx, session.ID); getErr == nil && current.State == models.StateAbandoned {
			s.logger.InfoContext(ctx, "verification result discarded after abandon",
				"session_id", session.ID,
				"operation", operation,
			)
			return dErrors.New(dErrors.CodeConflict, "session abandoned; verification result discarded")
		}
		return dErrors.New(dErrors.CodeConflict, "check-in session changed concurrently; retry")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "check-in session not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save check-in session")
}

// detached returns a context that survives the caller going away but is
// still bounded by the collaborator timeout.
func (s *Service) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

// collaboratorError keeps domain errors and classifies the rest as
// transient.
func collaboratorError(err error, what string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, what+" timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, what+" unavailable")
}

func (s *Service) startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("checkin.session_id", sessionID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func (s *Service) transitioned(ctx context.Context, session *models.Session) {
	s.metrics.IncrementTransition(string(session.State))
	s.logger.InfoContext(ctx, "check-in transition",
		"session_id", session.ID,
		"deal_id", session.DealID,
		"state", session.State,
		"outcome", session.Outcome,
	)
}

func invalidState(session *models.Session, want string) error {
	if session.State == models.StateAbandoned {
		return dErrors.New(dErrors.CodeInvalidState, "check-in session was abandoned")
	}
	return dErrors.New(dErrors.CodeInvalidState, "check-in session is "+string(session.State)+"; expected "+want)
}
