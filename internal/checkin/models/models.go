package models

import (
	"time"

	"github.com/shopspring/decimal"

	"nilgate/internal/geo"
)

// State is the workflow position of a check-in session.
//
// StatePresenceRejected is only reported to callers for a failed attempt; the
// session itself stays initiated so the claimant can resubmit.
type State string

const (
	StateInitiated           State = "initiated"
	StatePresenceRejected    State = "presence_rejected"
	StatePresenceVerified    State = "presence_verified"
	StateAwaitingSocialProof State = "awaiting_social_proof"
	StateSocialVerified      State = "social_verified"
	StateAbandoned           State = "abandoned"
)

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateSocialVerified || s == StateAbandoned
}

var allowedTransitions = map[State][]State{
	StateInitiated:           {StatePresenceVerified, StateAbandoned},
	StatePresenceVerified:    {StateAwaitingSocialProof, StateSocialVerified, StateAbandoned},
	StateAwaitingSocialProof: {StateSocialVerified, StateAbandoned},
}

// CanTransition reports whether to is reachable from s in one step.
func (s State) CanTransition(to State) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Outcome is the externally visible result of a session.
type Outcome string

const (
	OutcomePending              Outcome = "pending"
	OutcomeRejected             Outcome = "rejected"
	OutcomeAwaitingSocialProof  Outcome = "awaiting_social_proof"
	OutcomeSettlementAuthorized Outcome = "settlement_authorized"
	OutcomeAbandoned            Outcome = "abandoned"
)

// SettlementMode says whether the payout may run without a human.
type SettlementMode string

const (
	SettlementAuto   SettlementMode = "auto"
	SettlementManual SettlementMode = "manual"
)

// Settlement is the authorization recorded on a verified session.
type Settlement struct {
	Mode          SettlementMode `json:"mode"`
	AutoTriggered bool           `json:"auto_triggered"`
	AuthorizedAt  time.Time      `json:"authorized_at"`
	EligibleAt    time.Time      `json:"eligible_at"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
}

func (s *Settlement) Published() bool {
	return s != nil && s.PublishedAt != nil
}

// Transition is one entry of the session audit trail.
type Transition struct {
	From   State     `json:"from"`
	To     State     `json:"to"`
	Event  string    `json:"event"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Session is one claimant's attempt to complete a deal's check-in.
type Session struct {
	ID               string          `json:"id"`
	DealID           string          `json:"deal_id"`
	ClaimantID       string          `json:"claimant_id"`
	Jurisdiction     string          `json:"jurisdiction"`
	CheckinID        string          `json:"checkin_id,omitempty"`
	State            State           `json:"state"`
	Outcome          Outcome         `json:"outcome"`
	Position         *geo.Coordinate `json:"position,omitempty"`
	DistanceMeters   *float64        `json:"distance_meters,omitempty"`
	SocialReference  string          `json:"social_reference,omitempty"`
	Payout           decimal.Decimal `json:"payout"`
	ReviewDelay      time.Duration   `json:"review_delay"`
	PresenceAttempts int             `json:"presence_attempts"`
	SocialAttempts   int             `json:"social_attempts"`
	LastError        string          `json:"last_error,omitempty"`
	Settlement       *Settlement     `json:"settlement,omitempty"`
	History          []Transition    `json:"history"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewSession builds an initiated session.
func NewSession(id, dealID, claimantID, jurisdiction string, payout decimal.Decimal, reviewDelay time.Duration, now time.Time) *Session {
	return &Session{
		ID:           id,
		DealID:       dealID,
		ClaimantID:   claimantID,
		Jurisdiction: jurisdiction,
		State:        StateInitiated,
		Outcome:      OutcomePending,
		Payout:       payout,
		ReviewDelay:  reviewDelay,
		History:      []Transition{{To: StateInitiated, Event: "started", At: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Transition moves the session to `to`, recording the event. It reports
// false without changing anything when the move is not allowed.
func (s *Session) Transition(to State, event string, now time.Time) bool {
	if !s.State.CanTransition(to) {
		return false
	}
	s.History = append(s.History, Transition{From: s.State, To: to, Event: event, At: now})
	s.State = to
	s.Outcome = outcomeFor(to)
	s.UpdatedAt = now
	return true
}

// Record appends an event that does not change state, such as a rejected
// attempt.
func (s *Session) Record(event, detail string, now time.Time) {
	s.History = append(s.History, Transition{From: s.State, To: s.State, Event: event, Detail: detail, At: now})
	s.UpdatedAt = now
}

// RejectPresence records a failed presence attempt. The session stays
// initiated and the outcome reads rejected until the next attempt.
func (s *Session) RejectPresence(detail string, now time.Time) {
	s.Record("presence_rejected", detail, now)
	s.Outcome = OutcomeRejected
}

// Abandon clears claimant-supplied evidence but keeps ids and history.
func (s *Session) Abandon(now time.Time) bool {
	if !s.Transition(StateAbandoned, "abandoned", now) {
		return false
	}
	s.Position = nil
	s.DistanceMeters = nil
	s.SocialReference = ""
	return true
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Position != nil {
		p := *s.Position
		out.Position = &p
	}
	if s.DistanceMeters != nil {
		d := *s.DistanceMeters
		out.DistanceMeters = &d
	}
	if s.Settlement != nil {
		st := *s.Settlement
		if s.Settlement.PublishedAt != nil {
			t := *s.Settlement.PublishedAt
			st.PublishedAt = &t
		}
		out.Settlement = &st
	}
	out.History = append([]Transition(nil), s.History...)
	return &out
}

func outcomeFor(state State) Outcome {
	switch state {
	case StateAwaitingSocialProof:
		return OutcomeAwaitingSocialProof
	case StateSocialVerified:
		return OutcomeSettlementAuthorized
	case StateAbandoned:
		return OutcomeAbandoned
	}
	return OutcomePending
}

// SettlementEvent is emitted once a session's payout is authorized.
type SettlementEvent struct {
	SessionID     string          `json:"session_id"`
	CheckinID     string          `json:"checkin_id"`
	DealID        string          `json:"deal_id"`
	ClaimantID    string          `json:"claimant_id"`
	Jurisdiction  string          `json:"jurisdiction"`
	Payout        decimal.Decimal `json:"payout"`
	Mode          SettlementMode  `json:"mode"`
	AutoTriggered bool            `json:"auto_triggered"`
	AuthorizedAt  time.Time       `json:"authorized_at"`
	EligibleAt    time.Time       `json:"eligible_at"`
}

// SettlementEventFor builds the event of an authorized session.
func SettlementEventFor(s *Session) SettlementEvent {
	return SettlementEvent{
		SessionID:     s.ID,
		CheckinID:     s.CheckinID,
		DealID:        s.DealID,
		ClaimantID:    s.ClaimantID,
		Jurisdiction:  s.Jurisdiction,
		Payout:        s.Payout,
		Mode:          s.Settlement.Mode,
		AutoTriggered: s.Settlement.AutoTriggered,
		AuthorizedAt:  s.Settlement.AuthorizedAt,
		EligibleAt:    s.Settlement.EligibleAt,
	}
}
