package handler

import (
	"time"

	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/service"
	"nilgate/internal/geo"
	"nilgate/internal/presence"
	"nilgate/pkg/platform/httputil"
)

// SessionResponse is the public view of a check-in session.
type SessionResponse struct {
	ID                 string              `json:"id"`
	DealID             string              `json:"deal_id"`
	ClaimantID         string              `json:"claimant_id"`
	Jurisdiction       string              `json:"jurisdiction"`
	CheckinID          string              `json:"checkin_id,omitempty"`
	State              string              `json:"state"`
	Outcome            string              `json:"outcome"`
	Terminal           bool                `json:"terminal"`
	Position           *geo.Coordinate     `json:"position,omitempty"`
	DistanceMeters     *float64            `json:"distance_meters,omitempty"`
	SocialReference    string              `json:"social_reference,omitempty"`
	Payout             string              `json:"payout"`
	ReviewDelaySeconds int64               `json:"review_delay_seconds"`
	LastError          string              `json:"last_error,omitempty"`
	Settlement         *SettlementResponse `json:"settlement,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type SettlementResponse struct {
	Mode          string     `json:"mode"`
	AutoTriggered bool       `json:"auto_triggered"`
	AuthorizedAt  time.Time  `json:"authorized_at"`
	EligibleAt    time.Time  `json:"eligible_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

func FromSession(s *models.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:                 s.ID,
		DealID:             s.DealID,
		ClaimantID:         s.ClaimantID,
		Jurisdiction:       s.Jurisdiction,
		CheckinID:          s.CheckinID,
		State:              string(s.State),
		Outcome:            string(s.Outcome),
		Terminal:           s.State.IsTerminal(),
		Position:           s.Position,
		DistanceMeters:     s.DistanceMeters,
		SocialReference:    s.SocialReference,
		Payout:             s.Payout.StringFixed(2),
		ReviewDelaySeconds: int64(s.ReviewDelay.Seconds()),
		LastError:          s.LastError,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if st := s.Settlement; st != nil {
		resp.Settlement = &SettlementResponse{
			Mode:          string(st.Mode),
			AutoTriggered: st.AutoTriggered,
			AuthorizedAt:  st.AuthorizedAt,
			EligibleAt:    st.EligibleAt,
			PublishedAt:   st.PublishedAt,
		}
	}
	return resp
}

// PositionResponse reports a presence attempt. Verified=false is a normal
// answer; the claimant may move closer and retry.
type PositionResponse struct {
	Session        *SessionResponse `json:"session"`
	Verified       bool             `json:"verified"`
	DistanceMeters float64          `json:"distance_meters"`
	Distance       string           `json:"distance"`
}

func FromPositionResult(r *service.PositionResult) *PositionResponse {
	return &PositionResponse{
		Session:        FromSession(r.Session),
		Verified:       r.Verified,
		DistanceMeters: r.DistanceMeters,
		Distance:       r.Distance,
	}
}

type SocialResponse struct {
	Session             *SessionResponse `json:"session"`
	Verified            bool             `json:"verified"`
	Status              string           `json:"status,omitempty"`
	AutoPayoutTriggered bool             `json:"auto_payout_triggered"`
	Platform            string           `json:"platform,omitempty"`
}

func FromSocialResult(r *service.SocialResult) *SocialResponse {
	return &SocialResponse{
		Session:             FromSession(r.Session),
		Verified:            r.Verified,
		Status:              r.Status,
		AutoPayoutTriggered: r.AutoPayoutTriggered,
		Platform:            r.Platform,
	}
}

// SocialRejectedResponse is the 422 body of a negative social verdict.
type SocialRejectedResponse struct {
	httputil.ErrorBody
	Result *SocialResponse `json:"result"`
}

type HotspotResponse struct {
	DealID       string  `json:"deal_id"`
	Name         string  `json:"name,omitempty"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
	Payout       string  `json:"payout"`
}

func FromHotspot(h presence.Hotspot) *HotspotResponse {
	return &HotspotResponse{
		DealID:       h.DealID,
		Name:         h.Name,
		Lat:          h.Center.Lat,
		Lng:          h.Center.Lng,
		RadiusMeters: h.RadiusMeters,
		Payout:       h.Payout.StringFixed(2),
	}
}
