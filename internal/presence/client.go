package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"nilgate/internal/geo"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/jsonclient"
)

type checkinRequest struct {
	DealID    string         `json:"deal_id"`
	AthleteID string         `json:"athlete_id"`
	Location  geo.Coordinate `json:"location"`
}

type checkinResponse struct {
	CheckinID      json.RawMessage `json:"checkin_id"`
	GeoVerified    bool            `json:"geo_verified"`
	DistanceMeters float64         `json:"distance_meters"`
	Payout         decimal.Decimal `json:"payout"`
}

type geoFenceResponse struct {
	DealID       string          `json:"deal_id"`
	Name         string          `json:"name"`
	Location     geo.Coordinate  `json:"location"`
	RadiusMeters float64         `json:"radius_meters"`
	Payout       decimal.Decimal `json:"payout"`
}

// Client is the remote presence collaborator (POST {base}/checkins,
// GET {base}/geo-fences/{dealID}).
type Client struct {
	http *jsonclient.Client
}

func NewClient(baseURL string, timeout time.Duration, opts ...jsonclient.Option) (*Client, error) {
	hc, err := jsonclient.New(baseURL, timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("presence client: %w", err)
	}
	return &Client{http: hc}, nil
}

func (c *Client) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	var resp checkinResponse
	err := c.http.Do(ctx, http.MethodPost, "/checkins", checkinRequest{
		DealID:    req.DealID,
		AthleteID: req.ClaimantID,
		Location:  req.Position,
	}, &resp)
	if err != nil {
		return nil, jsonclient.ToDomain(err, "presence check")
	}
	checkinID := idString(resp.CheckinID)
	if resp.GeoVerified && checkinID == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "presence service returned a verified check-in without an id")
	}
	return &CheckResult{
		CheckinID:      checkinID,
		Verified:       resp.GeoVerified,
		DistanceMeters: resp.DistanceMeters,
		Payout:         resp.Payout,
	}, nil
}

// Get fetches the geo-fence of a deal. A 404 is ErrHotspotNotFound.
func (c *Client) Get(ctx context.Context, dealID string) (Hotspot, error) {
	var resp geoFenceResponse
	err := c.http.Do(ctx, http.MethodGet, "/geo-fences/"+url.PathEscape(strings.TrimSpace(dealID)), nil, &resp)
	if err != nil {
		if se, ok := jsonclient.AsStatus(err); ok && se.StatusCode == http.StatusNotFound {
			return Hotspot{}, dErrors.Wrap(ErrHotspotNotFound, dErrors.CodeConfiguration, "hotspot not found for deal "+dealID)
		}
		return Hotspot{}, jsonclient.ToDomain(err, "geo-fence lookup")
	}
	h, err := NewHotspot(resp.DealID, resp.Name, resp.Location, resp.RadiusMeters, resp.Payout)
	if err != nil {
		return Hotspot{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "presence service returned an invalid geo-fence")
	}
	return h, nil
}

// idString accepts both numeric and string ids.
func idString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return ""
	}
	return strings.Trim(s, `"`)
}
