package featuregate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nilgate/pkg/platform/jsonclient"
)

// flagsResponse uses pointers so a missing field inherits the fallback value
// instead of silently turning a feature off.
type flagsResponse struct {
	EnableGeoCheckins        *bool `json:"enable_geo_checkins"`
	EnableSocialVerification *bool `json:"enable_social_verification"`
	EnableAutoPayout         *bool `json:"enable_auto_payout"`
}

// Client is the HTTP flag source (GET {base}/flags).
type Client struct {
	http     *jsonclient.Client
	defaults FlagSet
}

// NewClient builds a flag source. Fields absent from the response take their
// value from defaults.
func NewClient(baseURL string, timeout time.Duration, defaults FlagSet, opts ...jsonclient.Option) (*Client, error) {
	hc, err := jsonclient.New(baseURL, timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("feature flag client: %w", err)
	}
	return &Client{http: hc, defaults: defaults}, nil
}

func (c *Client) Fetch(ctx context.Context) (FlagSet, error) {
	var resp flagsResponse
	if err := c.http.Do(ctx, http.MethodGet, "/flags", nil, &resp); err != nil {
		return FlagSet{}, fmt.Errorf("fetch feature flags: %w", err)
	}
	fs := c.defaults
	if resp.EnableGeoCheckins != nil {
		fs.PresenceChecksEnabled = *resp.EnableGeoCheckins
	}
	if resp.EnableSocialVerification != nil {
		fs.SocialProofEnabled = *resp.EnableSocialVerification
	}
	if resp.EnableAutoPayout != nil {
		fs.AutoSettlementEnabled = *resp.EnableAutoPayout
	}
	return fs, nil
}
