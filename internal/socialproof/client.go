package socialproof

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"nilgate/pkg/platform/jsonclient"
)

type verifyRequest struct {
	SocialURL string `json:"social_url"`
}

type verifyResponse struct {
	Verified            bool   `json:"verified"`
	Status              string `json:"status"`
	AutoPayoutTriggered bool   `json:"auto_payout_triggered"`
}

// Client is the HTTP collaborator (POST {base}/checkins/{id}/social-verify).
type Client struct {
	http *jsonclient.Client
}

func NewClient(baseURL string, timeout time.Duration, opts ...jsonclient.Option) (*Client, error) {
	hc, err := jsonclient.New(baseURL, timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("social proof client: %w", err)
	}
	return &Client{http: hc}, nil
}

func (c *Client) VerifyPost(ctx context.Context, checkinID, socialURL string) (*Verdict, error) {
	var resp verifyResponse
	path := "/checkins/" + url.PathEscape(checkinID) + "/social-verify"
	if err := c.http.Do(ctx, http.MethodPost, path, verifyRequest{SocialURL: socialURL}, &resp); err != nil {
		return nil, jsonclient.ToDomain(err, "social verification")
	}
	return &Verdict{
		Verified:            resp.Verified,
		Status:              resp.Status,
		AutoPayoutTriggered: resp.AutoPayoutTriggered,
	}, nil
}
