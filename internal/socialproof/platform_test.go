package socialproof

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nilgate/pkg/domain-errors"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		rawURL string
		want   Platform
		ok     bool
	}{
		{"https://www.instagram.com/p/abc", PlatformInstagram, true},
		{"https://m.tiktok.com/@nilbx/video/1", PlatformTikTok, true},
		{"https://twitter.com/nilbx/status/1", PlatformTwitter, true},
		{"https://X.com/nilbx/status/1", PlatformTwitter, true},
		{"https://youtu.be/abc", PlatformYouTube, true},
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube, true},
		{"https://fb.com/story/1", PlatformFacebook, true},
		{"https://box.com/status/1", "", false},
		{"https://instagram.com.evil.io/p/abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.rawURL, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			got, ok := DetectPlatform(u)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		platform Platform
		errMsg   string
	}{
		{name: "instagram post", ref: " https://instagram.com/p/abc ", platform: PlatformInstagram},
		{name: "instagram reel", ref: "https://www.instagram.com/reel/abc", platform: PlatformInstagram},
		{name: "instagram profile", ref: "https://instagram.com/nilbx", errMsg: "Invalid Instagram post URL format"},
		{name: "tiktok video", ref: "https://www.tiktok.com/@nilbx/video/123", platform: PlatformTikTok},
		{name: "tiktok profile", ref: "https://www.tiktok.com/@nilbx", platform: PlatformTikTok},
		{name: "tiktok other page", ref: "https://www.tiktok.com/explore", errMsg: "Invalid TikTok video URL format"},
		{name: "x status", ref: "https://x.com/nilbx/status/1", platform: PlatformTwitter},
		{name: "x profile", ref: "https://x.com/nilbx", errMsg: "Invalid Twitter post URL format"},
		{name: "youtube any path", ref: "https://youtube.com/shorts/abc", platform: PlatformYouTube},
		{name: "facebook any path", ref: "https://facebook.com/nilbx/posts/1", platform: PlatformFacebook},
		{name: "unsupported host", ref: "https://example.com/p/1", errMsg: "not from a supported platform"},
		{name: "blank", ref: "  ", errMsg: "reference required"},
		{name: "not http", ref: "ftp://instagram.com/p/abc", errMsg: "http(s) URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.ref)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.platform, got.Platform)
			assert.NotContains(t, got.URL, " ")
		})
	}
}
