package socialproof

import (
	"net/url"
	"strings"

	dErrors "nilgate/pkg/domain-errors"
)

// Platform is a social network the collaborator can judge posts on.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
)

// platformDomains maps registrable domains to platforms. A host matches when
// it equals the domain or is a subdomain of it.
var platformDomains = []struct {
	domain   string
	platform Platform
}{
	{"instagram.com", PlatformInstagram},
	{"tiktok.com", PlatformTikTok},
	{"twitter.com", PlatformTwitter},
	{"x.com", PlatformTwitter},
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"facebook.com", PlatformFacebook},
	{"fb.com", PlatformFacebook},
}

// postFormats lists the path markers a post URL must carry. Platforms without
// an entry accept any path.
var postFormats = map[Platform]struct {
	markers []string
	message string
}{
	PlatformInstagram: {[]string{"/p/", "/reel/"}, "Invalid Instagram post URL format: expected /p/ or /reel/"},
	PlatformTikTok:    {[]string{"/video/", "/@"}, "Invalid TikTok video URL format: expected /video/ or /@"},
	PlatformTwitter:   {[]string{"/status/"}, "Invalid Twitter post URL format: expected /status/"},
}

// DetectPlatform returns the platform hosting u, or false for unsupported hosts.
func DetectPlatform(u *url.URL) (Platform, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range platformDomains {
		if host == d.domain || strings.HasSuffix(host, "."+d.domain) {
			return d.platform, true
		}
	}
	return "", false
}

// Reference is a validated link to a public post.
type Reference struct {
	URL      string
	Platform Platform
}

// ParseReference trims the reference, requires an absolute http(s) URL on a
// supported platform and checks the platform's post format.
func ParseReference(reference string) (Reference, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return Reference{}, dErrors.New(dErrors.CodeValidation, "reference required")
	}
	if len(ref) > maxReferenceLength {
		return Reference{}, dErrors.New(dErrors.CodeValidation, "reference is too long")
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Reference{}, dErrors.New(dErrors.CodeValidation, "reference must be an http(s) URL to a public post")
	}
	platform, ok := DetectPlatform(u)
	if !ok {
		return Reference{}, dErrors.New(dErrors.CodeValidation,
			"URL is not from a supported platform (instagram, tiktok, twitter/x, youtube, facebook)")
	}
	if format, ok := postFormats[platform]; ok && !containsAny(u.EscapedPath(), format.markers) {
		return Reference{}, dErrors.New(dErrors.CodeValidation, format.message)
	}
	return Reference{URL: ref, Platform: platform}, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
