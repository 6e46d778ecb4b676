package platform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Platform names
const (
	PlatformYouTube  = "youtube"
	PlatformFacebook = "facebook"
	PlatformX        = "x"
)

// ErrUnsupportedURL is returned for URLs that match no supported platform
var ErrUnsupportedURL = errors.New("unsupported platform URL")

// URLRule recognises the item URLs of one platform
type URLRule struct {
	Platform string
	Pattern  *regexp.Regexp
}

// DefaultURLRules returns the allow-list of supported platforms.
// Every pattern is case-insensitive and anchored to the whole URL.
func DefaultURLRules() []URLRule {
	return []URLRule{
		{
			Platform: PlatformYouTube,
			Pattern: regexp.MustCompile(`(?i)^https?://(?:(?:www|m|music)\.)?` +
				`(?:youtube\.com/(?:watch\?(?:\S*&)?v=[\w-]+|shorts/[\w-]+|embed/[\w-]+|playlist\?(?:\S*&)?list=[\w-]+)` +
				`|youtu\.be/[\w-]+)\S*$`),
		},
		{
			Platform: PlatformFacebook,
			Pattern: regexp.MustCompile(`(?i)^https?://(?:(?:www|m|web|mbasic)\.)?` +
				`(?:facebook\.com/(?:[\w.-]+/(?:videos|posts|photos)/\S+|groups/[\w.-]+/posts/\d+|watch/?\?(?:\S*&)?v=\d+|reel/\d+|share/[vr]/[\w-]+|video\.php\?\S+|photo(?:\.php|/)\?\S*fbid=\d+|permalink\.php\?\S+)` +
				`|fb\.watch/[\w-]+)\S*$`),
		},
		{
			Platform: PlatformX,
			Pattern:  regexp.MustCompile(`(?i)^https?://(?:(?:www|mobile)\.)?(?:x|twitter)\.com/\w+/status/\d+\S*$`),
		},
	}
}

// URLValidator gates inbound URLs against the platform allow-list
type URLValidator struct {
	rules []URLRule
}

// NewURLValidator creates a validator; no rules means the default allow-list
func NewURLValidator(rules ...URLRule) *URLValidator {
	if len(rules) == 0 {
		rules = DefaultURLRules()
	}
	return &URLValidator{rules: rules}
}

// Platform returns the first platform whose rule matches url
func (v *URLValidator) Platform(url string) (string, bool) {
	url = strings.TrimSpace(url)
	for _, rule := range v.rules {
		if rule.Pattern.MatchString(url) {
			return rule.Platform, true
		}
	}
	return "", false
}

// Validate returns ErrUnsupportedURL unless url matches a supported platform
func (v *URLValidator) Validate(url string) error {
	if _, ok := v.Platform(url); !ok {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedURL, url, strings.Join(v.Platforms(), ", "))
	}
	return nil
}

// Platforms lists the supported platform names in rule order
func (v *URLValidator) Platforms() []string {
	names := make([]string, 0, len(v.rules))
	for _, rule := range v.rules {
		names = append(names, rule.Platform)
	}
	return names
}
