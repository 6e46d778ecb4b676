package cookies

import (
	"context"
	"strings"
)

// Prober runs a metadata-only extraction of url with the given cookie jar.
// The returned error carries the engine's diagnostic text.
type Prober interface {
	Probe(ctx context.Context, cookieFile, url string) error
}

// ProberFunc adapts a plain function to Prober
type ProberFunc func(ctx context.Context, cookieFile, url string) error

// Probe calls f
func (f ProberFunc) Probe(ctx context.Context, cookieFile, url string) error {
	return f(ctx, cookieFile, url)
}

// authRejectionPhrases are lower-case fragments of engine errors that mean
// the session cookies were refused
var authRejectionPhrases = []string{
	"sign in to confirm",
	"not a bot",
	"cookies are no longer valid",
	"cookies no longer valid",
	"login required",
	"login_required",
	"please sign in",
	"requires authentication",
	"use --cookies",
}

// IsAuthRejection reports whether an engine error message indicates that the
// platform rejected the session
func IsAuthRejection(message string) bool {
	message = strings.ToLower(message)
	for _, phrase := range authRejectionPhrases {
		if strings.Contains(message, phrase) {
			return true
		}
	}
	return false
}

// firstLine trims a multi-line engine message to its first non-empty line
func firstLine(message string) string {
	for _, line := range strings.Split(message, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
