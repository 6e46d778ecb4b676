package model

// CookieState represents the assessed state of the configured cookie jar
type CookieState string

const (
	// CookieStateNotConfigured means no cookie file path is configured
	CookieStateNotConfigured CookieState = "not_configured"

	// CookieStateMissing means the configured path does not exist
	CookieStateMissing CookieState = "missing"

	// CookieStateEmpty means the file holds no valid cookie lines
	CookieStateEmpty CookieState = "empty"

	// CookieStateUnknown means no expiry could be determined
	CookieStateUnknown CookieState = "unknown"

	// CookieStateValid means cookies are usable for more than a week
	CookieStateValid CookieState = "valid"

	// CookieStateExpiringSoon means auth cookies expire within a week
	CookieStateExpiringSoon CookieState = "expiring_soon"

	// CookieStateExpired means the earliest auth cookie is already expired
	CookieStateExpired CookieState = "expired"

	// CookieStateInvalid means the live service rejected the session
	CookieStateInvalid CookieState = "invalid"

	// CookieStateError means the file could not be read or parsed
	CookieStateError CookieState = "error"
)

// String returns the string representation of CookieState
func (cs CookieState) String() string {
	return string(cs)
}

// HasJar returns true if the state implies a readable file with cookies in it
func (cs CookieState) HasJar() bool {
	switch cs {
	case CookieStateUnknown, CookieStateValid, CookieStateExpiringSoon, CookieStateExpired, CookieStateInvalid:
		return true
	}
	return false
}

// NeedsAttention returns true if an operator should refresh or fix the cookies
func (cs CookieState) NeedsAttention() bool {
	return cs != CookieStateValid && cs != CookieStateNotConfigured
}
