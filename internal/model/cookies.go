package model

import "time"

// CookieRecord is one data line of a Netscape cookie-jar file
type CookieRecord struct {
	Domain string
	Flag   bool
	Path   string
	Secure bool
	// Expires is epoch seconds; 0 marks a session-only cookie
	Expires int64
	Name    string
	Value   string
}

// IsSession returns true if the cookie has no persistent expiry
func (c CookieRecord) IsSession() bool {
	return c.Expires <= 0
}

// ExpiresAt returns the expiry as a time value
func (c CookieRecord) ExpiresAt() time.Time {
	return time.Unix(c.Expires, 0)
}

// CookiesStatus is the derived assessment of a cookie-jar file at one instant
type CookiesStatus struct {
	Exists          bool        `json:"exists"`
	Status          CookieState `json:"status"`
	Message         string      `json:"message"`
	CookieCount     int         `json:"cookie_count"`
	AuthCookieCount int         `json:"auth_cookie_count"`
	ExpiresAt       *time.Time  `json:"expires_at,omitempty"`
	DaysUntilExpiry int         `json:"days_until_expiry"`
	CanDownload     *bool       `json:"can_download,omitempty"`
}

// Usable returns true if the jar exists and holds cookies worth passing along
func (s CookiesStatus) Usable() bool {
	return s.Exists && s.CookieCount > 0 && s.Status.HasJar()
}
