package domain

import "time"

// Session is what a successful login produces. The access token goes back in
// the response body; the refresh token is bound to an HttpOnly cookie by the
// transport and never appears in a body.
type Session struct {
	AccessToken      string
	AccessExpiresIn  time.Duration
	RefreshToken     string
	RefreshTokenID   string // "jti" of RefreshToken
	RefreshExpiresAt time.Time
}

// Revocation is a persisted record that a token id must no longer be honoured.
// ExpiresAt is the natural expiry of the revoked token; once it passes the
// record carries no information and housekeeping may delete it.
type Revocation struct {
	TokenID   string
	RevokedAt time.Time
	ExpiresAt time.Time
	Reason    string
}

// Revocation reasons.
const (
	ReasonLogout    = "logout"
	ReasonRotated   = "rotated"
	ReasonResetUsed = "reset_used"
	ReasonAdmin     = "admin"
)
