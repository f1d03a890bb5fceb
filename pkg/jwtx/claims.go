package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. These can be overridden per-service.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived because access tokens cannot be revoked individually.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultResetTokenTTL is the default lifetime for password reset tokens.
	DefaultResetTokenTTL = 15 * time.Minute
)

// Purpose tells the verifier which flow a token was minted for. A token is
// only ever accepted by the flow matching its purpose.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
	PurposeReset   Purpose = "reset"
)

// Claims are the claims carried by every token we mint.
type Claims struct {
	jwt.RegisteredClaims

	// Purpose of the token, see the Purpose constants.
	Purpose Purpose `json:"pur,omitempty"`
}

// NewClaims builds claims for subject with the given purpose. Refresh and
// reset tokens get a fresh "jti" so they can be revoked or consumed; access
// tokens are stateless and carry none.
func NewClaims(subject string, purpose Purpose) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
		Purpose: purpose,
	}

	if purpose != PurposeAccess {
		c.ID = NewJTI()
	}

	return c
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidatePurpose rejects tokens minted for a different flow. Tokens without
// a purpose are rejected too.
func (c *Claims) ValidatePurpose(expected Purpose) error {
	if c.Purpose != expected {
		return ErrPurpose
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) at now. A token
// without "exp" is treated as invalid, and a token expiring exactly at now
// is already expired.
func (c *Claims) ValidateExpiry(now time.Time) error {
	return c.ValidateExpiryWithLeeway(now, 0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}

	if !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	return nil
}

// ExpiresAtTime returns the "exp" claim as a time, or the zero time when it
// is missing.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
