package service

import (
	"time"

	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
)

// ResetTokens issues and verifies password reset tokens.
type ResetTokens struct {
	Codec *jwtx.Codec
	TTL   time.Duration
}

// ResetGrant is what a verified reset token authorises.
type ResetGrant struct {
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Issue mints a reset token bound to email.
func (r *ResetTokens) Issue(email string) (string, error) {
	return r.Codec.Sign(jwtx.NewClaims(email, jwtx.PurposeReset), r.TTL)
}

// Verify checks a reset token. Every failure is ErrInvalidToken.
func (r *ResetTokens) Verify(token string) (ResetGrant, error) {
	claims, err := r.Codec.Verify(token)
	if err != nil {
		return ResetGrant{}, collapseTokenError(err)
	}
	if err := claims.ValidatePurpose(jwtx.PurposeReset); err != nil {
		return ResetGrant{}, collapseTokenError(err)
	}
	if claims.Subject == "" {
		return ResetGrant{}, ErrInvalidToken
	}

	return ResetGrant{
		Email:     claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAtTime(),
	}, nil
}
