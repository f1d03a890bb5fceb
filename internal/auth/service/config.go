package service

import (
	"time"

	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
)

// Config holds the immutable knobs of the auth flows. It is built once at
// startup and passed by value.
type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration

	// ResetSingleUse consumes a reset token on its first successful use.
	ResetSingleUse bool

	// RotateRefresh revokes the presented refresh token on every refresh and
	// hands out a new one.
	RotateRefresh bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		AccessTTL:      jwtx.DefaultAccessTokenTTL,
		RefreshTTL:     jwtx.DefaultRefreshTokenTTL,
		ResetTTL:       jwtx.DefaultResetTokenTTL,
		ResetSingleUse: true,
		RotateRefresh:  false,
	}
}
