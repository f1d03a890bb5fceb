package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
)

// RevocationRegistry records revoked refresh and reset token ids.
type RevocationRegistry struct {
	Store store.Store
}

// Revoke marks tokenID as revoked until expiresAt. Revoking the same id
// again succeeds and keeps the original record.
func (r *RevocationRegistry) Revoke(ctx context.Context, tokenID string, expiresAt time.Time, reason string) error {
	_, err := r.Claim(ctx, tokenID, expiresAt, reason)
	return err
}

// Claim revokes tokenID and reports whether this call was the one that did
// it. Exactly one of several concurrent claims on the same id wins, which
// makes it the guard for single-use tokens.
func (r *RevocationRegistry) Claim(ctx context.Context, tokenID string, expiresAt time.Time, reason string) (bool, error) {
	return r.Store.Revocations().Revoke(ctx, domain.Revocation{
		TokenID:   tokenID,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
		Reason:    reason,
	})
}

// IsRevoked reports whether tokenID was revoked.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.Store.Revocations().IsRevoked(ctx, tokenID)
}

// Within returns a registry bound to tx.
func (r *RevocationRegistry) Within(tx store.Tx) *RevocationRegistry {
	return &RevocationRegistry{Store: tx}
}
