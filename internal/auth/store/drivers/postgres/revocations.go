package postgres

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
)

type revocationsRepo struct {
	q querier
}

func (r *revocationsRepo) Revoke(ctx context.Context, rev domain.Revocation) (bool, error) {
	revokedAt := rev.RevokedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now()
	}

	result, err := r.q.Exec(ctx, `
		INSERT INTO revoked_tokens (token_id, revoked_at, expires_at, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_id) DO NOTHING
	`, rev.TokenID, revokedAt, rev.ExpiresAt, rev.Reason)
	if err != nil {
		return false, oops.Code("REVOCATION_CREATE_FAILED").
			With("operation", "insert revoked_token").
			With("reason", rev.Reason).
			Wrap(err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)
	`, tokenID).Scan(&exists)
	if err != nil {
		return false, oops.Code("REVOCATION_LOOKUP_FAILED").
			With("operation", "select revoked_token").
			Wrap(err)
	}
	return exists, nil
}

func (r *revocationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at <= $1
	`, now)
	if err != nil {
		return 0, oops.Code("REVOCATION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired revoked_tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}
