package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
)

type revocationsRepo struct {
	db dbtx
}

func (r *revocationsRepo) Revoke(ctx context.Context, rev domain.Revocation) (bool, error) {
	revokedAt := rev.RevokedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (token_id, revoked_at, expires_at, reason)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (token_id) DO NOTHING`,
		rev.TokenID, revokedAt.Unix(), rev.ExpiresAt.Unix(), rev.Reason)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = ?)`, tokenID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

func (r *revocationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
