package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
)

var userCols = []string{"id", "email", "password_hash", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)

	return newStoreWithPool(mock), mock
}

func TestUsers_CreateUser(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantCode  string
	}{
		{
			name: "returns the stored user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice@example.com", "hash").
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow(int64(7), "alice@example.com", "hash", now, now))
			},
		},
		{
			name: "unique violation is a conflict",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice@example.com", "hash").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr:  store.ErrAlreadyExists,
			wantCode: "USER_EMAIL_TAKEN",
		},
		{
			name: "other errors are wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice@example.com", "hash").
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: "USER_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			u, err := s.Users().CreateUser(context.Background(), "alice@example.com", "hash")
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, int64(7), u.ID)
				assert.Equal(t, "alice@example.com", u.Email)
			} else {
				require.Error(t, err)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
				}
				oopsErr, ok := oops.AsOops(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, oopsErr.Code())
			}

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUsers_GetUserNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows(userCols))
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := s.Users().GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByID(context.Background(), 3)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_UpdatePasswordHash(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("new-hash", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("new-hash", int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, s.Users().UpdatePasswordHash(context.Background(), 1, "new-hash"))
	require.ErrorIs(t, s.Users().UpdatePasswordHash(context.Background(), 2, "new-hash"), store.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)
	revokedAt := time.Now()

	t.Run("revoke is an idempotent insert", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO revoked_tokens .* ON CONFLICT \(token_id\) DO NOTHING`).
			WithArgs("jti-1", revokedAt, exp, domain.ReasonLogout).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO revoked_tokens`).
			WithArgs("jti-1", revokedAt, exp, domain.ReasonLogout).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		rev := domain.Revocation{TokenID: "jti-1", RevokedAt: revokedAt, ExpiresAt: exp, Reason: domain.ReasonLogout}
		inserted, err := s.Revocations().Revoke(ctx, rev)
		require.NoError(t, err)
		require.True(t, inserted)

		inserted, err = s.Revocations().Revoke(ctx, rev)
		require.NoError(t, err)
		require.False(t, inserted, "second revoke hits the conflict")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("is revoked", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("jti-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		revoked, err := s.Revocations().IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lookup failure surfaces", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("jti-1").
			WillReturnError(errors.New("connection reset"))

		_, err := s.Revocations().IsRevoked(ctx, "jti-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("delete expired reports rows", func(t *testing.T) {
		s, mock := newMockStore(t)
		now := time.Now()
		mock.ExpectExec(`DELETE FROM revoked_tokens WHERE expires_at <= \$1`).
			WithArgs(now).
			WillReturnResult(pgxmock.NewResult("DELETE", 4))

		n, err := s.Revocations().DeleteExpired(ctx, now)
		require.NoError(t, err)
		require.Equal(t, int64(4), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs("h", int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().UpdatePasswordHash(ctx, 1, "h")
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error { return boom })
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgres://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("pgx5://u:p@h/db"))
}

func TestApplyMigrations_RequiresURL(t *testing.T) {
	s, _ := newMockStore(t)
	require.Error(t, s.ApplyMigrations())
}
