package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, password_hash, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(store.ErrNotFound)
	}
	return u, err
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, oops.Code("USER_NOT_FOUND").Wrap(store.ErrNotFound)
	}
	return u, err
}

func (r *usersRepo) CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING `+userColumns, email, passwordHash)

	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return domain.User{}, oops.Code("USER_EMAIL_TAKEN").
			With("operation", "insert user").
			Wrap(store.ErrAlreadyExists)
	}
	if err != nil {
		return domain.User{}, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, newHash string) error {
	result, err := r.q.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, newHash, id)
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password_hash").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(store.ErrNotFound)
	}
	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(store.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
