package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories hang off it so a Tx can expose exactly the
// same surface and nobody starts a transaction inside a transaction.
type Store interface {
	Users() Users
	Revocations() Revocations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail is an exact, case-sensitive match on email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user and returns it with the store-assigned id.
	// A duplicate email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error)

	// UpdatePasswordHash sets password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, newHash string) error

	// DeleteUser removes a user. Only reachable from the admin CLI.
	DeleteUser(ctx context.Context, id int64) error
}

type Revocations interface {
	// Revoke records tokenID as revoked and reports whether this call inserted
	// the record. Revoking an id twice is a no-op that keeps the first record
	// and returns false.
	Revoke(ctx context.Context, r domain.Revocation) (bool, error)

	// IsRevoked reports whether tokenID has a revocation record.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// DeleteExpired removes records whose revoked token has expired by now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
