package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
)

var errNestedTx = errors.New("postgres: nested transactions are not supported")

type txStore struct {
	ctx context.Context
	tx  pgx.Tx
}

func newTx(ctx context.Context, tx pgx.Tx) *txStore {
	return &txStore{ctx: ctx, tx: tx}
}

func (t *txStore) Commit() error {
	if err := t.tx.Commit(t.ctx); err != nil {
		return oops.Code("POSTGRES_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

func (t *txStore) Rollback() error {
	err := t.tx.Rollback(t.ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errNestedTx
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

func (t *txStore) Users() store.Users             { return &usersRepo{q: t.tx} }
func (t *txStore) Revocations() store.Revocations { return &revocationsRepo{q: t.tx} }
