package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iho/bankledger/internal/usecase"
)

var _ usecase.TransactionManager = (*TxManager)(nil)

type pgxPool interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. Units of work run at
// READ COMMITTED; balance safety comes from the row locks taken with FOR UPDATE.
type TxManager struct {
	pool pgxPool
	opts pgx.TxOptions
}

// NewTxManager creates a new TxManager over a pgxpool.Pool or a pgxmock pool.
func NewTxManager(pool pgxPool) *TxManager {
	return &TxManager{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, m.opts)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx        pgx.Tx
	committed bool
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return err
	}
	t.committed = true
	return nil
}

// Rollback rolls back the transaction. It is a no-op after a successful
// Commit so callers can defer it unconditionally.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
