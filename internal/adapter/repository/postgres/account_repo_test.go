package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

var accountColumns = []string{
	"number", "client_id", "kind", "opening_balance", "available_balance", "active",
	"initial_deposit_recorded", "version", "created_at", "closed_at", "updated_at",
}

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	tx, err := NewTxManager(pool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func TestAccountRepository_GetByNumber(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE number = $1")).
		WithArgs(int64(478758)).
		WillReturnRows(pool.NewRows(accountColumns).
			AddRow(int64(478758), int64(7), "SAVINGS", "2000.0000", nil, true, false, int64(3), created, nil, created))

	acc, err := NewAccountRepository(pool).GetByNumber(context.Background(), 478758)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.Kind != domain.AccountKindSavings || acc.ClientID != 7 || acc.Version != 3 {
		t.Fatalf("unexpected account %+v", acc)
	}
	// A NULL available balance reads as the opening balance.
	if !acc.AvailableBalance.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected available balance 2000, got %s", acc.AvailableBalance)
	}
	if acc.ClosedAt != nil {
		t.Fatalf("expected open account, got closed at %v", acc.ClosedAt)
	}
	assertExpectations(t, pool)
}

func TestAccountRepository_GetByNumberNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE number = $1")).
		WithArgs(int64(100001)).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewAccountRepository(pool).GetByNumber(context.Background(), 100001)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(anyArgs(11)...).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	acc, _ := domain.NewAccount(100001, 1, domain.AccountKindChecking, decimal.NewFromInt(5), time.Now())
	err := NewAccountRepository(pool).Create(context.Background(), tx, acc)
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	assertExpectations(t, pool)
}

func TestAccountRepository_Update(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewAccountRepository(pool)

	acc, _ := domain.NewAccount(100001, 1, domain.AccountKindChecking, decimal.NewFromInt(5), time.Now())

	pool.ExpectExec(regexp.QuoteMeta("UPDATE accounts")).
		WithArgs(int64(100001), pgxmock.AnyArg(), true, false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Update(context.Background(), tx, acc); err != nil {
		t.Fatalf("update: %v", err)
	}
	if acc.Version != 1 {
		t.Fatalf("expected version bump, got %d", acc.Version)
	}

	pool.ExpectExec(regexp.QuoteMeta("UPDATE accounts")).
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.Update(context.Background(), tx, acc); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	assertExpectations(t, pool)
}

func TestAccountRepository_MaxNumber(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(number), 0)")).
		WillReturnRows(pool.NewRows([]string{"coalesce"}).AddRow(int64(100041)))

	n, err := NewAccountRepository(pool).MaxNumber(context.Background(), nil)
	if err != nil {
		t.Fatalf("max number: %v", err)
	}
	if n != 100041 {
		t.Fatalf("expected 100041, got %d", n)
	}
}

func TestAccountRepository_RejectsForeignTransaction(t *testing.T) {
	pool := newMockPool(t)
	acc, _ := domain.NewAccount(100001, 1, domain.AccountKindChecking, decimal.NewFromInt(5), time.Now())

	if err := NewAccountRepository(pool).Create(context.Background(), foreignTx{}, acc); err == nil {
		t.Fatal("expected error for non-postgres transaction")
	}
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }
