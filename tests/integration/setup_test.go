package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/repository/postgres"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/tests/testutil"
)

type ledgerEnv struct {
	db             *testutil.TestDB
	accountRepo    *postgres.AccountRepository
	movementRepo   *postgres.MovementRepository
	outboxRepo     *postgres.OutboxRepository
	accounts       *usecase.AccountUseCase
	ledger         *usecase.LedgerUseCase
	movements      *usecase.MovementUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)
	db.TruncateAll(context.Background())

	pool := db.Pool
	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier(postgres.WithMaxRetries(10))
	idGen := postgres.NewULIDGenerator()

	env := &ledgerEnv{
		db:           db,
		accountRepo:  postgres.NewAccountRepository(pool),
		movementRepo: postgres.NewMovementRepository(pool),
		outboxRepo:   postgres.NewOutboxRepository(pool),
	}
	env.accounts = usecase.NewAccountUseCase(txManager, env.accountRepo, env.outboxRepo, idGen, nil).WithRetrier(retrier)
	env.ledger = usecase.NewLedgerUseCase(txManager, env.accountRepo, env.movementRepo, env.outboxRepo, idGen, nil).WithRetrier(retrier)
	env.movements = usecase.NewMovementUseCase(txManager, env.accountRepo, env.movementRepo)
	env.reconciliation = usecase.NewReconciliationUseCase(env.accountRepo, env.movementRepo)
	return env
}

// ledgerWithoutOutbox builds a ledger whose events are discarded, for tests
// that only care about balances.
func (env *ledgerEnv) ledgerWithoutOutbox() *usecase.LedgerUseCase {
	return usecase.NewLedgerUseCase(
		postgres.NewTxManager(env.db.Pool),
		env.accountRepo,
		env.movementRepo,
		postgres.NewNullOutboxRepository(),
		postgres.NewULIDGenerator(),
		nil,
	).WithRetrier(postgres.NewRetrier(postgres.WithMaxRetries(10)))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
