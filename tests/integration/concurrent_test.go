package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func TestConcurrentWithdrawals(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	t.Run("no overdraft under contention", func(t *testing.T) {
		acc := env.db.CreateTestAccount(ctx, 200001, domain.AccountKindSavings, dec("500"))
		ledger := env.ledgerWithoutOutbox()

		const attempts = 80
		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			rejectCount  atomic.Int32
			otherErr     atomic.Value
		)

		wg.Add(attempts)
		for range attempts {
			go func() {
				defer wg.Done()

				_, err := ledger.Apply(ctx, usecase.ApplyInput{
					AccountNumber: acc.Number,
					Kind:          domain.MovementKindWithdrawal,
					Amount:        dec("10"),
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrInsufficientFunds):
					rejectCount.Add(1)
				default:
					otherErr.Store(err)
				}
			}()
		}
		wg.Wait()

		if err, ok := otherErr.Load().(error); ok {
			t.Fatalf("unexpected error: %v", err)
		}
		assert.Equal(t, int32(50), successCount.Load())
		assert.Equal(t, int32(30), rejectCount.Load())

		stored, err := env.accountRepo.GetByNumber(ctx, acc.Number)
		require.NoError(t, err)
		assert.True(t, stored.AvailableBalance.IsZero(), "balance %s", stored.AvailableBalance)
		assert.Equal(t, 50, env.db.CountMovements(ctx, acc.Number))
	})

	t.Run("mixed deposits and withdrawals reconcile", func(t *testing.T) {
		acc := env.db.CreateTestAccount(ctx, 200002, domain.AccountKindChecking, dec("100"))

		const workers = 40
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		wg.Add(workers)
		for i := range workers {
			go func() {
				defer wg.Done()

				kind := domain.MovementKindDeposit
				if i%2 == 1 {
					kind = domain.MovementKindWithdrawal
				}
				_, err := env.ledger.Apply(ctx, usecase.ApplyInput{
					AccountNumber: acc.Number,
					Kind:          kind,
					Amount:        dec("5"),
				})
				if err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Errorf("apply: %v", err)
		}

		stored, err := env.accountRepo.GetByNumber(ctx, acc.Number)
		require.NoError(t, err)
		assert.True(t, stored.AvailableBalance.Equal(dec("100")), "balance %s", stored.AvailableBalance)

		result, err := env.reconciliation.ReconcileAccount(ctx, acc.Number)
		require.NoError(t, err)
		assert.True(t, result.IsReconciled)
	})

	t.Run("concurrent reversals void once", func(t *testing.T) {
		acc := env.db.CreateTestAccount(ctx, 200003, domain.AccountKindSavings, dec("0"))
		m, err := env.ledger.Apply(ctx, usecase.ApplyInput{
			AccountNumber: acc.Number,
			Kind:          domain.MovementKindDeposit,
			Amount:        dec("25"),
		})
		require.NoError(t, err)

		const attempts = 10
		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
		)
		wg.Add(attempts)
		for range attempts {
			go func() {
				defer wg.Done()
				if _, err := env.ledger.Reverse(ctx, m.ID); err == nil {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successCount.Load())
		stored, err := env.accountRepo.GetByNumber(ctx, acc.Number)
		require.NoError(t, err)
		assert.True(t, stored.AvailableBalance.IsZero())
	})
}
