package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func TestApplyMovements(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	acc := env.db.CreateTestAccount(ctx, 478758, domain.AccountKindSavings, dec("2000"))

	t.Run("withdrawal lowers the balance", func(t *testing.T) {
		m, err := env.ledger.Apply(ctx, usecase.ApplyInput{
			AccountNumber: acc.Number,
			Kind:          domain.MovementKindWithdrawal,
			Amount:        dec("575"),
			Description:   "Retiro de 575",
		})
		require.NoError(t, err)
		assert.True(t, m.Amount.Equal(dec("-575")))
		assert.True(t, m.ResultingBalance.Equal(dec("1425")))

		stored, err := env.accountRepo.GetByNumber(ctx, acc.Number)
		require.NoError(t, err)
		assert.True(t, stored.AvailableBalance.Equal(dec("1425")))
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("deposit raises the balance", func(t *testing.T) {
		m, err := env.ledger.Apply(ctx, usecase.ApplyInput{
			AccountNumber: acc.Number,
			Kind:          domain.MovementKindDeposit,
			Amount:        dec("600.1234"),
			Description:   "Deposito de 600",
		})
		require.NoError(t, err)
		assert.True(t, m.ResultingBalance.Equal(dec("2025.1234")))
	})

	t.Run("overdraft is rejected without side effects", func(t *testing.T) {
		before := env.db.CountMovements(ctx, acc.Number)

		_, err := env.ledger.Apply(ctx, usecase.ApplyInput{
			AccountNumber: acc.Number,
			Kind:          domain.MovementKindWithdrawal,
			Amount:        dec("5000"),
		})
		require.Error(t, err)

		var insufficient *domain.InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assert.True(t, insufficient.Balance.Equal(dec("2025.1234")))
		assert.Equal(t, before, env.db.CountMovements(ctx, acc.Number))
	})

	t.Run("withdrawing the exact balance leaves zero", func(t *testing.T) {
		m, err := env.ledger.Apply(ctx, usecase.ApplyInput{
			AccountNumber: acc.Number,
			Kind:          domain.MovementKindWithdrawal,
			Amount:        dec("2025.1234"),
		})
		require.NoError(t, err)
		assert.True(t, m.ResultingBalance.IsZero())
	})

	t.Run("inactive accounts reject movements", func(t *testing.T) {
		_, err := env.accounts.CloseAccount(ctx, acc.Number)
		require.NoError(t, err)

		_, err = env.ledger.Apply(ctx, usecase.ApplyInput{
			AccountNumber: acc.Number,
			Kind:          domain.MovementKindDeposit,
			Amount:        dec("1"),
		})
		assert.ErrorIs(t, err, domain.ErrAccountInactive)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := env.ledger.Apply(ctx, usecase.ApplyInput{
			AccountNumber: 999999,
			Kind:          domain.MovementKindDeposit,
			Amount:        dec("1"),
		})
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("statement is newest first and reconciles", func(t *testing.T) {
		got, err := env.movements.FindMovements(ctx, acc.Number)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := 1; i < len(got); i++ {
			assert.Greater(t, got[i-1].ID, got[i].ID)
		}

		result, err := env.reconciliation.ReconcileAccount(ctx, acc.Number)
		require.NoError(t, err)
		assert.True(t, result.IsReconciled, "difference %s", result.Difference)
	})
}

func TestInitialDepositIsNotDoubleCounted(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	acc, err := env.accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		ClientID:       5,
		Kind:           domain.AccountKindChecking,
		OpeningBalance: dec("1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.FirstAccountNumber, acc.Number)

	first, err := env.ledger.Apply(ctx, usecase.ApplyInput{
		AccountNumber:  acc.Number,
		Kind:           domain.MovementKindDeposit,
		Amount:         dec("1000"),
		Description:    "Deposito inicial",
		InitialDeposit: true,
	})
	require.NoError(t, err)
	assert.True(t, first.OpeningEntry)
	assert.True(t, first.ResultingBalance.Equal(dec("1000")))

	second, err := env.ledger.Apply(ctx, usecase.ApplyInput{
		AccountNumber: acc.Number,
		Kind:          domain.MovementKindDeposit,
		Amount:        dec("250"),
		Description:   "Deposito",
	})
	require.NoError(t, err)
	assert.False(t, second.OpeningEntry)
	assert.True(t, second.ResultingBalance.Equal(dec("1250")))

	result, err := env.reconciliation.ReconcileAccount(ctx, acc.Number)
	require.NoError(t, err)
	assert.True(t, result.IsReconciled, "difference %s", result.Difference)
}

func TestAccountLifecycle(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	created, err := env.accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		Number:         225487,
		ClientID:       2,
		Kind:           domain.AccountKindSavings,
		OpeningBalance: dec("100"),
	})
	require.NoError(t, err)

	_, err = env.accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		Number:         225487,
		ClientID:       3,
		Kind:           domain.AccountKindSavings,
		OpeningBalance: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrAccountExists)

	next, err := env.accounts.CreateAccount(ctx, usecase.CreateAccountInput{ClientID: 2, Kind: domain.AccountKindChecking, OpeningBalance: dec("0")})
	require.NoError(t, err)
	assert.Equal(t, created.Number+1, next.Number)

	closed, err := env.accounts.CloseAccount(ctx, created.Number)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	active := true
	list, err := env.accounts.ListAccounts(ctx, domain.AccountFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, next.Number, list[0].Number)

	reopened, err := env.accounts.SetAccountActive(ctx, created.Number, true)
	require.NoError(t, err)
	assert.True(t, reopened.Active)
	assert.NotNil(t, reopened.ClosedAt)
}
