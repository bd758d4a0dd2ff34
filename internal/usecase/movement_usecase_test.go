package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/internal/usecase/mocks"
)

func seedMovements(t *testing.T) (*mocks.MockAccountRepository, *mocks.MockMovementRepository) {
	t.Helper()

	accounts := mocks.NewMockAccountRepository()
	acc, _ := domain.NewAccount(100001, 1, domain.AccountKindSavings, dec("0"), fixedNow)
	accounts.Seed(acc)

	movements := mocks.NewMockMovementRepository()
	days := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	for _, at := range days {
		m := &domain.Movement{AccountNumber: 100001, Kind: domain.MovementKindDeposit, Amount: dec("1"), Active: true, OccurredAt: at}
		if err := movements.Create(context.Background(), nil, m); err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}
	return accounts, movements
}

func TestMovementUseCase_FindMovements_Ordering(t *testing.T) {
	accounts, movements := seedMovements(t)
	uc := usecase.NewMovementUseCase(mocks.NewMockTransactionManager(), accounts, movements)

	got, err := uc.FindMovements(context.Background(), 100001)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	wantIDs := []int64{4, 2, 3, 1}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d movements, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: expected movement %d, got %d", i, id, got[i].ID)
		}
	}
}

func TestMovementUseCase_FindMovementsBetween(t *testing.T) {
	accounts, movements := seedMovements(t)
	uc := usecase.NewMovementUseCase(mocks.NewMockTransactionManager(), accounts, movements)
	ctx := context.Background()

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	got, err := uc.FindMovementsBetween(ctx, 100001, day, day)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("expected movements 2 and 3 on Jan 2, got %+v", got)
	}

	if _, err := uc.FindMovementsBetween(ctx, 100001, day.AddDate(0, 0, 1), day); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}

	if _, err := uc.FindMovementsBetween(ctx, 123456, day, day); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestMovementUseCase_UpdateDescription(t *testing.T) {
	accounts, movements := seedMovements(t)
	uc := usecase.NewMovementUseCase(mocks.NewMockTransactionManager(), accounts, movements)
	ctx := context.Background()

	updated, err := uc.UpdateDescription(ctx, 1, "Pago de nómina")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "Pago de nómina" {
		t.Fatalf("unexpected description %q", updated.Description)
	}
	stored, _ := movements.GetByID(ctx, 1)
	if stored.Description != "Pago de nómina" || !stored.Amount.Equal(dec("1")) {
		t.Fatalf("expected description change only, got %+v", stored)
	}

	_ = movements.MarkReversed(ctx, nil, 2, "Operacion Anulada")
	if _, err := uc.UpdateDescription(ctx, 2, "late edit"); !errors.Is(err, domain.ErrAlreadyReversed) {
		t.Fatalf("expected ErrAlreadyReversed, got %v", err)
	}

	if _, err := uc.UpdateDescription(ctx, 99, "x"); !errors.Is(err, domain.ErrMovementNotFound) {
		t.Fatalf("expected ErrMovementNotFound, got %v", err)
	}
}
