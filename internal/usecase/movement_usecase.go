package usecase

import (
	"context"
	"time"

	"github.com/iho/bankledger/internal/domain"
)

// MovementUseCase serves movement history queries and annotations.
type MovementUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(txManager TransactionManager, accountRepo AccountRepository, movementRepo MovementRepository) *MovementUseCase {
	return &MovementUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
	}
}

// GetMovement retrieves a movement by ID.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	return uc.movementRepo.GetByID(ctx, id)
}

// FindMovements lists all movements of an account, newest first.
func (uc *MovementUseCase) FindMovements(ctx context.Context, accountNumber int64) ([]*domain.Movement, error) {
	if _, err := uc.accountRepo.GetByNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	return uc.movementRepo.ListByAccount(ctx, accountNumber, nil)
}

// FindMovementsBetween lists the movements of an account that occurred on
// the days from through to, both included.
func (uc *MovementUseCase) FindMovementsBetween(ctx context.Context, accountNumber int64, from, to time.Time) ([]*domain.Movement, error) {
	between, err := domain.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}
	if _, err := uc.accountRepo.GetByNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	return uc.movementRepo.ListByAccount(ctx, accountNumber, &between)
}

// UpdateDescription replaces the description of an active movement.
// Amounts and balances are never touched.
func (uc *MovementUseCase) UpdateDescription(ctx context.Context, id int64, description string) (*domain.Movement, error) {
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewPersistenceError("begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	movement, err := uc.movementRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if !movement.Active {
		return nil, domain.ErrAlreadyReversed
	}

	if err := uc.movementRepo.UpdateDescription(txCtx, tx, id, description); err != nil {
		return nil, domain.NewPersistenceError("update description", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewPersistenceError("commit", err)
	}

	movement.Description = description
	return movement, nil
}
