package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

var _ usecase.MovementRepository = (*MovementRepository)(nil)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db generated.DBTX) *MovementRepository {
	return &MovementRepository{queries: generated.New(db)}
}

// Create inserts a movement and stores the assigned ID on it.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	var reversalOf pgtype.Int8
	if movement.ReversalOf != nil {
		reversalOf = pgtype.Int8{Int64: *movement.ReversalOf, Valid: true}
	}

	id, err := q.CreateMovement(ctx, generated.CreateMovementParams{
		AccountNumber:    movement.AccountNumber,
		Kind:             string(movement.Kind),
		Amount:           decimalToNumeric(movement.Amount),
		ResultingBalance: decimalToNumeric(movement.ResultingBalance),
		Description:      movement.Description,
		Active:           movement.Active,
		OpeningEntry:     movement.OpeningEntry,
		ReversalOf:       reversalOf,
		OccurredAt:       timeToPgTimestamptz(movement.OccurredAt),
	})
	if err != nil {
		// The partial unique index on reversal_of allows one compensation per movement.
		if isUniqueViolation(err) {
			return domain.ErrAlreadyReversed
		}
		return err
	}

	movement.ID = id
	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id int64) (*domain.Movement, error) {
	row, err := r.queries.GetMovementByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}
	return rowToMovement(row), nil
}

// GetByIDForUpdate retrieves a movement and locks its row.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Movement, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.GetMovementByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}
	return rowToMovement(row), nil
}

// MarkReversed deactivates a movement and replaces its description.
func (r *MovementRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id int64, annotation string) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.MarkMovementReversed(ctx, generated.MarkMovementReversedParams{ID: id, Description: annotation})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// UpdateDescription changes only the description of a movement.
func (r *MovementRepository) UpdateDescription(ctx context.Context, tx usecase.Transaction, id int64, description string) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.UpdateMovementDescription(ctx, generated.UpdateMovementDescriptionParams{ID: id, Description: description})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// ListByAccount returns movements of an account, newest first.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountNumber int64, between *domain.DateRange) ([]*domain.Movement, error) {
	var (
		rows []generated.Movement
		err  error
	)
	if between == nil {
		rows, err = r.queries.ListMovementsByAccount(ctx, accountNumber)
	} else {
		rows, err = r.queries.ListMovementsByAccountBetween(ctx, generated.ListMovementsByAccountBetweenParams{
			AccountNumber: accountNumber,
			OccurredAt:    timeToPgTimestamptz(between.Start()),
			OccurredAt_2:  timeToPgTimestamptz(between.End()),
		})
	}
	if err != nil {
		return nil, err
	}

	movements := make([]*domain.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, rowToMovement(row))
	}
	return movements, nil
}

// SumPostedAmounts sums the signed amounts that make up the current balance.
func (r *MovementRepository) SumPostedAmounts(ctx context.Context, accountNumber int64) (decimal.Decimal, error) {
	sum, err := r.queries.SumPostedMovementAmounts(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(sum), nil
}

func rowToMovement(row generated.Movement) *domain.Movement {
	var reversalOf *int64
	if row.ReversalOf.Valid {
		id := row.ReversalOf.Int64
		reversalOf = &id
	}

	return &domain.Movement{
		ID:               row.ID,
		AccountNumber:    row.AccountNumber,
		Kind:             domain.MovementKind(row.Kind),
		Amount:           numericToDecimal(row.Amount),
		ResultingBalance: numericToDecimal(row.ResultingBalance),
		Description:      row.Description,
		Active:           row.Active,
		OpeningEntry:     row.OpeningEntry,
		ReversalOf:       reversalOf,
		OccurredAt:       row.OccurredAt.Time,
	}
}
