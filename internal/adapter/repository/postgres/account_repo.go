package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

var _ usecase.AccountRepository = (*AccountRepository)(nil)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository on a pool or any other DBTX.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a new account. A taken number returns domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = q.CreateAccount(ctx, generated.CreateAccountParams{
		Number:                 account.Number,
		ClientID:               account.ClientID,
		Kind:                   string(account.Kind),
		OpeningBalance:         decimalToNumeric(account.OpeningBalance),
		AvailableBalance:       decimalToNumeric(account.AvailableBalance),
		Active:                 account.Active,
		InitialDepositRecorded: account.InitialDepositRecorded,
		Version:                account.Version,
		CreatedAt:              timeToPgTimestamptz(account.CreatedAt),
		ClosedAt:               optionalTimestamptz(account.ClosedAt),
		UpdatedAt:              timeToPgTimestamptz(account.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrAccountExists
	}
	return err
}

// GetByNumber retrieves an account by number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	row, err := r.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return rowToAccount(row), nil
}

// GetByNumberForUpdate retrieves an account with a row lock held until tx ends.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.GetAccountByNumberForUpdate(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return rowToAccount(row), nil
}

// Update writes balance, status and timestamps, then bumps the version.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.UpdateAccount(ctx, generated.UpdateAccountParams{
		Number:                 account.Number,
		AvailableBalance:       decimalToNumeric(account.AvailableBalance),
		Active:                 account.Active,
		InitialDepositRecorded: account.InitialDepositRecorded,
		ClosedAt:               optionalTimestamptz(account.ClosedAt),
		UpdatedAt:              timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	account.Version++
	return nil
}

// List returns accounts matching the filter, ordered by number.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(filter.Limit, filter.Offset)

	params := generated.ListAccountsParams{
		RowLimit:  int32(limit),
		RowOffset: int32(offset),
	}
	if filter.Kind != nil {
		params.Kind = pgtype.Text{String: string(*filter.Kind), Valid: true}
	}
	if filter.Active != nil {
		params.Active = pgtype.Bool{Bool: *filter.Active, Valid: true}
	}
	if filter.ClientID != nil {
		params.ClientID = pgtype.Int8{Int64: *filter.ClientID, Valid: true}
	}

	rows, err := r.queries.ListAccounts(ctx, params)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts, nil
}

// MaxNumber returns the highest account number in use, or 0.
func (r *AccountRepository) MaxNumber(ctx context.Context, tx usecase.Transaction) (int64, error) {
	q := r.queries
	if tx != nil {
		var err error
		if q, err = queriesFor(tx); err != nil {
			return 0, err
		}
	}
	return q.MaxAccountNumber(ctx)
}

func rowToAccount(row generated.Account) *domain.Account {
	opening := numericToDecimal(row.OpeningBalance)
	available := opening
	if row.AvailableBalance.Valid {
		available = numericToDecimal(row.AvailableBalance)
	}

	return &domain.Account{
		Number:                 row.Number,
		ClientID:               row.ClientID,
		Kind:                   domain.AccountKind(row.Kind),
		OpeningBalance:         opening,
		AvailableBalance:       available,
		Active:                 row.Active,
		InitialDepositRecorded: row.InitialDepositRecorded,
		Version:                row.Version,
		CreatedAt:              row.CreatedAt.Time,
		ClosedAt:               timestamptzPtr(row.ClosedAt),
		UpdatedAt:              row.UpdatedAt.Time,
	}
}
