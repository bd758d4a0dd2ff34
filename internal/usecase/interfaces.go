package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx Transaction, number int64) (*domain.Account, error)
	// Update persists the mutable fields and bumps the version.
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
	List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
	// MaxNumber returns the highest account number, or 0 when there are none.
	MaxNumber(ctx context.Context, tx Transaction) (int64, error)
}

// MovementRepository defines data access for movements.
type MovementRepository interface {
	// Create inserts the movement and assigns its ID.
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	GetByID(ctx context.Context, id int64) (*domain.Movement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Movement, error)
	MarkReversed(ctx context.Context, tx Transaction, id int64, annotation string) error
	UpdateDescription(ctx context.Context, tx Transaction, id int64, description string) error
	// ListByAccount returns movements newest first, optionally limited to a day range.
	ListByAccount(ctx context.Context, accountNumber int64, between *domain.DateRange) ([]*domain.Movement, error)
	// SumPostedAmounts sums the amounts of every movement that changed the
	// balance: all movements except opening entries, voided or not.
	SumPostedAmounts(ctx context.Context, accountNumber int64) (decimal.Decimal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a unit of work on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }
