package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// maxNumberAttempts bounds retries when two creations race for the next number.
const maxNumberAttempts = 3

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	retrier     Retrier
	cache       *accountCache
	now         func() time.Time
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     metrics,
		retrier:     noRetry{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithRetrier sets the retrier used for deadlocks and serialization failures.
func (uc *AccountUseCase) WithRetrier(r Retrier) *AccountUseCase {
	if r != nil {
		uc.retrier = r
	}
	return uc
}

// WithCache enables read-through caching of GetAccount.
func (uc *AccountUseCase) WithCache(c Cache, ttl time.Duration) *AccountUseCase {
	if ttl <= 0 {
		ttl = DefaultAccountCacheTTL
	}
	uc.cache = newAccountCache(c, ttl, uc.metrics)
	return uc
}

// WithClock overrides the time source.
func (uc *AccountUseCase) WithClock(now func() time.Time) *AccountUseCase {
	uc.now = now
	return uc
}

// CreateAccountInput represents input for creating an account.
// A zero Number assigns the next free number.
type CreateAccountInput struct {
	Number         int64
	ClientID       int64
	Kind           domain.AccountKind
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new active account funded with its opening balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidAccountKind
	}
	if err := domain.ValidateOpeningBalance(input.OpeningBalance); err != nil {
		return nil, err
	}
	if input.Number != 0 {
		if err := domain.ValidateAccountNumber(input.Number); err != nil {
			return nil, err
		}
	}

	attempts := 1
	if input.Number == 0 {
		attempts = maxNumberAttempts
	}

	var (
		account *domain.Account
		err     error
	)
	for i := 0; i < attempts; i++ {
		err = uc.retrier.Retry(ctx, func() error {
			var err error
			account, err = uc.create(ctx, input)
			return err
		})
		if !errors.Is(err, domain.ErrAccountExists) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
		uc.metrics.AccountOperations.WithLabelValues("create").Inc()
	}

	return account, nil
}

func (uc *AccountUseCase) create(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewPersistenceError("begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	number := input.Number
	if number == 0 {
		highest, err := uc.accountRepo.MaxNumber(txCtx, tx)
		if err != nil {
			return nil, domain.NewPersistenceError("max account number", err)
		}
		number = highest + 1
		if number < FirstAccountNumber {
			number = FirstAccountNumber
		}
	}

	now := uc.now()
	account, err := domain.NewAccount(number, input.ClientID, input.Kind, input.OpeningBalance, now)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, domain.NewPersistenceError("create account", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   strconv.FormatInt(account.Number, 10),
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: map[string]any{
			"account_number":  account.Number,
			"client_id":       account.ClientID,
			"kind":            string(account.Kind),
			"opening_balance": account.OpeningBalance.StringFixed(domain.AmountScale),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, domain.NewPersistenceError("create outbox event", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewPersistenceError("commit", err)
	}

	return account, nil
}

// GetAccount retrieves an account by number.
func (uc *AccountUseCase) GetAccount(ctx context.Context, number int64) (*domain.Account, error) {
	if account, ok := uc.cache.get(ctx, number); ok {
		return account, nil
	}

	account, err := uc.accountRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	uc.cache.put(ctx, account)
	return account, nil
}

// ListAccounts lists accounts matching the filter.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.accountRepo.List(ctx, filter)
}

// SetAccountActive enables or disables an account. Disabling an account for
// the first time stamps its close date.
func (uc *AccountUseCase) SetAccountActive(ctx context.Context, number int64, active bool) (*domain.Account, error) {
	var (
		account *domain.Account
		closed  bool
	)
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		account, closed, err = uc.setActive(ctx, number, active)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.cache.invalidate(ctx, number, account.Version)

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("set_active").Inc()
		if closed {
			uc.metrics.AccountsClosed.Inc()
		}
	}

	return account, nil
}

func (uc *AccountUseCase) setActive(ctx context.Context, number int64, active bool) (*domain.Account, bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, false, domain.NewPersistenceError("begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByNumberForUpdate(txCtx, tx, number)
	if err != nil {
		return nil, false, domain.NewPersistenceError("lock account", err)
	}

	closing := account.Active && !active
	now := uc.now()
	account.SetActive(active, now)

	if err := uc.accountRepo.Update(txCtx, tx, account); err != nil {
		return nil, false, domain.NewPersistenceError("update account", err)
	}

	if closing {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   strconv.FormatInt(number, 10),
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountClosed,
			Payload: map[string]any{
				"account_number": number,
				"closed_at":      account.ClosedAt.Format(time.RFC3339Nano),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, false, domain.NewPersistenceError("create outbox event", err)
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, false, domain.NewPersistenceError("commit", err)
	}

	return account, closing, nil
}

// CloseAccount deactivates an account.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, number int64) (*domain.Account, error) {
	return uc.SetAccountActive(ctx, number, false)
}
