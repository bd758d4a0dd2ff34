package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// LedgerUseCase applies and reverses movements against account balances.
// Every write locks the account row, so Apply and Reverse on one account are
// serialized while different accounts proceed in parallel.
type LedgerUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
	retrier      Retrier
	cache        *accountCache
	logger       zerolog.Logger
	now          func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      metrics,
		retrier:      noRetry{},
		logger:       zerolog.Nop(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithRetrier sets the retrier used for deadlocks and serialization failures.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	if r != nil {
		uc.retrier = r
	}
	return uc
}

// WithCache sets the account cache invalidated after each committed write.
func (uc *LedgerUseCase) WithCache(c Cache) *LedgerUseCase {
	uc.cache = newAccountCache(c, DefaultAccountCacheTTL, uc.metrics)
	return uc
}

// WithLogger sets the logger.
func (uc *LedgerUseCase) WithLogger(l zerolog.Logger) *LedgerUseCase {
	uc.logger = l
	return uc
}

// WithClock overrides the time source.
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// ApplyInput represents a requested movement.
type ApplyInput struct {
	AccountNumber int64
	Kind          domain.MovementKind
	Amount        decimal.Decimal
	Description   string
	// InitialDeposit tags the deposit that funds a new account.
	InitialDeposit bool
}

func (in ApplyInput) initialDeposit() bool {
	if in.Kind != domain.MovementKindDeposit {
		return false
	}
	return in.InitialDeposit || domain.IsInitialDepositDescription(in.Description)
}

// Apply records a deposit or withdrawal and updates the account balance atomically.
func (uc *LedgerUseCase) Apply(ctx context.Context, input ApplyInput) (*domain.Movement, error) {
	start := time.Now()

	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidMovementKind
	}
	amount := input.Amount.Abs()
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	var (
		movement *domain.Movement
		version  int64
		skipped  bool
	)
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		movement, version, skipped, err = uc.apply(ctx, input, amount)
		return err
	})
	if err != nil {
		uc.recordError("apply", err)
		return nil, err
	}

	uc.cache.invalidate(ctx, input.AccountNumber, version)

	if skipped {
		uc.logger.Info().
			Int64("account_number", input.AccountNumber).
			Int64("movement_id", movement.ID).
			Str("amount", amount.StringFixed(domain.AmountScale)).
			Msg("ledger.initial_deposit_skipped")
	}

	if uc.metrics != nil {
		kind := string(input.Kind)
		uc.metrics.MovementsApplied.WithLabelValues(kind).Inc()
		uc.metrics.MovementAmount.WithLabelValues(kind).Observe(amount.InexactFloat64())
		uc.metrics.MovementDuration.WithLabelValues("apply").Observe(time.Since(start).Seconds())
		if skipped {
			uc.metrics.InitialDepositsSkipped.Inc()
		}
	}

	return movement, nil
}

func (uc *LedgerUseCase) apply(ctx context.Context, input ApplyInput, amount decimal.Decimal) (*domain.Movement, int64, bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, 0, false, domain.NewPersistenceError("begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByNumberForUpdate(txCtx, tx, input.AccountNumber)
	if err != nil {
		return nil, 0, false, domain.NewPersistenceError("lock account", err)
	}

	if !account.Active {
		return nil, 0, false, domain.ErrAccountInactive
	}

	if input.Kind == domain.MovementKindWithdrawal {
		if err := account.ValidateWithdrawal(amount); err != nil {
			return nil, 0, false, err
		}
	}

	now := uc.now()
	signed := input.Kind.Signed(amount)

	skip := false
	if input.initialDeposit() {
		skip = alreadyFunded(account, amount)
		account.InitialDepositRecorded = true
	}

	newBalance := account.AvailableBalance
	if skip {
		account.UpdatedAt = now
	} else {
		newBalance = account.Apply(signed, now)
	}

	if err := uc.accountRepo.Update(txCtx, tx, account); err != nil {
		return nil, 0, false, domain.NewPersistenceError("update account", err)
	}

	movement := &domain.Movement{
		AccountNumber:    account.Number,
		Kind:             input.Kind,
		Amount:           signed,
		ResultingBalance: newBalance,
		Description:      input.Description,
		Active:           true,
		OpeningEntry:     skip,
		OccurredAt:       now,
	}
	if err := uc.movementRepo.Create(txCtx, tx, movement); err != nil {
		return nil, 0, false, domain.NewPersistenceError("create movement", err)
	}

	event := uc.newEvent(account.Number, domain.EventTypeMovementApplied, now, map[string]any{
		"movement_id":       movement.ID,
		"account_number":    account.Number,
		"kind":              string(movement.Kind),
		"amount":            movement.Amount.StringFixed(domain.AmountScale),
		"resulting_balance": movement.ResultingBalance.StringFixed(domain.AmountScale),
		"opening_entry":     movement.OpeningEntry,
	})
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, 0, false, domain.NewPersistenceError("create outbox event", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, 0, false, domain.NewPersistenceError("commit", err)
	}

	return movement, account.Version, skip, nil
}

// alreadyFunded reports whether an initial deposit of amount is already
// reflected in the account balance and must not be credited again.
func alreadyFunded(account *domain.Account, amount decimal.Decimal) bool {
	// The opening deposit was recorded before, and this is the same amount again.
	if account.InitialDepositRecorded && amount.Equal(account.OpeningBalance) {
		return true
	}
	// Pre-seeded at creation and untouched since.
	if account.AvailableBalance.Equal(account.OpeningBalance) && amount.Equal(account.OpeningBalance) {
		return true
	}
	// Retry of an initial deposit that was already credited.
	return account.AvailableBalance.Sub(amount).Equal(account.OpeningBalance)
}

// Reverse cancels a movement with a compensating entry and voids the original.
func (uc *LedgerUseCase) Reverse(ctx context.Context, movementID int64) (*domain.Movement, error) {
	start := time.Now()

	var (
		compensation *domain.Movement
		version      int64
	)
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		compensation, version, err = uc.reverse(ctx, movementID)
		return err
	})
	if err != nil {
		uc.recordError("reverse", err)
		return nil, err
	}

	uc.cache.invalidate(ctx, compensation.AccountNumber, version)

	if uc.metrics != nil {
		uc.metrics.MovementsReversed.Inc()
		uc.metrics.MovementDuration.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
	}

	return compensation, nil
}

func (uc *LedgerUseCase) reverse(ctx context.Context, movementID int64) (*domain.Movement, int64, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, 0, domain.NewPersistenceError("begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	original, err := uc.movementRepo.GetByIDForUpdate(txCtx, tx, movementID)
	if err != nil {
		return nil, 0, domain.NewPersistenceError("lock movement", err)
	}

	// Compensating entries are final; only the original can be voided.
	if !original.Active || original.ReversalOf != nil {
		return nil, 0, domain.ErrAlreadyReversed
	}

	account, err := uc.accountRepo.GetByNumberForUpdate(txCtx, tx, original.AccountNumber)
	if err != nil {
		return nil, 0, domain.NewPersistenceError("lock account", err)
	}

	if !account.Active {
		return nil, 0, domain.ErrAccountInactive
	}

	kind := original.Kind.Opposite()
	magnitude := original.Magnitude()
	if kind == domain.MovementKindWithdrawal {
		if err := account.ValidateWithdrawal(magnitude); err != nil {
			return nil, 0, err
		}
	}

	now := uc.now()
	signed := kind.Signed(magnitude)
	newBalance := account.Apply(signed, now)

	reversalDescription := original.ReversalDescription()
	original.Active = false
	original.Description = domain.VoidAnnotation(now)
	if err := uc.movementRepo.MarkReversed(txCtx, tx, original.ID, original.Description); err != nil {
		return nil, 0, domain.NewPersistenceError("mark reversed", err)
	}

	originalID := original.ID
	compensation := &domain.Movement{
		AccountNumber:    account.Number,
		Kind:             kind,
		Amount:           signed,
		ResultingBalance: newBalance,
		Description:      reversalDescription,
		Active:           true,
		ReversalOf:       &originalID,
		OccurredAt:       now,
	}
	if err := uc.movementRepo.Create(txCtx, tx, compensation); err != nil {
		return nil, 0, domain.NewPersistenceError("create movement", err)
	}

	if err := uc.accountRepo.Update(txCtx, tx, account); err != nil {
		return nil, 0, domain.NewPersistenceError("update account", err)
	}

	event := uc.newEvent(account.Number, domain.EventTypeMovementReversed, now, map[string]any{
		"original_movement_id":     originalID,
		"compensating_movement_id": compensation.ID,
		"account_number":           account.Number,
		"amount":                   compensation.Amount.StringFixed(domain.AmountScale),
		"resulting_balance":        newBalance.StringFixed(domain.AmountScale),
	})
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, 0, domain.NewPersistenceError("create outbox event", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, 0, domain.NewPersistenceError("commit", err)
	}

	return compensation, account.Version, nil
}

func (uc *LedgerUseCase) newEvent(accountNumber int64, eventType string, now time.Time, payload map[string]any) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   strconv.FormatInt(accountNumber, 10),
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

func (uc *LedgerUseCase) recordError(operation string, err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.LedgerErrors.WithLabelValues(operation, errorType(err)).Inc()

	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		uc.metrics.DBErrors.WithLabelValues(pe.Op).Inc()
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrMovementNotFound):
		return "movement_not_found"
	case errors.Is(err, domain.ErrAlreadyReversed):
		return "already_reversed"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "other"
	}
}
