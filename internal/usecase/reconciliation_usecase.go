package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// ReconciliationUseCase checks recorded balances against movement history.
type ReconciliationUseCase struct {
	accountRepo  AccountRepository
	movementRepo MovementRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountRepo AccountRepository, movementRepo MovementRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountNumber     int64
	OpeningBalance    decimal.Decimal
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount recomputes the balance as opening balance plus the sum of
// every non-opening movement and compares it with the stored available balance.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, number int64) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	sum, err := uc.movementRepo.SumPostedAmounts(ctx, account.Number)
	if err != nil {
		return nil, err
	}

	calculated := account.OpeningBalance.Add(sum)
	difference := account.AvailableBalance.Sub(calculated)

	return &ReconciliationResult{
		AccountNumber:     account.Number,
		OpeningBalance:    account.OpeningBalance,
		RecordedBalance:   account.AvailableBalance,
		CalculatedBalance: calculated,
		Difference:        difference,
		IsReconciled:      difference.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	const pageSize = 1000

	var results []*ReconciliationResult
	for offset := 0; ; offset += pageSize {
		limit, off := domain.ValidatePagination(pageSize, offset)
		accounts, err := uc.accountRepo.List(ctx, domain.AccountFilter{Limit: limit, Offset: off})
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %d: %w", account.Number, err)
			}
			results = append(results, result)
		}

		if len(accounts) < limit {
			break
		}
	}

	return results, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// Consistent reports whether every account reconciled.
func (r *ReconciliationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
