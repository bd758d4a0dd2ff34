package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountScale)
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	Number           int64      `json:"number"`
	ClientID         int64      `json:"client_id"`
	Kind             string     `json:"kind"`
	OpeningBalance   string     `json:"opening_balance"`
	AvailableBalance string     `json:"available_balance"`
	Active           bool       `json:"active"`
	Version          int64      `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		Number:           a.Number,
		ClientID:         a.ClientID,
		Kind:             string(a.Kind),
		OpeningBalance:   money(a.OpeningBalance),
		AvailableBalance: money(a.AvailableBalance),
		Active:           a.Active,
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		ClosedAt:         a.ClosedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// MovementResponse represents a movement in API responses. Date and Time
// split OccurredAt the way account statements print it.
type MovementResponse struct {
	ID               int64     `json:"id"`
	AccountNumber    int64     `json:"account_number"`
	Kind             string    `json:"kind"`
	Amount           string    `json:"amount"`
	ResultingBalance string    `json:"resulting_balance"`
	Description      string    `json:"description"`
	Active           bool      `json:"active"`
	OpeningEntry     bool      `json:"opening_entry,omitempty"`
	ReversalOf       *int64    `json:"reversal_of,omitempty"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// MovementFromDomain converts domain movement to response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:               m.ID,
		AccountNumber:    m.AccountNumber,
		Kind:             string(m.Kind),
		Amount:           money(m.Amount),
		ResultingBalance: money(m.ResultingBalance),
		Description:      m.Description,
		Active:           m.Active,
		OpeningEntry:     m.OpeningEntry,
		ReversalOf:       m.ReversalOf,
		Date:             m.OccurredDate().Format(DateLayout),
		Time:             m.OccurredTime(),
		OccurredAt:       m.OccurredAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// ListMovementsResponse represents an account statement.
type ListMovementsResponse struct {
	AccountNumber int64               `json:"account_number"`
	Movements     []*MovementResponse `json:"movements"`
	Total         int64               `json:"total"`
}

// ReconciliationResponse reports whether an account balance matches its movements.
type ReconciliationResponse struct {
	AccountNumber     int64     `json:"account_number"`
	OpeningBalance    string    `json:"opening_balance"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	Reconciled        bool      `json:"reconciled"`
	CheckedAt         time.Time `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountNumber:     r.AccountNumber,
		OpeningBalance:    money(r.OpeningBalance),
		RecordedBalance:   money(r.RecordedBalance),
		CalculatedBalance: money(r.CalculatedBalance),
		Difference:        money(r.Difference),
		Reconciled:        r.IsReconciled,
		CheckedAt:         r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes a ledger-wide reconciliation.
type ReconciliationReportResponse struct {
	Consistent         bool                      `json:"consistent"`
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromUseCase converts a reconciliation report to response.
func ReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		Consistent:         r.Consistent(),
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
