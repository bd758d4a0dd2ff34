package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// DateLayout is the day format accepted by the movement range filter.
const DateLayout = "2006-01-02"

// CreateAccountRequest represents a request to create an account.
// Number may be omitted to get the next free account number.
type CreateAccountRequest struct {
	Number         int64           `json:"number,omitempty"`
	ClientID       int64           `json:"client_id"`
	Kind           string          `json:"kind"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	kind, err := domain.ParseAccountKind(r.Kind)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}
	return usecase.CreateAccountInput{
		Number:         r.Number,
		ClientID:       r.ClientID,
		Kind:           kind,
		OpeningBalance: r.OpeningBalance,
	}, nil
}

// UpdateAccountRequest changes the active flag of an account.
type UpdateAccountRequest struct {
	Active *bool `json:"active"`
}

// Validate checks that the request carries a change.
func (r *UpdateAccountRequest) Validate() error {
	if r.Active == nil {
		return errors.New("active is required")
	}
	return nil
}

// ApplyMovementRequest represents a deposit or withdrawal.
type ApplyMovementRequest struct {
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	InitialDeposit bool            `json:"initial_deposit,omitempty"`
}

// ToUseCaseInput converts to use case input for the account in the path.
func (r *ApplyMovementRequest) ToUseCaseInput(accountNumber int64) (usecase.ApplyInput, error) {
	kind, err := domain.ParseMovementKind(r.Kind)
	if err != nil {
		return usecase.ApplyInput{}, err
	}
	return usecase.ApplyInput{
		AccountNumber:  accountNumber,
		Kind:           kind,
		Amount:         r.Amount,
		Description:    r.Description,
		InitialDeposit: r.InitialDeposit,
	}, nil
}

// UpdateMovementRequest replaces a movement description.
type UpdateMovementRequest struct {
	Description string `json:"description"`
}

// ParseDay parses a YYYY-MM-DD query value in UTC.
func ParseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a %s date", domain.ErrInvalidDateRange, value, DateLayout)
	}
	return t, nil
}
