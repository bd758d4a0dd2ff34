package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the product type of an account.
type AccountKind string

const (
	AccountKindSavings  AccountKind = "SAVINGS"
	AccountKindChecking AccountKind = "CHECKING"
)

// Valid reports whether k is a known kind.
func (k AccountKind) Valid() bool {
	return k == AccountKindSavings || k == AccountKindChecking
}

// ParseAccountKind accepts the canonical names and the legacy AHORROS/CORRIENTE labels.
func ParseAccountKind(s string) (AccountKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(AccountKindSavings), "AHORROS":
		return AccountKindSavings, nil
	case string(AccountKindChecking), "CORRIENTE":
		return AccountKindChecking, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountKind, s)
	}
}

// Account is a client's bank account. Only AvailableBalance moves after creation.
type Account struct {
	Number                 int64
	ClientID               int64
	Kind                   AccountKind
	OpeningBalance         decimal.Decimal
	AvailableBalance       decimal.Decimal
	Active                 bool
	InitialDepositRecorded bool
	Version                int64
	CreatedAt              time.Time
	ClosedAt               *time.Time
	UpdatedAt              time.Time
}

// NewAccount builds an active account whose available balance starts at the opening balance.
func NewAccount(number, clientID int64, kind AccountKind, openingBalance decimal.Decimal, now time.Time) (*Account, error) {
	if err := ValidateAccountNumber(number); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountKind, kind)
	}
	if err := ValidateOpeningBalance(openingBalance); err != nil {
		return nil, err
	}

	return &Account{
		Number:           number,
		ClientID:         clientID,
		Kind:             kind,
		OpeningBalance:   openingBalance,
		AvailableBalance: openingBalance,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// HasSufficientFunds reports whether amount can be withdrawn without going negative.
func (a *Account) HasSufficientFunds(amount decimal.Decimal) bool {
	return a.AvailableBalance.GreaterThanOrEqual(amount)
}

// ValidateWithdrawal checks the account can be debited by amount.
func (a *Account) ValidateWithdrawal(amount decimal.Decimal) error {
	if !a.HasSufficientFunds(amount) {
		return &InsufficientFundsError{Balance: a.AvailableBalance, Requested: amount}
	}
	return nil
}

// Apply adds a signed amount to the available balance and returns the new balance.
func (a *Account) Apply(signed decimal.Decimal, now time.Time) decimal.Decimal {
	a.AvailableBalance = a.AvailableBalance.Add(signed)
	a.UpdatedAt = now
	return a.AvailableBalance
}

// SetActive toggles the account status. ClosedAt is stamped the first time
// the account is deactivated and is never cleared afterwards.
func (a *Account) SetActive(active bool, now time.Time) {
	if !active && a.ClosedAt == nil {
		closed := now
		a.ClosedAt = &closed
	}
	a.Active = active
	a.UpdatedAt = now
}

// AccountFilter narrows account listings. Nil fields are not filtered on.
type AccountFilter struct {
	Kind     *AccountKind
	Active   *bool
	ClientID *int64
	Limit    int
	Offset   int
}
