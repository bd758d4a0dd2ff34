package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrAccountExists        = errors.New("account already exists")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAccountKind   = errors.New("invalid account kind")
	ErrInvalidAccountNumber = errors.New("invalid account number")

	// Movement errors
	ErrMovementNotFound    = errors.New("movement not found")
	ErrAlreadyReversed     = errors.New("movement already reversed")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidMovementKind = errors.New("invalid movement kind")
	ErrDescriptionTooLong  = errors.New("description too long")
	ErrInvalidDateRange    = errors.New("invalid date range")

	ErrPersistence = errors.New("persistence failure")
)

// InsufficientFundsError carries the balance a withdrawal was checked against.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s",
		e.Balance.StringFixed(AmountScale), e.Requested.StringFixed(AmountScale))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// PersistenceError wraps a storage failure during a ledger write.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err unless it is already a domain error.
func NewPersistenceError(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

var domainErrors = []error{
	ErrAccountNotFound, ErrAccountInactive, ErrAccountExists, ErrInsufficientFunds,
	ErrInvalidAccountKind, ErrInvalidAccountNumber, ErrMovementNotFound, ErrAlreadyReversed,
	ErrInvalidAmount, ErrInvalidMovementKind, ErrDescriptionTooLong, ErrInvalidDateRange,
	ErrPersistence,
}

// IsDomainError reports whether err matches one of the ledger sentinels.
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
