package domain

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	AmountScale          = 4
	MaxDescriptionLength = 300
	MinAccountNumber     = 100000
	MaxAccountNumber     = 999999
	MaxAmount            = "9999999999.9999" // NUMERIC(14,4)
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateAmount checks a movement amount: positive, at most AmountScale
// fractional digits and within column precision.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return validateScale(amount)
}

// ValidateOpeningBalance is like ValidateAmount but allows zero.
func ValidateOpeningBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: opening balance cannot be negative", ErrInvalidAmount)
	}
	return validateScale(amount)
}

func validateScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxAmount)
	}
	return nil
}

// ValidateDescription enforces the description length in characters.
func ValidateDescription(description string) error {
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return fmt.Errorf("%w: %d characters, limit %d", ErrDescriptionTooLong, n, MaxDescriptionLength)
	}
	return nil
}

// ValidateAccountNumber checks the six-digit account number.
func ValidateAccountNumber(number int64) error {
	if number < MinAccountNumber || number > MaxAccountNumber {
		return fmt.Errorf("%w: %d", ErrInvalidAccountNumber, number)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
