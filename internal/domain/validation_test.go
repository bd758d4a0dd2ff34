package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{"whole", "100", false},
		{"four decimals", "0.0001", false},
		{"zero", "0", true},
		{"negative", "-5", true},
		{"five decimals", "1.00001", true},
		{"above column precision", "10000000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr && !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateOpeningBalance(t *testing.T) {
	t.Parallel()

	if err := ValidateOpeningBalance(decimal.Zero); err != nil {
		t.Fatalf("zero opening balance should be allowed, got %v", err)
	}
	if err := ValidateOpeningBalance(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	if err := ValidateDescription(strings.Repeat("ñ", MaxDescriptionLength)); err != nil {
		t.Fatalf("limit counts characters, not bytes: %v", err)
	}
	if err := ValidateDescription(strings.Repeat("a", MaxDescriptionLength+1)); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
}

func TestValidateAccountNumber(t *testing.T) {
	t.Parallel()

	if err := ValidateAccountNumber(MinAccountNumber); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := ValidateAccountNumber(MaxAccountNumber + 1); !errors.Is(err, ErrInvalidAccountNumber) {
		t.Fatalf("expected ErrInvalidAccountNumber, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit capped at 1000, got %d", limit)
	}
}
