package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind is the direction of a balance change.
type MovementKind string

const (
	MovementKindDeposit    MovementKind = "DEPOSIT"
	MovementKindWithdrawal MovementKind = "WITHDRAWAL"
)

// Valid reports whether k is a known kind.
func (k MovementKind) Valid() bool {
	return k == MovementKindDeposit || k == MovementKindWithdrawal
}

// ParseMovementKind accepts the canonical names and the legacy DEPOSITO/RETIRO labels.
func ParseMovementKind(s string) (MovementKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(MovementKindDeposit), "DEPOSITO":
		return MovementKindDeposit, nil
	case string(MovementKindWithdrawal), "RETIRO":
		return MovementKindWithdrawal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMovementKind, s)
	}
}

// Opposite returns the kind that compensates k.
func (k MovementKind) Opposite() MovementKind {
	if k == MovementKindDeposit {
		return MovementKindWithdrawal
	}
	return MovementKindDeposit
}

// Signed returns amount with the sign implied by k.
func (k MovementKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == MovementKindWithdrawal {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

const (
	reversalSuffixFormat = " [REVERSO ID#%d]"
	voidAnnotationLayout = "2006-01-02 15:04:05.000"
	voidAnnotationPrefix = "Operacion Anulada "
)

// Movement is a single signed change to an account balance.
type Movement struct {
	ID               int64
	AccountNumber    int64
	Kind             MovementKind
	Amount           decimal.Decimal // positive for deposits, negative for withdrawals
	ResultingBalance decimal.Decimal
	Description      string
	Active           bool
	// OpeningEntry marks a deposit that was already part of the opening balance.
	OpeningEntry bool
	ReversalOf   *int64
	OccurredAt   time.Time
}

// OccurredDate is the calendar day of the movement.
func (m *Movement) OccurredDate() time.Time {
	y, mo, d := m.OccurredAt.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, m.OccurredAt.Location())
}

// OccurredTime is the wall-clock part of the movement timestamp.
func (m *Movement) OccurredTime() string {
	return m.OccurredAt.Format("15:04:05")
}

// Magnitude returns the unsigned amount.
func (m *Movement) Magnitude() decimal.Decimal {
	return m.Amount.Abs()
}

// CountsTowardBalance reports whether the movement participates in the
// opening + sum(amounts) balance derivation. A voided original still counts:
// its compensation is what cancels it.
func (m *Movement) CountsTowardBalance() bool {
	return !m.OpeningEntry
}

// ReversalDescription is the description of the compensating entry for m,
// truncated so the reference suffix always fits.
func (m *Movement) ReversalDescription() string {
	suffix := fmt.Sprintf(reversalSuffixFormat, m.ID)
	base := []rune(m.Description)
	room := MaxDescriptionLength - len([]rune(suffix))
	if room < 0 {
		room = 0
	}
	if len(base) > room {
		base = base[:room]
	}
	return string(base) + suffix
}

// VoidAnnotation is the description written over a reversed movement.
func VoidAnnotation(at time.Time) string {
	return voidAnnotationPrefix + at.Format(voidAnnotationLayout)
}

// IsInitialDepositDescription matches descriptions that tag the opening deposit.
func IsInitialDepositDescription(description string) bool {
	d := strings.ToLower(description)
	return strings.Contains(d, "depósito inicial") || strings.Contains(d, "deposito inicial")
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalizes from and to to whole days and rejects from > to.
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: startOfDay(from), To: startOfDay(to)}
	if r.From.After(r.To) {
		return DateRange{}, ErrInvalidDateRange
	}
	return r, nil
}

// Start is the first instant of the range.
func (r DateRange) Start() time.Time { return r.From }

// End is the first instant after the range.
func (r DateRange) End() time.Time { return r.To.AddDate(0, 0, 1) }

// Contains reports whether t falls on one of the days of the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start()) && t.Before(r.End())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
