package domain

import "time"

// Event types
const (
	EventTypeMovementApplied  = "movement.applied"
	EventTypeMovementReversed = "movement.reversed"
	EventTypeAccountCreated   = "account.created"
	EventTypeAccountClosed    = "account.closed"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// MovementAppliedEvent payload
type MovementAppliedEvent struct {
	MovementID       int64  `json:"movement_id"`
	AccountNumber    int64  `json:"account_number"`
	Kind             string `json:"kind"`
	Amount           string `json:"amount"`
	ResultingBalance string `json:"resulting_balance"`
	OpeningEntry     bool   `json:"opening_entry"`
}

// MovementReversedEvent payload
type MovementReversedEvent struct {
	OriginalMovementID     int64  `json:"original_movement_id"`
	CompensatingMovementID int64  `json:"compensating_movement_id"`
	AccountNumber          int64  `json:"account_number"`
	Amount                 string `json:"amount"`
	ResultingBalance       string `json:"resulting_balance"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountNumber  int64  `json:"account_number"`
	ClientID       int64  `json:"client_id"`
	Kind           string `json:"kind"`
	OpeningBalance string `json:"opening_balance"`
}

// AccountClosedEvent payload
type AccountClosedEvent struct {
	AccountNumber int64  `json:"account_number"`
	ClosedAt      string `json:"closed_at"`
}
