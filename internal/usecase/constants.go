package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// FirstAccountNumber is assigned when the store holds no accounts yet.
	FirstAccountNumber int64 = 100000

	// DefaultAccountCacheTTL bounds how long a cached account read may be served.
	DefaultAccountCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyProcessing is the value held under an idempotency key while the
// first request with that key is still running.
const IdempotencyProcessing = "processing"

