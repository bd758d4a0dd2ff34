package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/bankledger/internal/infrastructure/logging"
	"github.com/iho/bankledger/internal/usecase"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

var _ usecase.Retrier = (*Retrier)(nil)

// Retrier re-runs a ledger unit of work with exponential backoff when
// PostgreSQL aborts it for a lock conflict.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *logging.Logger
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries sets how many times a failed unit is re-run.
func WithMaxRetries(n int) RetrierOption {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithRetryLogger sets the logger for retry warnings. Request and account
// fields carried by the context are attached to each warning.
func WithRetryLogger(l *logging.Logger) RetrierOption {
	return func(r *Retrier) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRetrier creates a new PostgreSQL retrier.
func NewRetrier(opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          &logging.Logger{Logger: slog.Default()},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry executes operation, retrying deadlocks, serialization failures and
// lock timeouts. Any other error is returned immediately.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			r.logger.ErrorCtx(ctx, "ledger unit of work conflicted, giving up",
				"error", err,
				"retries", r.maxRetries,
			)
			return backoff.Permanent(err)
		}

		r.logger.WarnCtx(ctx, "ledger unit of work conflicted, retrying",
			"error", err,
			"retry", retryCount,
		)

		return err
	}, backoff.WithContext(b, ctx))
}

// isRetryableError reports whether err carries a transient PostgreSQL conflict,
// looking through domain.PersistenceError wrapping.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
			return true
		}
	}
	return false
}
