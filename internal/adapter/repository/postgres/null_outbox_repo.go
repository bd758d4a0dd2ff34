package postgres

import (
	"context"
	"time"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// NullOutboxRepository discards events, for ledgers wired without a publisher.
type NullOutboxRepository struct{}

var _ usecase.OutboxRepository = NullOutboxRepository{}

func NewNullOutboxRepository() NullOutboxRepository { return NullOutboxRepository{} }

func (NullOutboxRepository) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (NullOutboxRepository) GetUnpublished(context.Context, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (NullOutboxRepository) MarkPublished(context.Context, string, time.Time) error { return nil }

func (NullOutboxRepository) GetByAggregate(context.Context, string, string, int, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (NullOutboxRepository) DeletePublished(context.Context, time.Time) error { return nil }
