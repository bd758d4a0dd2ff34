package mocks

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// Writes made through a *MockTransaction are staged and only become visible
// on Commit, so rollback paths can be asserted on the repositories' state.
// Writes with any other Transaction value apply immediately.
func stage(tx usecase.Transaction, apply func()) {
	if mt, ok := tx.(*MockTransaction); ok {
		mt.stage(apply)
		return
	}
	apply()
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.ClosedAt != nil {
		closed := *a.ClosedAt
		c.ClosedAt = &closed
	}
	return &c
}

func copyMovement(m *domain.Movement) *domain.Movement {
	c := *m
	if m.ReversalOf != nil {
		id := *m.ReversalOf
		c.ReversalOf = &id
	}
	return &c
}

// rowLocks emulates SELECT ... FOR UPDATE: the row stays locked until the
// owning *MockTransaction commits or rolls back.
type rowLocks struct {
	mu   sync.Mutex
	rows map[int64]*sync.Mutex
}

func (r *rowLocks) lock(tx usecase.Transaction, key int64) {
	mt, ok := tx.(*MockTransaction)
	if !ok {
		return
	}
	r.mu.Lock()
	if r.rows == nil {
		r.rows = make(map[int64]*sync.Mutex)
	}
	row, ok := r.rows[key]
	if !ok {
		row = &sync.Mutex{}
		r.rows[key] = row
	}
	r.mu.Unlock()

	row.Lock()
	mt.onDone(row.Unlock)
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
	rows     rowLocks

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByNumberFunc          func(ctx context.Context, number int64) (*domain.Account, error)
	GetByNumberForUpdateFunc func(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error)
	UpdateFunc               func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	ListFunc                 func(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
	MaxNumberFunc            func(ctx context.Context, tx usecase.Transaction) (int64, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[int64]*domain.Account),
	}
}

// Seed stores account directly, bypassing transactions.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.Number] = copyAccount(account)
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.RLock()
	_, exists := m.accounts[account.Number]
	m.mu.RUnlock()
	if exists {
		return domain.ErrAccountExists
	}
	snapshot := copyAccount(account)
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.accounts[snapshot.Number] = snapshot
	})
	return nil
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[number]; ok {
		return copyAccount(acc), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error) {
	if m.GetByNumberForUpdateFunc != nil {
		return m.GetByNumberForUpdateFunc(ctx, tx, number)
	}
	m.rows.lock(tx, number)
	return m.GetByNumber(ctx, number)
}

func (m *MockAccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, account)
	}
	m.mu.RLock()
	_, ok := m.accounts[account.Number]
	m.mu.RUnlock()
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Version++
	snapshot := copyAccount(account)
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		snapshot.Version = m.accounts[snapshot.Number].Version + 1
		m.accounts[snapshot.Number] = snapshot
	})
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if filter.Kind != nil && acc.Kind != *filter.Kind {
			continue
		}
		if filter.Active != nil && acc.Active != *filter.Active {
			continue
		}
		if filter.ClientID != nil && acc.ClientID != *filter.ClientID {
			continue
		}
		accounts = append(accounts, copyAccount(acc))
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Number < accounts[j].Number })

	if filter.Offset >= len(accounts) {
		return nil, nil
	}
	accounts = accounts[filter.Offset:]
	if filter.Limit > 0 && len(accounts) > filter.Limit {
		accounts = accounts[:filter.Limit]
	}
	return accounts, nil
}

func (m *MockAccountRepository) MaxNumber(ctx context.Context, tx usecase.Transaction) (int64, error) {
	if m.MaxNumberFunc != nil {
		return m.MaxNumberFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var highest int64
	for number := range m.accounts {
		if number > highest {
			highest = number
		}
	}
	return highest, nil
}

// MockMovementRepository is a mock implementation of MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements map[int64]*domain.Movement
	nextID    int64
	rows      rowLocks

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error
	GetByIDFunc           func(ctx context.Context, id int64) (*domain.Movement, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Movement, error)
	MarkReversedFunc      func(ctx context.Context, tx usecase.Transaction, id int64, annotation string) error
	UpdateDescriptionFunc func(ctx context.Context, tx usecase.Transaction, id int64, description string) error
	ListByAccountFunc     func(ctx context.Context, accountNumber int64, between *domain.DateRange) ([]*domain.Movement, error)
	SumPostedAmountsFunc  func(ctx context.Context, accountNumber int64) (decimal.Decimal, error)
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{
		movements: make(map[int64]*domain.Movement),
	}
}

// All returns every committed movement ordered by ID.
func (m *MockMovementRepository) All() []*domain.Movement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Movement, 0, len(m.movements))
	for _, mv := range m.movements {
		out = append(out, copyMovement(mv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, movement)
	}
	m.mu.Lock()
	m.nextID++
	movement.ID = m.nextID
	m.mu.Unlock()

	snapshot := copyMovement(movement)
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.movements[snapshot.ID] = snapshot
	})
	return nil
}

func (m *MockMovementRepository) GetByID(ctx context.Context, id int64) (*domain.Movement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mv, ok := m.movements[id]; ok {
		return copyMovement(mv), nil
	}
	return nil, domain.ErrMovementNotFound
}

func (m *MockMovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Movement, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.rows.lock(tx, id)
	return m.GetByID(ctx, id)
}

func (m *MockMovementRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id int64, annotation string) error {
	if m.MarkReversedFunc != nil {
		return m.MarkReversedFunc(ctx, tx, id, annotation)
	}
	return m.mutate(tx, id, func(mv *domain.Movement) {
		mv.Active = false
		mv.Description = annotation
	})
}

func (m *MockMovementRepository) UpdateDescription(ctx context.Context, tx usecase.Transaction, id int64, description string) error {
	if m.UpdateDescriptionFunc != nil {
		return m.UpdateDescriptionFunc(ctx, tx, id, description)
	}
	return m.mutate(tx, id, func(mv *domain.Movement) {
		mv.Description = description
	})
}

func (m *MockMovementRepository) mutate(tx usecase.Transaction, id int64, fn func(*domain.Movement)) error {
	m.mu.RLock()
	_, ok := m.movements[id]
	m.mu.RUnlock()
	if !ok {
		return domain.ErrMovementNotFound
	}
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		fn(m.movements[id])
	})
	return nil
}

func (m *MockMovementRepository) ListByAccount(ctx context.Context, accountNumber int64, between *domain.DateRange) ([]*domain.Movement, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountNumber, between)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Movement
	for _, mv := range m.movements {
		if mv.AccountNumber != accountNumber {
			continue
		}
		if between != nil && !between.Contains(mv.OccurredAt) {
			continue
		}
		out = append(out, copyMovement(mv))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MockMovementRepository) SumPostedAmounts(ctx context.Context, accountNumber int64) (decimal.Decimal, error) {
	if m.SumPostedAmountsFunc != nil {
		return m.SumPostedAmountsFunc(ctx, accountNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, mv := range m.movements {
		if mv.AccountNumber == accountNumber && mv.CountsTowardBalance() {
			sum = sum.Add(mv.Amount)
		}
	}
	return sum, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns the committed events in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.events = append(m.events, event)
	})
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return errors.New("outbox event not found")
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu        sync.Mutex
	begun     int
	committed int

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	m.begun++
	m.mu.Unlock()
	return &MockTransaction{onCommit: func() {
		m.mu.Lock()
		m.committed++
		m.mu.Unlock()
	}}, nil
}

// Counts returns how many transactions were begun and committed.
func (m *MockTransactionManager) Counts() (begun, committed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.begun, m.committed
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	mu       sync.Mutex
	staged   []func()
	release  []func()
	done     bool
	onCommit func()

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) stage(apply func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = append(m.staged, apply)
}

func (m *MockTransaction) onDone(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release = append(m.release, fn)
}

func (m *MockTransaction) finish() {
	for _, fn := range m.release {
		fn()
	}
	m.release = nil
	m.staged = nil
	m.done = true
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return errors.New("transaction already closed")
	}
	for _, apply := range m.staged {
		apply()
	}
	m.finish()
	if m.onCommit != nil {
		m.onCommit()
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finish()
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte(usecase.IdempotencyProcessing)
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
