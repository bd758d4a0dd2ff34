package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// accountCache is a read-through cache of account snapshots. A nil
// *accountCache is valid and caches nothing.
//
// Writes do not delete the entry. They leave a tombstone carrying the
// committed version, and a read that started before the write finds it and
// drops its older snapshot instead of caching it. The check and the set are
// two round trips, so a put that loses that narrow race is still bounded by
// the ttl.
type accountCache struct {
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func newAccountCache(c Cache, ttl time.Duration, m *metrics.Metrics) *accountCache {
	if c == nil {
		return nil
	}
	return &accountCache{cache: c, ttl: ttl, metrics: m}
}

type cachedAccount struct {
	Number                 int64           `json:"number"`
	ClientID               int64           `json:"client_id"`
	Kind                   string          `json:"kind"`
	OpeningBalance         decimal.Decimal `json:"opening_balance"`
	AvailableBalance       decimal.Decimal `json:"available_balance"`
	Active                 bool            `json:"active"`
	InitialDepositRecorded bool            `json:"initial_deposit_recorded"`
	Version                int64           `json:"version"`
	CreatedAt              time.Time       `json:"created_at"`
	ClosedAt               *time.Time      `json:"closed_at,omitempty"`
	UpdatedAt              time.Time       `json:"updated_at"`
	Invalidated            bool            `json:"invalidated,omitempty"`
}

func accountKey(number int64) string {
	return "account:" + strconv.FormatInt(number, 10)
}

func (c *accountCache) get(ctx context.Context, number int64) (*domain.Account, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, accountKey(number))
	if err != nil || data == nil {
		c.observe("miss")
		return nil, false
	}

	var v cachedAccount
	if err := json.Unmarshal(data, &v); err != nil || v.Invalidated {
		c.observe("miss")
		return nil, false
	}
	c.observe("hit")

	return &domain.Account{
		Number:                 v.Number,
		ClientID:               v.ClientID,
		Kind:                   domain.AccountKind(v.Kind),
		OpeningBalance:         v.OpeningBalance,
		AvailableBalance:       v.AvailableBalance,
		Active:                 v.Active,
		InitialDepositRecorded: v.InitialDepositRecorded,
		Version:                v.Version,
		CreatedAt:              v.CreatedAt,
		ClosedAt:               v.ClosedAt,
		UpdatedAt:              v.UpdatedAt,
	}, true
}

func (c *accountCache) put(ctx context.Context, a *domain.Account) {
	if c == nil {
		return
	}
	if c.newerThan(ctx, a.Number, a.Version) {
		return
	}
	data, err := json.Marshal(cachedAccount{
		Number:                 a.Number,
		ClientID:               a.ClientID,
		Kind:                   string(a.Kind),
		OpeningBalance:         a.OpeningBalance,
		AvailableBalance:       a.AvailableBalance,
		Active:                 a.Active,
		InitialDepositRecorded: a.InitialDepositRecorded,
		Version:                a.Version,
		CreatedAt:              a.CreatedAt,
		ClosedAt:               a.ClosedAt,
		UpdatedAt:              a.UpdatedAt,
	})
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, accountKey(a.Number), data, c.ttl)
}

// invalidate marks the entry for number stale as of the committed version.
func (c *accountCache) invalidate(ctx context.Context, number int64, version int64) {
	if c == nil {
		return
	}
	data, err := json.Marshal(cachedAccount{Number: number, Version: version, Invalidated: true})
	if err != nil || c.cache.Set(ctx, accountKey(number), data, c.ttl) != nil {
		_ = c.cache.Delete(ctx, accountKey(number))
	}
}

// newerThan reports whether the cache already holds a snapshot or tombstone
// for a later version than version.
func (c *accountCache) newerThan(ctx context.Context, number int64, version int64) bool {
	data, err := c.cache.Get(ctx, accountKey(number))
	if err != nil || data == nil {
		return false
	}
	var v cachedAccount
	if err := json.Unmarshal(data, &v); err != nil {
		return false
	}
	return v.Version > version
}

func (c *accountCache) observe(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
