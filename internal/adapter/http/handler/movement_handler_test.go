package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

type ledgerServiceStub struct {
	applyFn   func(ctx context.Context, input usecase.ApplyInput) (*domain.Movement, error)
	reverseFn func(ctx context.Context, movementID int64) (*domain.Movement, error)
}

func (s *ledgerServiceStub) Apply(ctx context.Context, input usecase.ApplyInput) (*domain.Movement, error) {
	return s.applyFn(ctx, input)
}

func (s *ledgerServiceStub) Reverse(ctx context.Context, movementID int64) (*domain.Movement, error) {
	return s.reverseFn(ctx, movementID)
}

type movementQueryStub struct {
	getFn     func(ctx context.Context, id int64) (*domain.Movement, error)
	findFn    func(ctx context.Context, accountNumber int64) ([]*domain.Movement, error)
	betweenFn func(ctx context.Context, accountNumber int64, from, to time.Time) ([]*domain.Movement, error)
	updateFn  func(ctx context.Context, id int64, description string) (*domain.Movement, error)
}

func (s *movementQueryStub) GetMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	return s.getFn(ctx, id)
}

func (s *movementQueryStub) FindMovements(ctx context.Context, accountNumber int64) ([]*domain.Movement, error) {
	return s.findFn(ctx, accountNumber)
}

func (s *movementQueryStub) FindMovementsBetween(ctx context.Context, accountNumber int64, from, to time.Time) ([]*domain.Movement, error) {
	return s.betweenFn(ctx, accountNumber, from, to)
}

func (s *movementQueryStub) UpdateDescription(ctx context.Context, id int64, description string) (*domain.Movement, error) {
	return s.updateFn(ctx, id, description)
}

func testMovement(id int64, amount string) *domain.Movement {
	return &domain.Movement{
		ID:               id,
		AccountNumber:    478758,
		Kind:             domain.MovementKindWithdrawal,
		Amount:           decimal.RequireFromString(amount),
		ResultingBalance: decimal.RequireFromString("1425"),
		Description:      "Retiro de 575",
		Active:           true,
		OccurredAt:       time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC),
	}
}

func TestMovementHandler_Apply(t *testing.T) {
	var captured usecase.ApplyInput
	h := NewMovementHandler(&ledgerServiceStub{
		applyFn: func(ctx context.Context, input usecase.ApplyInput) (*domain.Movement, error) {
			captured = input
			return testMovement(12, "-575"), nil
		},
	}, &movementQueryStub{})

	body := `{"kind":"WITHDRAWAL","amount":"575","description":"Retiro de 575"}`
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/478758/movements", bytes.NewBufferString(body)), "number", "478758")
	rec := httptest.NewRecorder()
	h.Apply(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(478758), captured.AccountNumber)
	assert.Equal(t, domain.MovementKindWithdrawal, captured.Kind)
	assert.True(t, captured.Amount.Equal(decimal.NewFromInt(575)))

	var resp dto.MovementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "-575.0000", resp.Amount)
	assert.Equal(t, "1425.0000", resp.ResultingBalance)
	assert.Equal(t, "2024-03-01", resp.Date)
}

func TestMovementHandler_Apply_MapsLedgerErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"insufficient funds", `{"kind":"WITHDRAWAL","amount":"9999"}`, &domain.InsufficientFundsError{Balance: decimal.NewFromInt(10), Requested: decimal.NewFromInt(9999)}, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"inactive account", `{"kind":"DEPOSIT","amount":"1"}`, domain.ErrAccountInactive, http.StatusUnprocessableEntity, "ACCOUNT_INACTIVE"},
		{"missing account", `{"kind":"DEPOSIT","amount":"1"}`, domain.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"bad kind", `{"kind":"TRANSFER","amount":"1"}`, nil, http.StatusBadRequest, "INVALID_MOVEMENT_KIND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMovementHandler(&ledgerServiceStub{
				applyFn: func(ctx context.Context, input usecase.ApplyInput) (*domain.Movement, error) {
					return nil, tt.err
				},
			}, &movementQueryStub{})

			req := withURLParam(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body)), "number", "478758")
			rec := httptest.NewRecorder()
			h.Apply(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Code)
		})
	}
}

func TestMovementHandler_List(t *testing.T) {
	var from, to time.Time
	query := &movementQueryStub{
		findFn: func(ctx context.Context, accountNumber int64) ([]*domain.Movement, error) {
			return []*domain.Movement{testMovement(2, "-1"), testMovement(1, "-1")}, nil
		},
		betweenFn: func(ctx context.Context, accountNumber int64, f, tt time.Time) ([]*domain.Movement, error) {
			from, to = f, tt
			return []*domain.Movement{testMovement(1, "-1")}, nil
		},
	}
	h := NewMovementHandler(&ledgerServiceStub{}, query)

	rec := httptest.NewRecorder()
	h.List(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/478758/movements", nil), "number", "478758"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ListMovementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, int64(478758), resp.AccountNumber)

	rec = httptest.NewRecorder()
	h.List(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/478758/movements?from=2024-03-01&to=2024-03-02", nil), "number", "478758"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), to)

	for _, q := range []string{"?from=2024-03-01", "?from=03/01/2024&to=2024-03-02"} {
		rec = httptest.NewRecorder()
		h.List(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/478758/movements"+q, nil), "number", "478758"))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestMovementHandler_GetUpdateReverse(t *testing.T) {
	query := &movementQueryStub{
		getFn: func(ctx context.Context, id int64) (*domain.Movement, error) {
			if id != 12 {
				return nil, domain.ErrMovementNotFound
			}
			return testMovement(id, "-575"), nil
		},
		updateFn: func(ctx context.Context, id int64, description string) (*domain.Movement, error) {
			m := testMovement(id, "-575")
			m.Description = description
			return m, nil
		},
	}
	ledger := &ledgerServiceStub{
		reverseFn: func(ctx context.Context, movementID int64) (*domain.Movement, error) {
			if movementID == 13 {
				return nil, domain.ErrAlreadyReversed
			}
			orig := movementID
			m := testMovement(40, "575")
			m.Kind = domain.MovementKindDeposit
			m.ReversalOf = &orig
			return m, nil
		},
	}
	h := NewMovementHandler(ledger, query)

	rec := httptest.NewRecorder()
	h.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/movements/12", nil), "id", "12"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/movements/99", nil), "id", "99"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateDescription(rec, withURLParam(httptest.NewRequest(http.MethodPatch, "/movements/12", bytes.NewBufferString(`{"description":"Pago"}`)), "id", "12"))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated dto.MovementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Pago", updated.Description)

	rec = httptest.NewRecorder()
	h.Reverse(rec, withURLParam(httptest.NewRequest(http.MethodPost, "/movements/12/reverse", nil), "id", "12"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var compensation dto.MovementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &compensation))
	require.NotNil(t, compensation.ReversalOf)
	assert.Equal(t, int64(12), *compensation.ReversalOf)

	rec = httptest.NewRecorder()
	h.Reverse(rec, withURLParam(httptest.NewRequest(http.MethodPost, "/movements/13/reverse", nil), "id", "13"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
