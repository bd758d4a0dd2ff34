package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/logging"
	"github.com/iho/bankledger/internal/usecase"
)

// LedgerService applies and reverses movements.
type LedgerService interface {
	Apply(ctx context.Context, input usecase.ApplyInput) (*domain.Movement, error)
	Reverse(ctx context.Context, movementID int64) (*domain.Movement, error)
}

// MovementQueryService reads movements and edits their descriptions.
type MovementQueryService interface {
	GetMovement(ctx context.Context, id int64) (*domain.Movement, error)
	FindMovements(ctx context.Context, accountNumber int64) ([]*domain.Movement, error)
	FindMovementsBetween(ctx context.Context, accountNumber int64, from, to time.Time) ([]*domain.Movement, error)
	UpdateDescription(ctx context.Context, id int64, description string) (*domain.Movement, error)
}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	ledgerUC   LedgerService
	movementUC MovementQueryService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(ledgerUC LedgerService, movementUC MovementQueryService) *MovementHandler {
	return &MovementHandler{
		ledgerUC:   ledgerUC,
		movementUC: movementUC,
	}
}

// Apply records a deposit or withdrawal on the account in the path.
func (h *MovementHandler) Apply(w http.ResponseWriter, r *http.Request) {
	number, err := parseInt64Param(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account number", err.Error())
		return
	}

	var req dto.ApplyMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(number)
	if err != nil {
		writeDomainError(w, "invalid movement", err)
		return
	}

	ctx := logging.WithAccountNumber(r.Context(), number)
	movement, err := h.ledgerUC.Apply(ctx, input)
	if err != nil {
		writeDomainError(w, "failed to apply movement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// List returns the account statement, optionally limited to the days
// between from and to inclusive.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	number, err := parseInt64Param(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account number", err.Error())
		return
	}

	q := r.URL.Query()
	fromRaw, toRaw := q.Get("from"), q.Get("to")

	var movements []*domain.Movement
	switch {
	case fromRaw == "" && toRaw == "":
		movements, err = h.movementUC.FindMovements(r.Context(), number)
	case fromRaw == "" || toRaw == "":
		writeError(w, http.StatusBadRequest, "invalid date range", "from and to must be given together")
		return
	default:
		from, perr := dto.ParseDay(fromRaw)
		if perr != nil {
			writeDomainError(w, "invalid date range", perr)
			return
		}
		to, perr := dto.ParseDay(toRaw)
		if perr != nil {
			writeDomainError(w, "invalid date range", perr)
			return
		}
		movements, err = h.movementUC.FindMovementsBetween(r.Context(), number, from, to)
	}
	if err != nil {
		writeDomainError(w, "failed to list movements", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		AccountNumber: number,
		Movements:     dto.MovementsFromDomain(movements),
		Total:         int64(len(movements)),
	})
}

// Get retrieves a movement by id.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movement id", err.Error())
		return
	}

	movement, err := h.movementUC.GetMovement(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get movement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// UpdateDescription replaces the description of a movement.
func (h *MovementHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movement id", err.Error())
		return
	}

	var req dto.UpdateMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.movementUC.UpdateDescription(r.Context(), id, req.Description)
	if err != nil {
		writeDomainError(w, "failed to update movement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// Reverse voids a movement and records its compensation.
func (h *MovementHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movement id", err.Error())
		return
	}

	compensation, err := h.ledgerUC.Reverse(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to reverse movement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(compensation))
}
