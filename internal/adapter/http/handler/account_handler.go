package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, number int64) (*domain.Account, error)
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
	SetAccountActive(ctx context.Context, number int64, active bool) (*domain.Account, error)
	CloseAccount(ctx context.Context, number int64) (*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid account", err)
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by number.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	number, err := parseInt64Param(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account number", err.Error())
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), number)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts, optionally filtered by kind, active flag and client.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.AccountFilter{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	}

	q := r.URL.Query()
	if v := q.Get("kind"); v != "" {
		kind, err := domain.ParseAccountKind(v)
		if err != nil {
			writeDomainError(w, "invalid filter", err)
			return
		}
		filter.Kind = &kind
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid filter", "active must be true or false")
			return
		}
		filter.Active = &active
	}
	if v := q.Get("client_id"); v != "" {
		clientID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid filter", "client_id must be an integer")
			return
		}
		filter.ClientID = &clientID
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Update toggles the active flag of an account.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	number, err := parseInt64Param(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account number", err.Error())
		return
	}

	var req dto.UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.SetAccountActive(r.Context(), number, *req.Active)
	if err != nil {
		writeDomainError(w, "failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Close deactivates an account. Accounts are never removed.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	number, err := parseInt64Param(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account number", err.Error())
		return
	}

	account, err := h.accountUC.CloseAccount(r.Context(), number)
	if err != nil {
		writeDomainError(w, "failed to close account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
