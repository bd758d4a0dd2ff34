package handler

import (
	"context"
	"net/http"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/usecase"
)

// ReconciliationService checks balances against movement history.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, number int64) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler exposes balance reconciliation.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Account reconciles a single account.
func (h *ReconciliationHandler) Account(w http.ResponseWriter, r *http.Request) {
	number, err := parseInt64Param(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account number", err.Error())
		return
	}

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), number)
	if err != nil {
		writeDomainError(w, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Ledger reconciles every account. An inconsistent ledger answers 409 so
// monitors can alert on the status code alone.
func (h *ReconciliationHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, "failed to reconcile ledger", err)
		return
	}

	status := http.StatusOK
	if !report.Consistent() {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ReportFromUseCase(report))
}
