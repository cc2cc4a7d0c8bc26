package handler

import (
	"context"
	"net/http"

	"github.com/tallybooks/tallybooks/internal/adapter/http/middleware"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// TrialBalanceService defines the report behavior needed by ReportHandler.
type TrialBalanceService interface {
	GetTrialBalance(ctx context.Context, tenantID string, refresh bool) (*usecase.TrialBalance, error)
}

// ConsistencyService verifies ledger-wide debit/credit equality.
type ConsistencyService interface {
	CheckConsistency(ctx context.Context, tenantID string) (bool, error)
}

// ReportHandler handles read-only report HTTP requests.
type ReportHandler struct {
	reportUC TrialBalanceService
	entryUC  ConsistencyService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC TrialBalanceService, entryUC ConsistencyService) *ReportHandler {
	return &ReportHandler{
		reportUC: reportUC,
		entryUC:  entryUC,
	}
}

// TrialBalance returns every account with its balance in the debit or
// credit column. Pass refresh=true to bypass the cache.
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"

	tb, err := h.reportUC.GetTrialBalance(r.Context(), actor.TenantID, refresh)
	if err != nil {
		writeDomainError(w, "failed to build trial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, tb)
}

// Consistency reports whether total debits equal total credits across all
// posted lines.
func (h *ReportHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	consistent, err := h.entryUC.CheckConsistency(r.Context(), actor.TenantID)
	if err != nil {
		writeDomainError(w, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"consistent": consistent})
}
