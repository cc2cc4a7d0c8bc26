package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallybooks/tallybooks/internal/adapter/http/dto"
	"github.com/tallybooks/tallybooks/internal/adapter/http/middleware"
	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// PeriodHandler handles financial-period HTTP requests.
type PeriodHandler struct {
	periodUC *usecase.PeriodUseCase
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodUC *usecase.PeriodUseCase) *PeriodHandler {
	return &PeriodHandler{periodUC: periodUC}
}

// Get returns a period's lock state. A period with no record is open.
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	year, month, err := parsePeriodParams(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	period, err := h.periodUC.GetPeriod(r.Context(), actor.TenantID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			writeJSON(w, http.StatusOK, &dto.PeriodResponse{
				Year:     year,
				Month:    int(month),
				IsLocked: false,
			})
			return
		}

		writeDomainError(w, "failed to get period", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// Lock closes a period against further postings.
func (h *PeriodHandler) Lock(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanPost)
	if !ok {
		return
	}

	year, month, err := parsePeriodParams(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	if err := h.periodUC.Lock(r.Context(), actor.TenantID, year, month, actor); err != nil {
		writeDomainError(w, "failed to lock period", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"locked": true})
}

// Unlock reopens a locked period. Requires the override capability and an
// audit reason.
func (h *PeriodHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	year, month, err := parsePeriodParams(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	var req dto.UnlockPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := h.periodUC.Unlock(r.Context(), actor.TenantID, year, month, actor, req.Reason); err != nil {
		writeDomainError(w, "failed to unlock period", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"locked": false})
}

// Summary returns the period's financial rollup, recomputing it on a cache
// miss.
func (h *PeriodHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	year, month, err := parsePeriodParams(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	summary, err := h.periodUC.GetSummary(r.Context(), actor.TenantID, year, month)
	if err != nil {
		writeDomainError(w, "failed to get summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodSummaryFromDomain(summary))
}

// RecomputeSummary rebuilds the rollup from posted entries, bypassing any
// cached copy.
func (h *PeriodHandler) RecomputeSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	year, month, err := parsePeriodParams(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	summary, err := h.periodUC.RecomputeSummary(r.Context(), actor.TenantID, year, month)
	if err != nil {
		writeDomainError(w, "failed to recompute summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodSummaryFromDomain(summary))
}
