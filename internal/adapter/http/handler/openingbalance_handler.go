package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tallybooks/tallybooks/internal/adapter/http/dto"
	"github.com/tallybooks/tallybooks/internal/adapter/http/middleware"
	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// OpeningBalanceHandler handles cutover-import HTTP requests.
type OpeningBalanceHandler struct {
	balanceUC *usecase.OpeningBalanceUseCase
}

// NewOpeningBalanceHandler creates a new OpeningBalanceHandler.
func NewOpeningBalanceHandler(balanceUC *usecase.OpeningBalanceUseCase) *OpeningBalanceHandler {
	return &OpeningBalanceHandler{balanceUC: balanceUC}
}

// Stage creates or overwrites the unposted balance for an account and
// cutover date.
func (h *OpeningBalanceHandler) Stage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanPost)
	if !ok {
		return
	}

	var req dto.StageBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	balance, err := h.balanceUC.StageBalance(r.Context(), req.ToUseCaseInput(actor.TenantID))
	if err != nil {
		writeDomainError(w, "failed to stage balance", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OpeningBalanceFromDomain(balance))
}

// Get retrieves a staged balance by ID.
func (h *OpeningBalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	balance, err := h.balanceUC.GetBalance(r.Context(), actor.TenantID, id)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OpeningBalanceFromDomain(balance))
}

// ListUnposted lists balances staged for a cutover date that have not been
// turned into journal entries yet.
func (h *OpeningBalanceHandler) ListUnposted(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	asOf, set, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'as_of' date", err.Error())
		return
	}
	if !set {
		asOf = time.Now().UTC()
	}

	balances, err := h.balanceUC.ListUnposted(r.Context(), actor.TenantID, asOf)
	if err != nil {
		writeDomainError(w, "failed to list balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OpeningBalancesFromDomain(balances))
}

// Post turns every balance staged for the cutover date into an
// OPENING_BALANCE journal entry. Failures are reported per balance; the
// batch itself always completes.
func (h *OpeningBalanceHandler) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanPost)
	if !ok {
		return
	}

	var req dto.PostBalancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.balanceUC.PostBalances(r.Context(), usecase.PostBalancesInput{
		TenantID: actor.TenantID,
		AsOfDate: req.AsOfDate,
		Actor:    actor,
	})
	if err != nil {
		writeDomainError(w, "failed to post balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingResultFromDomain(result))
}
