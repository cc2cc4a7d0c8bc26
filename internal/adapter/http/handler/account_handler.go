package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallybooks/tallybooks/internal/adapter/http/dto"
	"github.com/tallybooks/tallybooks/internal/adapter/http/middleware"
	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	GetHierarchy(ctx context.Context, tenantID string) ([]*domain.AccountNode, error)
	SetAccountActive(ctx context.Context, tenantID, id string, active bool) error
	DeleteAccount(ctx context.Context, tenantID, id string) error
	SeedStandardChart(ctx context.Context, tenantID string) (int, error)
}

// AccountHandler handles chart-of-accounts HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanManageAccounts)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(actor.TenantID))
	if err != nil {
		writeDomainError(w, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), actor.TenantID, id)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// GetByCode retrieves an account by chart code.
func (h *AccountHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	account, err := h.accountUC.GetAccountByCode(r.Context(), actor.TenantID, code)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts with pagination.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		TenantID: actor.TenantID,
		Limit:    parseIntQuery(r, "limit", 20),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Hierarchy returns the tenant's chart arranged as parent/child trees.
func (h *AccountHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	nodes, err := h.accountUC.GetHierarchy(r.Context(), actor.TenantID)
	if err != nil {
		writeDomainError(w, "failed to build hierarchy", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HierarchyFromDomain(nodes))
}

// SetActive enables or disables an account.
func (h *AccountHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanManageAccounts)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.SetAccountActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.accountUC.SetAccountActive(r.Context(), actor.TenantID, id, req.Active); err != nil {
		writeDomainError(w, "failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

// Delete removes an account that has neither children nor postings.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanManageAccounts)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if err := h.accountUC.DeleteAccount(r.Context(), actor.TenantID, id); err != nil {
		writeDomainError(w, "failed to delete account", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SeedChart creates the standard small-business chart for the tenant.
func (h *AccountHandler) SeedChart(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanManageAccounts)
	if !ok {
		return
	}

	created, err := h.accountUC.SeedStandardChart(r.Context(), actor.TenantID)
	if err != nil {
		writeDomainError(w, "failed to seed chart", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"created": created})
}

// requireRole extracts the actor and checks a role capability, writing the
// error response itself when the check fails.
func requireRole(w http.ResponseWriter, r *http.Request, allowed func(domain.Role) bool) (domain.User, bool) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return domain.User{}, false
	}

	if !allowed(actor.Role) {
		writeError(w, http.StatusForbidden, "insufficient permissions", "")
		return domain.User{}, false
	}

	return actor, true
}
