package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallybooks/tallybooks/internal/adapter/http/dto"
	"github.com/tallybooks/tallybooks/internal/adapter/http/middleware"
	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// EntryHandler handles journal-entry HTTP requests.
type EntryHandler struct {
	entryUC *usecase.EntryUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC *usecase.EntryUseCase) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// Create posts a new journal entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanPost)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	entry, err := h.entryUC.CreateEntry(r.Context(), req.ToUseCaseInput(actor.TenantID, actor))
	if err != nil {
		writeDomainError(w, "failed to post entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Get retrieves a journal entry with its lines.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), actor.TenantID, id)
	if err != nil {
		writeDomainError(w, "failed to get entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists journal entries newest first.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		TenantID: actor.TenantID,
		Limit:    parseIntQuery(r, "limit", 20),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Reverse posts a mirror entry and flags the original as reversed.
func (h *EntryHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(w, r, domain.Role.CanPost)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	reversal, err := h.entryUC.ReverseEntry(r.Context(), usecase.ReverseEntryInput{
		TenantID: actor.TenantID,
		EntryID:  id,
		Actor:    actor,
	})
	if err != nil {
		writeDomainError(w, "failed to reverse entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(reversal))
}

// Activity returns the account statement: posted lines touching the account
// within an optional [from, to) window.
func (h *EntryHandler) Activity(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	input := usecase.AccountActivityInput{
		TenantID:  actor.TenantID,
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 100),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	from, set, err := parseTimeQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date", err.Error())
		return
	}
	if set {
		input.From = from
	}

	to, set, err := parseTimeQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'to' date", err.Error())
		return
	}
	if set {
		input.To = to
	}

	rows, err := h.entryUC.GetAccountActivity(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to load account activity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ActivityFromDomain(rows))
}
