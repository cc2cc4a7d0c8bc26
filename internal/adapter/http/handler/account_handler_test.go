package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/tallybooks/tallybooks/internal/adapter/http/dto"
	"github.com/tallybooks/tallybooks/internal/adapter/http/middleware"
	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

type accountServiceStub struct {
	createFn    func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn       func(ctx context.Context, tenantID, id string) (*domain.Account, error)
	getByCodeFn func(ctx context.Context, tenantID, code string) (*domain.Account, error)
	listFn      func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	hierarchyFn func(ctx context.Context, tenantID string) ([]*domain.AccountNode, error)
	setActiveFn func(ctx context.Context, tenantID, id string, active bool) error
	deleteFn    func(ctx context.Context, tenantID, id string) error
	seedFn      func(ctx context.Context, tenantID string) (int, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	return s.getFn(ctx, tenantID, id)
}

func (s *accountServiceStub) GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	return s.getByCodeFn(ctx, tenantID, code)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) GetHierarchy(ctx context.Context, tenantID string) ([]*domain.AccountNode, error) {
	return s.hierarchyFn(ctx, tenantID)
}

func (s *accountServiceStub) SetAccountActive(ctx context.Context, tenantID, id string, active bool) error {
	return s.setActiveFn(ctx, tenantID, id, active)
}

func (s *accountServiceStub) DeleteAccount(ctx context.Context, tenantID, id string) error {
	return s.deleteFn(ctx, tenantID, id)
}

func (s *accountServiceStub) SeedStandardChart(ctx context.Context, tenantID string) (int, error) {
	return s.seedFn(ctx, tenantID)
}

// authedRequest builds a request carrying an authenticated user, the way the
// auth middleware would.
func authedRequest(method, target string, body io.Reader, role domain.Role) *http.Request {
	req := httptest.NewRequest(method, target, body)
	user := domain.User{
		ID:       uuid.New(),
		TenantID: "tenant-1",
		Email:    "user@example.com",
		Role:     role,
		Active:   true,
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:            "acc-1",
		TenantID:      "tenant-1",
		Code:          "1010",
		Name:          "Cash",
		Type:          domain.AccountTypeAsset,
		NormalBalance: domain.SideDebit,
		IsActive:      true,
	}

	var captured usecase.CreateAccountInput
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Code: "1010",
		Name: "Cash",
		Type: "ASSET",
	})

	req := authedRequest(http.MethodPost, "/accounts", bytes.NewReader(body), domain.RoleAccountant)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.TenantID != "tenant-1" {
		t.Fatalf("expected tenant from token, got %q", captured.TenantID)
	}
	if captured.Code != "1010" || captured.Type != domain.AccountTypeAsset {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_ViewerForbidden(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("use case must not be reached")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Code: "1010", Name: "Cash", Type: "ASSET"})
	req := authedRequest(http.MethodPost, "/accounts", bytes.NewReader(body), domain.RoleViewer)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_InvalidBody(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{})

	// Missing required fields fails validation before the use case.
	body, _ := json.Marshal(dto.CreateAccountRequest{Name: "Cash"})
	req := authedRequest(http.MethodPost, "/accounts", bytes.NewReader(body), domain.RoleOwner)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccountHandler_Create_Unauthenticated(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{})

	body, _ := json.Marshal(dto.CreateAccountRequest{Code: "1010", Name: "Cash", Type: "ASSET"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_DomainErrorMapped(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrDuplicateCode
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Code: "1010", Name: "Cash", Type: "ASSET"})
	req := authedRequest(http.MethodPost, "/accounts", bytes.NewReader(body), domain.RoleOwner)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_List_PassesTenantAndPagination(t *testing.T) {
	var captured usecase.ListAccountsInput
	h := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return nil, nil
		},
	})

	req := authedRequest(http.MethodGet, "/accounts?limit=5&offset=10", nil, domain.RoleViewer)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.TenantID != "tenant-1" || captured.Limit != 5 || captured.Offset != 10 {
		t.Fatalf("unexpected input %+v", captured)
	}
}
