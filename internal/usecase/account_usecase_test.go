package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
	"github.com/tallybooks/tallybooks/internal/usecase/mocks"
)

func newAccountUseCase(accountRepo *mocks.MockAccountRepository, entryRepo *mocks.MockEntryRepository) *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		entryRepo,
		mocks.NewMockOutboxRepository(),
		mocks.NewMockIDGenerator(),
		nil,
	)
}

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		setup   func(*mocks.MockAccountRepository)
		wantErr error
	}{
		{
			name: "successful creation with derived normal balance",
			input: usecase.CreateAccountInput{
				TenantID: testTenant,
				Code:     "1010",
				Name:     "Cash",
				Type:     domain.AccountTypeAsset,
			},
		},
		{
			name: "opening balance seeds current balance",
			input: usecase.CreateAccountInput{
				TenantID:       testTenant,
				Code:           "1020",
				Name:           "Bank",
				Type:           domain.AccountTypeAsset,
				OpeningBalance: decimal.NewFromInt(1500),
			},
		},
		{
			name: "invalid code rejected",
			input: usecase.CreateAccountInput{
				TenantID: testTenant,
				Code:     "CASH",
				Name:     "Cash",
				Type:     domain.AccountTypeAsset,
			},
			wantErr: domain.ErrInvalidAccountCode,
		},
		{
			name: "invalid type rejected",
			input: usecase.CreateAccountInput{
				TenantID: testTenant,
				Code:     "1010",
				Name:     "Cash",
				Type:     domain.AccountType("CONTRA"),
			},
			wantErr: domain.ErrInvalidAccountType,
		},
		{
			name: "duplicate code rejected",
			input: usecase.CreateAccountInput{
				TenantID: testTenant,
				Code:     "1010",
				Name:     "Cash",
				Type:     domain.AccountTypeAsset,
			},
			setup: func(repo *mocks.MockAccountRepository) {
				repo.Seed(testAccount("existing", "1010", domain.AccountTypeAsset))
			},
			wantErr: domain.ErrDuplicateCode,
		},
		{
			name: "missing parent rejected",
			input: usecase.CreateAccountInput{
				TenantID: testTenant,
				Code:     "1011",
				Name:     "Petty Cash",
				Type:     domain.AccountTypeAsset,
				ParentID: strPtr("nope"),
			},
			wantErr: domain.ErrInvalidParent,
		},
		{
			name: "parent type mismatch rejected",
			input: usecase.CreateAccountInput{
				TenantID: testTenant,
				Code:     "1011",
				Name:     "Petty Cash",
				Type:     domain.AccountTypeAsset,
				ParentID: strPtr("sales"),
			},
			setup: func(repo *mocks.MockAccountRepository) {
				repo.Seed(testAccount("sales", "4010", domain.AccountTypeRevenue))
			},
			wantErr: domain.ErrInvalidParent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := mocks.NewMockAccountRepository()
			if tt.setup != nil {
				tt.setup(accountRepo)
			}

			uc := newAccountUseCase(accountRepo, mocks.NewMockEntryRepository())

			account, err := uc.CreateAccount(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.NormalBalance != domain.NormalBalanceFor(tt.input.Type) {
				t.Errorf("unexpected normal balance %s", account.NormalBalance)
			}
			if !account.CurrentBalance.Equal(tt.input.OpeningBalance) {
				t.Errorf("expected current balance %s, got %s", tt.input.OpeningBalance, account.CurrentBalance)
			}
			if !account.IsActive {
				t.Error("expected new account active")
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestAccountUseCase_DeleteAccount(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*mocks.MockAccountRepository, *mocks.MockEntryRepository)
		id      string
		wantErr error
	}{
		{
			name: "delete leaf without activity",
			id:   "cash",
			setup: func(accounts *mocks.MockAccountRepository, entries *mocks.MockEntryRepository) {
				accounts.Seed(testAccount("cash", "1010", domain.AccountTypeAsset))
			},
		},
		{
			name:    "unknown account",
			id:      "missing",
			setup:   func(accounts *mocks.MockAccountRepository, entries *mocks.MockEntryRepository) {},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "account with children",
			id:   "parent",
			setup: func(accounts *mocks.MockAccountRepository, entries *mocks.MockEntryRepository) {
				parent := testAccount("parent", "1000", domain.AccountTypeAsset)
				child := testAccount("child", "1010", domain.AccountTypeAsset)
				child.ParentID = strPtr("parent")
				accounts.Seed(parent, child)
			},
			wantErr: domain.ErrAccountHasChildren,
		},
		{
			name: "account with posted lines",
			id:   "cash",
			setup: func(accounts *mocks.MockAccountRepository, entries *mocks.MockEntryRepository) {
				accounts.Seed(testAccount("cash", "1010", domain.AccountTypeAsset))
				entries.AccountHasLinesFunc = func(ctx context.Context, tenantID, accountID string) (bool, error) {
					return true, nil
				}
			},
			wantErr: domain.ErrAccountHasActivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := mocks.NewMockAccountRepository()
			entryRepo := mocks.NewMockEntryRepository()
			tt.setup(accountRepo, entryRepo)

			uc := newAccountUseCase(accountRepo, entryRepo)

			err := uc.DeleteAccount(context.Background(), testTenant, tt.id)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := accountRepo.GetByID(context.Background(), testTenant, tt.id); !errors.Is(err, domain.ErrAccountNotFound) {
				t.Error("expected account gone after delete")
			}
		})
	}
}

func TestAccountUseCase_SeedStandardChart(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	uc := newAccountUseCase(accountRepo, mocks.NewMockEntryRepository())
	ctx := context.Background()

	created, err := uc.SeedStandardChart(ctx, testTenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == 0 {
		t.Fatal("expected accounts created")
	}

	// The offset account the opening-balance importer depends on must exist.
	offset, err := uc.GetAccountByCode(ctx, testTenant, usecase.OpeningBalanceOffsetCode)
	if err != nil {
		t.Fatalf("expected offset account: %v", err)
	}
	if offset.Type != domain.AccountTypeEquity {
		t.Errorf("expected EQUITY offset account, got %s", offset.Type)
	}

	// Seeding again is a no-op.
	again, err := uc.SeedStandardChart(ctx, testTenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 0 {
		t.Errorf("expected idempotent reseed, created %d", again)
	}
}

func TestAccountUseCase_GetHierarchy(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	parent := testAccount("p", "1000", domain.AccountTypeAsset)
	child := testAccount("c", "1010", domain.AccountTypeAsset)
	child.ParentID = strPtr("p")
	accountRepo.Seed(parent, child)

	uc := newAccountUseCase(accountRepo, mocks.NewMockEntryRepository())

	roots, err := uc.GetHierarchy(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if len(roots[0].Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(roots[0].Children))
	}
}

func TestAccountUseCase_SetAccountActive(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(testAccount("cash", "1010", domain.AccountTypeAsset))

	uc := newAccountUseCase(accountRepo, mocks.NewMockEntryRepository())
	ctx := context.Background()

	if err := uc.SetAccountActive(ctx, testTenant, "cash", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := accountRepo.GetByID(ctx, testTenant, "cash")
	if account.IsActive {
		t.Error("expected account inactive")
	}

	if err := uc.SetAccountActive(ctx, testTenant, "missing", false); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
