package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
	"github.com/tallybooks/tallybooks/internal/usecase/mocks"
)

const testTenant = "tenant-1"

func owner() domain.User {
	return domain.User{ID: uuid.New(), TenantID: testTenant, Role: domain.RoleOwner}
}

func accountant() domain.User {
	return domain.User{ID: uuid.New(), TenantID: testTenant, Role: domain.RoleAccountant}
}

func testAccount(id, code string, accountType domain.AccountType) *domain.Account {
	return &domain.Account{
		ID:            id,
		TenantID:      testTenant,
		Code:          code,
		Name:          "Account " + code,
		Type:          accountType,
		NormalBalance: domain.NormalBalanceFor(accountType),
		IsActive:      true,
	}
}

func newEntryUseCase(accountRepo *mocks.MockAccountRepository, entryRepo *mocks.MockEntryRepository, guard usecase.PeriodGuard) (*usecase.EntryUseCase, *mocks.MockOutboxRepository) {
	if guard == nil {
		guard = mocks.NewMockPeriodGuard()
	}
	outboxRepo := mocks.NewMockOutboxRepository()

	uc := usecase.NewEntryUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		entryRepo,
		outboxRepo,
		guard,
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
		nil,
	)

	return uc, outboxRepo
}

func TestEntryUseCase_CreateEntry(t *testing.T) {
	amount := decimal.NewFromInt(500)

	tests := []struct {
		name      string
		lines     []usecase.EntryLineInput
		setup     func(*mocks.MockAccountRepository)
		wantErr   error
		wantCash  string // expected cash balance after posting
		wantSales string // expected revenue balance after posting
	}{
		{
			name: "balanced entry updates both balances in normal direction",
			lines: []usecase.EntryLineInput{
				{AccountID: "cash", Debit: amount},
				{AccountID: "sales", Credit: amount},
			},
			wantCash:  "500",
			wantSales: "500",
		},
		{
			name: "unbalanced entry rejected",
			lines: []usecase.EntryLineInput{
				{AccountID: "cash", Debit: amount},
				{AccountID: "sales", Credit: decimal.NewFromInt(400)},
			},
			wantErr: domain.ErrUnbalancedEntry,
		},
		{
			name: "single line rejected",
			lines: []usecase.EntryLineInput{
				{AccountID: "cash", Debit: amount},
			},
			wantErr: domain.ErrTooFewLines,
		},
		{
			name: "unknown account rejected",
			lines: []usecase.EntryLineInput{
				{AccountID: "cash", Debit: amount},
				{AccountID: "missing", Credit: amount},
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "inactive account rejected",
			lines: []usecase.EntryLineInput{
				{AccountID: "cash", Debit: amount},
				{AccountID: "sales", Credit: amount},
			},
			setup: func(repo *mocks.MockAccountRepository) {
				inactive := testAccount("sales", "4010", domain.AccountTypeRevenue)
				inactive.IsActive = false
				repo.Seed(inactive)
			},
			wantErr: domain.ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := mocks.NewMockAccountRepository()
			accountRepo.Seed(
				testAccount("cash", "1010", domain.AccountTypeAsset),
				testAccount("sales", "4010", domain.AccountTypeRevenue),
			)
			if tt.setup != nil {
				tt.setup(accountRepo)
			}

			entryRepo := mocks.NewMockEntryRepository()
			uc, outboxRepo := newEntryUseCase(accountRepo, entryRepo, nil)

			entry, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
				TenantID:  testTenant,
				EntryDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
				Type:      domain.EntryTypeManual,
				Lines:     tt.lines,
				Actor:     accountant(),
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if entry.EntryNumber != 1 {
				t.Errorf("expected entry number 1, got %d", entry.EntryNumber)
			}

			cash, _ := accountRepo.GetByID(context.Background(), testTenant, "cash")
			if cash.CurrentBalance.String() != tt.wantCash {
				t.Errorf("cash balance: expected %s, got %s", tt.wantCash, cash.CurrentBalance)
			}

			sales, _ := accountRepo.GetByID(context.Background(), testTenant, "sales")
			if sales.CurrentBalance.String() != tt.wantSales {
				t.Errorf("sales balance: expected %s, got %s", tt.wantSales, sales.CurrentBalance)
			}

			if len(outboxRepo.Events) != 1 {
				t.Fatalf("expected 1 outbox event, got %d", len(outboxRepo.Events))
			}
			if outboxRepo.Events[0].EventType != domain.EventTypeEntryPosted {
				t.Errorf("unexpected event type %q", outboxRepo.Events[0].EventType)
			}
		})
	}
}

func TestEntryUseCase_CreateEntry_PeriodLocked(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(
		testAccount("cash", "1010", domain.AccountTypeAsset),
		testAccount("sales", "4010", domain.AccountTypeRevenue),
	)

	guard := mocks.NewMockPeriodGuard()
	guard.GuardPostingFunc = func(ctx context.Context, tenantID string, entryDate time.Time, actor domain.User) error {
		return domain.ErrPeriodLocked
	}

	uc, _ := newEntryUseCase(accountRepo, mocks.NewMockEntryRepository(), guard)

	amount := decimal.NewFromInt(100)
	_, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		TenantID:  testTenant,
		EntryDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Type:      domain.EntryTypeManual,
		Lines: []usecase.EntryLineInput{
			{AccountID: "cash", Debit: amount},
			{AccountID: "sales", Credit: amount},
		},
		Actor: accountant(),
	})

	if !errors.Is(err, domain.ErrPeriodLocked) {
		t.Fatalf("expected ErrPeriodLocked, got %v", err)
	}

	// Nothing may change on rejection.
	cash, _ := accountRepo.GetByID(context.Background(), testTenant, "cash")
	if !cash.CurrentBalance.IsZero() {
		t.Errorf("expected untouched balance, got %s", cash.CurrentBalance)
	}
}

func TestEntryUseCase_SequentialEntryNumbers(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(
		testAccount("cash", "1010", domain.AccountTypeAsset),
		testAccount("sales", "4010", domain.AccountTypeRevenue),
	)

	uc, _ := newEntryUseCase(accountRepo, mocks.NewMockEntryRepository(), nil)

	amount := decimal.NewFromInt(50)
	for want := int64(1); want <= 3; want++ {
		entry, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
			TenantID:  testTenant,
			EntryDate: time.Now().UTC(),
			Type:      domain.EntryTypeManual,
			Lines: []usecase.EntryLineInput{
				{AccountID: "cash", Debit: amount},
				{AccountID: "sales", Credit: amount},
			},
			Actor: accountant(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.EntryNumber != want {
			t.Errorf("expected entry number %d, got %d", want, entry.EntryNumber)
		}
	}
}

func TestEntryUseCase_ReverseEntry(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(
		testAccount("cash", "1010", domain.AccountTypeAsset),
		testAccount("sales", "4010", domain.AccountTypeRevenue),
	)

	entryRepo := mocks.NewMockEntryRepository()
	uc, outboxRepo := newEntryUseCase(accountRepo, entryRepo, nil)

	amount := decimal.NewFromInt(500)
	original, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		TenantID:  testTenant,
		EntryDate: time.Now().UTC(),
		Type:      domain.EntryTypeManual,
		Lines: []usecase.EntryLineInput{
			{AccountID: "cash", Debit: amount},
			{AccountID: "sales", Credit: amount},
		},
		Actor: accountant(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reversal, err := uc.ReverseEntry(context.Background(), usecase.ReverseEntryInput{
		TenantID: testTenant,
		EntryID:  original.ID,
		Actor:    accountant(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reversal.Type != domain.EntryTypeReversal {
		t.Errorf("expected REVERSAL type, got %s", reversal.Type)
	}

	// Reversal restores both balances to zero.
	cash, _ := accountRepo.GetByID(context.Background(), testTenant, "cash")
	if !cash.CurrentBalance.IsZero() {
		t.Errorf("expected zero cash balance, got %s", cash.CurrentBalance)
	}
	sales, _ := accountRepo.GetByID(context.Background(), testTenant, "sales")
	if !sales.CurrentBalance.IsZero() {
		t.Errorf("expected zero sales balance, got %s", sales.CurrentBalance)
	}

	// Original is flagged, never deleted.
	got, err := uc.GetEntry(context.Background(), testTenant, original.ID)
	if err != nil {
		t.Fatalf("original entry should still exist: %v", err)
	}
	if !got.IsReversed {
		t.Error("expected original flagged as reversed")
	}
	if got.ReversalEntryID == nil || *got.ReversalEntryID != reversal.ID {
		t.Error("expected original linked to reversal entry")
	}

	// Second reversal must fail.
	_, err = uc.ReverseEntry(context.Background(), usecase.ReverseEntryInput{
		TenantID: testTenant,
		EntryID:  original.ID,
		Actor:    accountant(),
	})
	if !errors.Is(err, domain.ErrAlreadyReversed) {
		t.Fatalf("expected ErrAlreadyReversed, got %v", err)
	}

	var reversedEvents int
	for _, e := range outboxRepo.Events {
		if e.EventType == domain.EventTypeEntryReversed {
			reversedEvents++
		}
	}
	if reversedEvents != 1 {
		t.Errorf("expected exactly one reversal event, got %d", reversedEvents)
	}
}

func TestEntryUseCase_CheckConsistency(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(
		testAccount("cash", "1010", domain.AccountTypeAsset),
		testAccount("sales", "4010", domain.AccountTypeRevenue),
	)

	entryRepo := mocks.NewMockEntryRepository()
	uc, _ := newEntryUseCase(accountRepo, entryRepo, nil)

	amount := decimal.NewFromInt(120)
	_, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		TenantID:  testTenant,
		EntryDate: time.Now().UTC(),
		Type:      domain.EntryTypeManual,
		Lines: []usecase.EntryLineInput{
			{AccountID: "cash", Debit: amount},
			{AccountID: "sales", Credit: amount},
		},
		Actor: accountant(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := uc.CheckConsistency(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected a balanced ledger")
	}

	entryRepo.CheckConsistencyFunc = func(ctx context.Context, tenantID string) (decimal.Decimal, decimal.Decimal, error) {
		return decimal.NewFromInt(100), decimal.NewFromInt(99), nil
	}

	ok, err = uc.CheckConsistency(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected inconsistency to be reported")
	}
}

func TestEntryUseCase_GetAccountActivity_UnknownAccount(t *testing.T) {
	uc, _ := newEntryUseCase(mocks.NewMockAccountRepository(), mocks.NewMockEntryRepository(), nil)

	_, err := uc.GetAccountActivity(context.Background(), usecase.AccountActivityInput{
		TenantID:  testTenant,
		AccountID: "missing",
	})

	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
