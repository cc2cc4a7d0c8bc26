package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	gomock "go.uber.org/mock/gomock"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
	"github.com/tallybooks/tallybooks/internal/usecase/mocks"
)

func TestReportUseCase_GetTrialBalance(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()

	cash := testAccount("cash", "1010", domain.AccountTypeAsset)
	cash.CurrentBalance = decimal.NewFromInt(700)
	payable := testAccount("ap", "2100", domain.AccountTypeLiability)
	payable.CurrentBalance = decimal.NewFromInt(200)
	equity := testAccount("equity", "3000", domain.AccountTypeEquity)
	equity.CurrentBalance = decimal.NewFromInt(500)
	accountRepo.Seed(cash, payable, equity)

	uc := usecase.NewReportUseCase(accountRepo, nil)

	tb, err := uc.GetTrialBalance(context.Background(), testTenant, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tb.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tb.Rows))
	}

	// Rows follow chart-code order; balances land on each account's normal
	// side.
	if tb.Rows[0].Code != "1010" || tb.Rows[0].Debit.String() != "700" {
		t.Errorf("unexpected first row: %+v", tb.Rows[0])
	}
	if tb.Rows[1].Code != "2100" || tb.Rows[1].Credit.String() != "200" {
		t.Errorf("unexpected second row: %+v", tb.Rows[1])
	}

	if !tb.TotalDebits.Equal(tb.TotalCredits) {
		t.Errorf("trial balance out of balance: %s vs %s", tb.TotalDebits, tb.TotalCredits)
	}
	if tb.TotalDebits.String() != "700" {
		t.Errorf("expected column totals 700, got %s", tb.TotalDebits)
	}
}

func TestReportUseCase_GetTrialBalance_NegativeFlipsColumn(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()

	overdrawn := testAccount("cash", "1010", domain.AccountTypeAsset)
	overdrawn.CurrentBalance = decimal.NewFromInt(-150)
	accountRepo.Seed(overdrawn)

	uc := usecase.NewReportUseCase(accountRepo, nil)

	tb, err := uc.GetTrialBalance(context.Background(), testTenant, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A negative asset balance shows in the credit column, as a positive
	// magnitude.
	if !tb.Rows[0].Debit.IsZero() {
		t.Errorf("expected empty debit column, got %s", tb.Rows[0].Debit)
	}
	if tb.Rows[0].Credit.String() != "150" {
		t.Errorf("expected credit 150, got %s", tb.Rows[0].Credit)
	}
}

func TestReportUseCase_GetTrialBalance_Cached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository()
	cash := testAccount("cash", "1010", domain.AccountTypeAsset)
	cash.CurrentBalance = decimal.NewFromInt(100)
	accountRepo.Seed(cash)

	cache := mocks.NewMockCache(ctrl)

	// First read misses the cache and stores the computed report.
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", nil)
	var stored string
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value string, _ time.Duration) error {
			stored = value
			return nil
		})

	uc := usecase.NewReportUseCase(accountRepo, cache)

	first, err := uc.GetTrialBalance(context.Background(), testTenant, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second read is served from the cache without touching the repository.
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
	accountRepo.ListAllFunc = func(ctx context.Context, tenantID string) ([]*domain.Account, error) {
		t.Fatal("cache hit must not touch the repository")
		return nil, nil
	}

	second, err := uc.GetTrialBalance(context.Background(), testTenant, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.TotalDebits.Equal(second.TotalDebits) {
		t.Errorf("cached report differs: %s vs %s", first.TotalDebits, second.TotalDebits)
	}
}
