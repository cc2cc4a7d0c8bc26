package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
)

// TrialBalanceRow is one account's column placement in a trial balance.
type TrialBalanceRow struct {
	AccountID string             `json:"account_id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Type      domain.AccountType `json:"type"`
	Debit     decimal.Decimal    `json:"debit"`
	Credit    decimal.Decimal    `json:"credit"`
}

// TrialBalance is the full report with column totals. For a consistent
// ledger TotalDebits equals TotalCredits.
type TrialBalance struct {
	TenantID     string            `json:"tenant_id"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"total_debits"`
	TotalCredits decimal.Decimal   `json:"total_credits"`
	ComputedAt   time.Time         `json:"computed_at"`
}

// ReportUseCase builds read-only reports over ledger state.
type ReportUseCase struct {
	accountRepo AccountRepository
	cache       Cache
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(accountRepo AccountRepository, cache Cache) *ReportUseCase {
	return &ReportUseCase{
		accountRepo: accountRepo,
		cache:       cache,
	}
}

// GetTrialBalance lists every account with its balance placed in the debit
// or credit column. A positive balance sits on the account's normal side, a
// negative balance flips to the opposite side. Results are cached briefly;
// pass refresh to bypass the cache.
func (uc *ReportUseCase) GetTrialBalance(ctx context.Context, tenantID string, refresh bool) (*TrialBalance, error) {
	cacheKey := trialBalanceCacheKey(tenantID)

	if !refresh && uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, cacheKey); err == nil && raw != "" {
			var tb TrialBalance
			if err := json.Unmarshal([]byte(raw), &tb); err == nil {
				return &tb, nil
			}
		}
	}

	accounts, err := uc.accountRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{
		TenantID:   tenantID,
		ComputedAt: time.Now().UTC(),
	}

	for _, a := range accounts {
		row := TrialBalanceRow{
			AccountID: a.ID,
			Code:      a.Code,
			Name:      a.Name,
			Type:      a.Type,
		}

		side := a.NormalBalance
		amount := a.CurrentBalance
		if amount.IsNegative() {
			side = oppositeSide(side)
			amount = amount.Abs()
		}

		if side == domain.SideDebit {
			row.Debit = amount
		} else {
			row.Credit = amount
		}

		tb.TotalDebits = tb.TotalDebits.Add(row.Debit)
		tb.TotalCredits = tb.TotalCredits.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}

	sort.Slice(tb.Rows, func(i, j int) bool {
		return tb.Rows[i].Code < tb.Rows[j].Code
	})

	if uc.cache != nil {
		if raw, err := json.Marshal(tb); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, string(raw), SummaryCacheTTL)
		}
	}

	return tb, nil
}

func trialBalanceCacheKey(tenantID string) string {
	return fmt.Sprintf("trial-balance:%s", tenantID)
}
