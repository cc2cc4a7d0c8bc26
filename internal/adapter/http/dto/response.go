package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Category       string          `json:"category,omitempty"`
	ParentID       *string         `json:"parent_id,omitempty"`
	NormalBalance  string          `json:"normal_balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Type:           string(a.Type),
		Category:       a.Category,
		ParentID:       a.ParentID,
		NormalBalance:  string(a.NormalBalance),
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// AccountNodeResponse represents one node of the chart hierarchy.
type AccountNodeResponse struct {
	Account  *AccountResponse       `json:"account"`
	Children []*AccountNodeResponse `json:"children,omitempty"`
}

// HierarchyFromDomain converts chart trees to responses.
func HierarchyFromDomain(nodes []*domain.AccountNode) []*AccountNodeResponse {
	result := make([]*AccountNodeResponse, len(nodes))
	for i, n := range nodes {
		result[i] = &AccountNodeResponse{
			Account:  AccountFromDomain(n.Account),
			Children: HierarchyFromDomain(n.Children),
		}
	}
	return result
}

// JournalLineResponse represents one line of a posted entry.
type JournalLineResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID              string                `json:"id"`
	EntryNumber     int64                 `json:"entry_number"`
	EntryDate       time.Time             `json:"entry_date"`
	Description     string                `json:"description"`
	Type            string                `json:"type"`
	Status          string                `json:"status"`
	Lines           []JournalLineResponse `json:"lines"`
	IsReversed      bool                  `json:"is_reversed"`
	ReversalEntryID *string               `json:"reversal_entry_id,omitempty"`
	CreatedBy       string                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
}

// EntryFromDomain converts a domain journal entry to a response.
func EntryFromDomain(e *domain.JournalEntry) *EntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:          l.ID,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	return &EntryResponse{
		ID:              e.ID,
		EntryNumber:     e.EntryNumber,
		EntryDate:       e.EntryDate,
		Description:     e.Description,
		Type:            string(e.Type),
		Status:          string(e.Status),
		Lines:           lines,
		IsReversed:      e.IsReversed,
		ReversalEntryID: e.ReversalEntryID,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain journal entries to responses.
func EntriesFromDomain(entries []*domain.JournalEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ActivityResponse represents one account-statement row.
type ActivityResponse struct {
	EntryID     string          `json:"entry_id"`
	EntryNumber int64           `json:"entry_number"`
	EntryDate   time.Time       `json:"entry_date"`
	EntryType   string          `json:"entry_type"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// ActivityFromDomain converts account-statement rows to responses.
func ActivityFromDomain(rows []*domain.AccountActivity) []*ActivityResponse {
	result := make([]*ActivityResponse, len(rows))
	for i, row := range rows {
		result[i] = &ActivityResponse{
			EntryID:     row.EntryID,
			EntryNumber: row.EntryNumber,
			EntryDate:   row.EntryDate,
			EntryType:   string(row.EntryType),
			Description: row.Description,
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}
	return result
}

// PeriodResponse represents a financial period's lock state.
type PeriodResponse struct {
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	IsLocked     bool       `json:"is_locked"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	LockedBy     *string    `json:"locked_by,omitempty"`
	UnlockedBy   *string    `json:"unlocked_by,omitempty"`
	UnlockReason *string    `json:"unlock_reason,omitempty"`
}

// PeriodFromDomain converts a domain period to a response.
func PeriodFromDomain(p *domain.FinancialPeriod) *PeriodResponse {
	return &PeriodResponse{
		Year:         p.Year,
		Month:        int(p.Month),
		IsLocked:     p.IsLocked,
		LockedAt:     p.LockedAt,
		LockedBy:     p.LockedBy,
		UnlockedBy:   p.UnlockedBy,
		UnlockReason: p.UnlockReason,
	}
}

// PeriodSummaryResponse represents a period's financial rollup.
type PeriodSummaryResponse struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetIncome         decimal.Decimal `json:"net_income"`
	JournalEntryCount int64           `json:"journal_entry_count"`
	ComputedAt        time.Time       `json:"computed_at"`
}

// PeriodSummaryFromDomain converts a domain summary to a response.
func PeriodSummaryFromDomain(s *domain.PeriodSummary) *PeriodSummaryResponse {
	return &PeriodSummaryResponse{
		Year:              s.Year,
		Month:             int(s.Month),
		TotalRevenue:      s.TotalRevenue,
		TotalExpenses:     s.TotalExpenses,
		NetIncome:         s.NetIncome,
		JournalEntryCount: s.JournalEntryCount,
		ComputedAt:        s.ComputedAt,
	}
}

// OpeningBalanceResponse represents a staged opening balance.
type OpeningBalanceResponse struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	AsOfDate   time.Time       `json:"as_of_date"`
	Balance    decimal.Decimal `json:"balance"`
	CustomerID *string         `json:"customer_id,omitempty"`
	VendorID   *string         `json:"vendor_id,omitempty"`
	IsPosted   bool            `json:"is_posted"`
	PostedAt   *time.Time      `json:"posted_at,omitempty"`
	EntryID    *string         `json:"entry_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OpeningBalanceFromDomain converts a staged balance to a response.
func OpeningBalanceFromDomain(b *domain.OpeningBalance) *OpeningBalanceResponse {
	return &OpeningBalanceResponse{
		ID:         b.ID,
		AccountID:  b.AccountID,
		AsOfDate:   b.AsOfDate,
		Balance:    b.Balance,
		CustomerID: b.CustomerID,
		VendorID:   b.VendorID,
		IsPosted:   b.IsPosted,
		PostedAt:   b.PostedAt,
		EntryID:    b.EntryID,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// OpeningBalancesFromDomain converts staged balances to responses.
func OpeningBalancesFromDomain(balances []*domain.OpeningBalance) []*OpeningBalanceResponse {
	result := make([]*OpeningBalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = OpeningBalanceFromDomain(b)
	}
	return result
}

// PostingFailureResponse records why one staged balance could not post.
type PostingFailureResponse struct {
	OpeningBalanceID string `json:"opening_balance_id"`
	AccountID        string `json:"account_id"`
	Reason           string `json:"reason"`
}

// PostingResultResponse summarizes a batch opening-balance posting.
type PostingResultResponse struct {
	Posted int                      `json:"posted"`
	Failed int                      `json:"failed"`
	Errors []PostingFailureResponse `json:"errors,omitempty"`
}

// PostingResultFromDomain converts a batch posting result to a response.
func PostingResultFromDomain(r *domain.PostingResult) *PostingResultResponse {
	errs := make([]PostingFailureResponse, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = PostingFailureResponse{
			OpeningBalanceID: e.OpeningBalanceID,
			AccountID:        e.AccountID,
			Reason:           e.Reason,
		}
	}

	return &PostingResultResponse{
		Posted: r.Posted,
		Failed: r.Failed,
		Errors: errs,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
