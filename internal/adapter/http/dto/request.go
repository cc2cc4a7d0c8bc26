package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Code           string          `json:"code" validate:"required"`
	Name           string          `json:"name" validate:"required,max=255"`
	Type           string          `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Category       string          `json:"category,omitempty"`
	ParentID       *string         `json:"parent_id,omitempty"`
	NormalBalance  string          `json:"normal_balance,omitempty" validate:"omitempty,oneof=DEBIT CREDIT"`
	OpeningBalance decimal.Decimal `json:"opening_balance,omitempty"`
}

// Validate checks the request shape before it reaches the use case.
func (r *CreateAccountRequest) Validate() error {
	return validate.Struct(r)
}

// ToUseCaseInput converts to use case input for the given tenant.
func (r *CreateAccountRequest) ToUseCaseInput(tenantID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		TenantID:       tenantID,
		Code:           r.Code,
		Name:           r.Name,
		Type:           domain.AccountType(r.Type),
		Category:       r.Category,
		ParentID:       r.ParentID,
		NormalBalance:  domain.BalanceSide(r.NormalBalance),
		OpeningBalance: r.OpeningBalance,
	}
}

// SetAccountActiveRequest toggles an account's active flag.
type SetAccountActiveRequest struct {
	Active bool `json:"active"`
}

// EntryLineRequest represents one line of a journal entry request.
type EntryLineRequest struct {
	AccountID   string          `json:"account_id" validate:"required"`
	Debit       decimal.Decimal `json:"debit,omitempty"`
	Credit      decimal.Decimal `json:"credit,omitempty"`
	Description string          `json:"description,omitempty"`
}

// CreateEntryRequest represents a request to post a journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time          `json:"entry_date" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Type        string             `json:"type,omitempty" validate:"omitempty,oneof=MANUAL SYSTEM"`
	Lines       []EntryLineRequest `json:"lines" validate:"required,min=2,dive"`
}

// Validate checks the request shape before it reaches the use case.
func (r *CreateEntryRequest) Validate() error {
	return validate.Struct(r)
}

// ToUseCaseInput converts to use case input for the given tenant and actor.
// Untyped requests post as MANUAL entries; OPENING_BALANCE and REVERSAL
// entries are only created by their dedicated flows.
func (r *CreateEntryRequest) ToUseCaseInput(tenantID string, actor domain.User) usecase.CreateEntryInput {
	entryType := domain.EntryType(r.Type)
	if entryType == "" {
		entryType = domain.EntryTypeManual
	}

	lines := make([]usecase.EntryLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.EntryLineInput{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	return usecase.CreateEntryInput{
		TenantID:    tenantID,
		EntryDate:   r.EntryDate,
		Description: r.Description,
		Type:        entryType,
		Lines:       lines,
		Actor:       actor,
	}
}

// UnlockPeriodRequest represents a request to unlock a financial period.
type UnlockPeriodRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Validate checks the request shape before it reaches the use case.
func (r *UnlockPeriodRequest) Validate() error {
	return validate.Struct(r)
}

// StageBalanceRequest represents a request to stage an opening balance.
type StageBalanceRequest struct {
	AccountID  string          `json:"account_id" validate:"required"`
	Balance    decimal.Decimal `json:"balance"`
	AsOfDate   time.Time       `json:"as_of_date" validate:"required"`
	CustomerID *string         `json:"customer_id,omitempty"`
	VendorID   *string         `json:"vendor_id,omitempty"`
}

// Validate checks the request shape before it reaches the use case.
func (r *StageBalanceRequest) Validate() error {
	return validate.Struct(r)
}

// ToUseCaseInput converts to use case input for the given tenant.
func (r *StageBalanceRequest) ToUseCaseInput(tenantID string) usecase.StageBalanceInput {
	return usecase.StageBalanceInput{
		TenantID:   tenantID,
		AccountID:  r.AccountID,
		Balance:    r.Balance,
		AsOfDate:   r.AsOfDate,
		CustomerID: r.CustomerID,
		VendorID:   r.VendorID,
	}
}

// PostBalancesRequest represents a request to post all balances staged for a
// cutover date.
type PostBalancesRequest struct {
	AsOfDate time.Time `json:"as_of_date" validate:"required"`
}

// Validate checks the request shape before it reaches the use case.
func (r *PostBalancesRequest) Validate() error {
	return validate.Struct(r)
}
