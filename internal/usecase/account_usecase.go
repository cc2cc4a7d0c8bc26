package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/infrastructure/metrics"
)

// AccountUseCase maintains the chart of accounts. Balance mutation is not
// exposed here: currentBalance changes only through posted journal entries.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	TenantID       string
	Code           string
	Name           string
	Type           domain.AccountType
	Category       string
	ParentID       *string
	NormalBalance  domain.BalanceSide
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new account with currentBalance seeded from the
// opening balance. The code must be unique within the tenant and the parent,
// when given, must exist and carry the same account type.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidAccountType
	}

	side := input.NormalBalance
	if side == "" {
		side = domain.NormalBalanceFor(input.Type)
	}

	if !side.IsValid() {
		return nil, domain.ErrInvalidBalanceSide
	}

	_, err := uc.accountRepo.GetByCode(ctx, input.TenantID, input.Code)
	if err == nil {
		return nil, domain.ErrDuplicateCode
	}

	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := uc.accountRepo.GetByID(ctx, input.TenantID, *input.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return nil, domain.ErrInvalidParent
			}

			return nil, err
		}

		if parent.Type != input.Type {
			return nil, domain.ErrInvalidParent
		}
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		TenantID:       input.TenantID,
		Code:           input.Code,
		Name:           input.Name,
		Type:           input.Type,
		Category:       input.Category,
		ParentID:       input.ParentID,
		NormalBalance:  side,
		OpeningBalance: input.OpeningBalance,
		CurrentBalance: input.OpeningBalance,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      input.TenantID,
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: domain.MarshalPayload(domain.AccountCreatedEvent{
			AccountID: account.ID,
			TenantID:  account.TenantID,
			Code:      account.Code,
			Name:      account.Name,
			Type:      string(account.Type),
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, tenantID, id)
}

// GetAccountByCode retrieves an account by chart code.
func (uc *AccountUseCase) GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	return uc.accountRepo.GetByCode(ctx, tenantID, code)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	TenantID string
	Limit    int
	Offset   int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.accountRepo.List(ctx, input.TenantID, input.Limit, input.Offset)
}

// GetHierarchy returns the tenant's full chart arranged as parent/child
// trees.
func (uc *AccountUseCase) GetHierarchy(ctx context.Context, tenantID string) ([]*domain.AccountNode, error) {
	accounts, err := uc.accountRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return domain.BuildHierarchy(accounts), nil
}

// SetAccountActive soft-enables or soft-disables an account without
// touching its history.
func (uc *AccountUseCase) SetAccountActive(ctx context.Context, tenantID, id string, active bool) error {
	if _, err := uc.accountRepo.GetByID(ctx, tenantID, id); err != nil {
		return err
	}

	return uc.accountRepo.SetActive(ctx, tenantID, id, active, time.Now().UTC())
}

// DeleteAccount removes an account that has neither children nor postings.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, tenantID, id string) error {
	if _, err := uc.accountRepo.GetByID(ctx, tenantID, id); err != nil {
		return err
	}

	hasChildren, err := uc.accountRepo.HasChildren(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if hasChildren {
		return domain.ErrAccountHasChildren
	}

	hasLines, err := uc.entryRepo.AccountHasLines(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if hasLines {
		return domain.ErrAccountHasActivity
	}

	return uc.accountRepo.Delete(ctx, tenantID, id)
}

// standardChart is the account set seeded for a new tenant. Code 3999 is the
// opening-balance offset account the importer posts against.
var standardChart = []CreateAccountInput{
	{Code: "1010", Name: "Cash", Type: domain.AccountTypeAsset, Category: "CASH"},
	{Code: "1020", Name: "Bank", Type: domain.AccountTypeAsset, Category: "BANK"},
	{Code: "1200", Name: "Accounts Receivable", Type: domain.AccountTypeAsset, Category: "AR"},
	{Code: "1300", Name: "Inventory", Type: domain.AccountTypeAsset, Category: "INVENTORY"},
	{Code: "1500", Name: "Fixed Assets", Type: domain.AccountTypeAsset, Category: "FIXED_ASSET"},
	{Code: "2100", Name: "Accounts Payable", Type: domain.AccountTypeLiability, Category: "AP"},
	{Code: "2300", Name: "Sales Tax Payable", Type: domain.AccountTypeLiability, Category: "TAX"},
	{Code: "3000", Name: "Owner's Equity", Type: domain.AccountTypeEquity, Category: "EQUITY"},
	{Code: "3900", Name: "Retained Earnings", Type: domain.AccountTypeEquity, Category: "EQUITY"},
	{Code: OpeningBalanceOffsetCode, Name: "Opening Balance Equity", Type: domain.AccountTypeEquity, Category: "EQUITY"},
	{Code: "4010", Name: "Sales Revenue", Type: domain.AccountTypeRevenue, Category: "SALES"},
	{Code: "4090", Name: "Other Income", Type: domain.AccountTypeRevenue, Category: "OTHER"},
	{Code: "5010", Name: "Cost of Goods Sold", Type: domain.AccountTypeExpense, Category: "COGS"},
	{Code: "6010", Name: "Payroll Expense", Type: domain.AccountTypeExpense, Category: "PAYROLL"},
	{Code: "6100", Name: "Rent Expense", Type: domain.AccountTypeExpense, Category: "OPERATING"},
	{Code: "6900", Name: "Other Expense", Type: domain.AccountTypeExpense, Category: "OTHER"},
}

// SeedStandardChart creates the conventional small-business account set for
// a tenant. Accounts whose code already exists are left untouched, so the
// call is safe to repeat.
func (uc *AccountUseCase) SeedStandardChart(ctx context.Context, tenantID string) (created int, err error) {
	for _, tmpl := range standardChart {
		input := tmpl
		input.TenantID = tenantID

		_, err := uc.CreateAccount(ctx, input)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateCode) {
				continue
			}

			return created, err
		}

		created++
	}

	return created, nil
}
