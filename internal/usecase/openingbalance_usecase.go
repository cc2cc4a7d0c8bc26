package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/infrastructure/metrics"
)

// EntryPoster is the slice of the ledger the importer needs: staged
// balances become ordinary journal entries, so period-lock and balance
// rules apply to them identically.
type EntryPoster interface {
	CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.JournalEntry, error)
}

// OpeningBalanceUseCase stages cutover balances and posts them as
// two-line OPENING_BALANCE entries against the tenant's offset account.
type OpeningBalanceUseCase struct {
	txManager   TransactionManager
	balanceRepo OpeningBalanceRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	poster      EntryPoster
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewOpeningBalanceUseCase creates a new OpeningBalanceUseCase.
func NewOpeningBalanceUseCase(
	txManager TransactionManager,
	balanceRepo OpeningBalanceRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	poster EntryPoster,
	idGen IDGenerator,
	m *metrics.Metrics,
) *OpeningBalanceUseCase {
	return &OpeningBalanceUseCase{
		txManager:   txManager,
		balanceRepo: balanceRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		poster:      poster,
		idGen:       idGen,
		metrics:     m,
	}
}

// StageBalanceInput represents input for staging an opening balance.
type StageBalanceInput struct {
	TenantID  string
	AccountID string
	// Balance is signed in the account's normal-balance direction.
	Balance  decimal.Decimal
	AsOfDate time.Time
	// Optional subsidiary-ledger tags.
	CustomerID *string
	VendorID   *string
}

// StageBalance creates or overwrites the unposted balance for
// (account, asOfDate). Staging is idempotent: the last staged value wins.
func (uc *OpeningBalanceUseCase) StageBalance(ctx context.Context, input StageBalanceInput) (*domain.OpeningBalance, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.TenantID, input.AccountID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	balance := &domain.OpeningBalance{
		ID:         uc.idGen.Generate(),
		TenantID:   input.TenantID,
		AccountID:  input.AccountID,
		AsOfDate:   truncateToDay(input.AsOfDate),
		Balance:    input.Balance,
		CustomerID: input.CustomerID,
		VendorID:   input.VendorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.balanceRepo.Upsert(ctx, balance); err != nil {
		return nil, err
	}

	return balance, nil
}

// PostBalancesInput represents input for the batch posting step.
type PostBalancesInput struct {
	TenantID string
	AsOfDate time.Time
	Actor    domain.User
}

// PostBalances turns every unposted balance staged for AsOfDate into a
// journal entry. Each balance posts independently: a failure (for example a
// locked period) is recorded and the batch continues.
func (uc *OpeningBalanceUseCase) PostBalances(ctx context.Context, input PostBalancesInput) (*domain.PostingResult, error) {
	offset, err := uc.accountRepo.GetByCode(ctx, input.TenantID, OpeningBalanceOffsetCode)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrOffsetAccountMissing
		}

		return nil, err
	}

	asOf := truncateToDay(input.AsOfDate)

	staged, err := uc.balanceRepo.ListUnposted(ctx, input.TenantID, asOf)
	if err != nil {
		return nil, err
	}

	result := &domain.PostingResult{}

	for _, balance := range staged {
		entry, err := uc.postOne(ctx, offset, balance, input.Actor)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.PostingFailure{
				OpeningBalanceID: balance.ID,
				AccountID:        balance.AccountID,
				Reason:           err.Error(),
			})

			continue
		}

		if err := uc.markPosted(ctx, balance.ID, entry.ID); err != nil {
			return result, err
		}

		result.Posted++
	}

	uc.recordBatch(ctx, input.TenantID, asOf, result)

	return result, nil
}

// postOne builds the two-line entry for a single staged balance: the staged
// amount in the account's normal-balance direction, offset by the equity
// account on the opposite side. A negative staged balance flips both sides.
func (uc *OpeningBalanceUseCase) postOne(ctx context.Context, offset *domain.Account, balance *domain.OpeningBalance, actor domain.User) (*domain.JournalEntry, error) {
	account, err := uc.accountRepo.GetByID(ctx, balance.TenantID, balance.AccountID)
	if err != nil {
		return nil, err
	}

	amount := balance.Balance
	side := account.NormalBalance
	if amount.IsNegative() {
		amount = amount.Abs()
		side = oppositeSide(side)
	}

	target := EntryLineInput{AccountID: account.ID, Description: "Opening balance"}
	offsetLine := EntryLineInput{AccountID: offset.ID, Description: "Opening balance offset"}

	if side == domain.SideDebit {
		target.Debit = amount
		offsetLine.Credit = amount
	} else {
		target.Credit = amount
		offsetLine.Debit = amount
	}

	return uc.poster.CreateEntry(ctx, CreateEntryInput{
		TenantID:    balance.TenantID,
		EntryDate:   balance.AsOfDate,
		Description: "Opening balance as of " + balance.AsOfDate.Format(time.DateOnly),
		Type:        domain.EntryTypeOpeningBalance,
		Lines:       []EntryLineInput{target, offsetLine},
		Actor:       actor,
	})
}

func (uc *OpeningBalanceUseCase) markPosted(ctx context.Context, balanceID, entryID string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.balanceRepo.MarkPosted(ctx, tx, balanceID, entryID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *OpeningBalanceUseCase) recordBatch(ctx context.Context, tenantID string, asOf time.Time, result *domain.PostingResult) {
	if uc.metrics != nil {
		uc.metrics.OpeningBalancesPosted.Add(float64(result.Posted))
		uc.metrics.OpeningBalancesFailed.Add(float64(result.Failed))
	}

	if result.Posted == 0 && result.Failed == 0 {
		return
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      tenantID,
		AggregateID:   tenantID + ":" + asOf.Format(time.DateOnly),
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeOpeningBalancesPosted,
		Payload: domain.MarshalPayload(domain.OpeningBalancesPostedEvent{
			TenantID: tenantID,
			AsOfDate: asOf.Format(time.DateOnly),
			Posted:   result.Posted,
			Failed:   result.Failed,
		}),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return
	}

	_ = tx.Commit(ctx)
}

// GetBalance retrieves a staged balance by ID.
func (uc *OpeningBalanceUseCase) GetBalance(ctx context.Context, tenantID, id string) (*domain.OpeningBalance, error) {
	return uc.balanceRepo.GetByID(ctx, tenantID, id)
}

// ListUnposted lists balances still staged for a cutover date.
func (uc *OpeningBalanceUseCase) ListUnposted(ctx context.Context, tenantID string, asOfDate time.Time) ([]*domain.OpeningBalance, error) {
	return uc.balanceRepo.ListUnposted(ctx, tenantID, truncateToDay(asOfDate))
}

func oppositeSide(side domain.BalanceSide) domain.BalanceSide {
	if side == domain.SideDebit {
		return domain.SideCredit
	}

	return domain.SideDebit
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
