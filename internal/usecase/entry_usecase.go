package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/infrastructure/metrics"
)

// PeriodGuard gates postings by the entry date's financial period.
type PeriodGuard interface {
	GuardPosting(ctx context.Context, tenantID string, entryDate time.Time, actor domain.User) error
}

// EntryUseCase validates and atomically posts balanced journal entries, and
// provides reversal. It is the only writer of account balances.
type EntryUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	guard       PeriodGuard
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	guard PeriodGuard,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		guard:       guard,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     m,
	}
}

// EntryLineInput is one debit or credit line of a posting request.
type EntryLineInput struct {
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// CreateEntryInput represents input for posting a journal entry.
type CreateEntryInput struct {
	TenantID    string
	EntryDate   time.Time
	Description string
	Type        domain.EntryType
	Lines       []EntryLineInput
	Actor       domain.User
}

// CreateEntry validates the entry (line shape, balance within tolerance,
// period lock) and posts it atomically: entry row, lines, the tenant's next
// entry number, and every affected account balance commit together or not
// at all.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.JournalEntry, error) {
	entry := &domain.JournalEntry{
		TenantID:    input.TenantID,
		EntryDate:   input.EntryDate.UTC(),
		Description: input.Description,
		Type:        input.Type,
		Status:      domain.EntryStatusPosted,
		CreatedBy:   input.Actor.ID.String(),
	}
	for _, l := range input.Lines {
		entry.Lines = append(entry.Lines, domain.JournalLine{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}

	if err := entry.Validate(); err != nil {
		if uc.metrics != nil {
			uc.metrics.EntriesRejected.WithLabelValues(rejectionLabel(err)).Inc()
		}

		return nil, err
	}

	if err := uc.guard.GuardPosting(ctx, input.TenantID, entry.EntryDate, input.Actor); err != nil {
		if uc.metrics != nil {
			uc.metrics.EntriesRejected.WithLabelValues("period_locked").Inc()
		}

		return nil, err
	}

	err := uc.retry(ctx, func() error {
		return uc.post(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesPosted.WithLabelValues(string(entry.Type)).Inc()
	}

	return entry, nil
}

// post runs the atomic portion of entry creation. Accounts are locked in
// sorted ID order to avoid lock-order deadlocks between concurrent postings.
func (uc *EntryUseCase) post(ctx context.Context, entry *domain.JournalEntry) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	accountIDs := collectAccountIDs(entry.Lines)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, entry.TenantID, accountIDs)
	if err != nil {
		return err
	}

	if len(accounts) != len(accountIDs) {
		return domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		if !a.IsActive {
			return fmt.Errorf("%w: %s", domain.ErrAccountInactive, a.Code)
		}

		accountMap[a.ID] = a
	}

	number, err := uc.entryRepo.NextEntryNumber(txCtx, tx, entry.TenantID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	entry.ID = uc.idGen.Generate()
	entry.EntryNumber = number
	entry.CreatedAt = now
	for i := range entry.Lines {
		entry.Lines[i].ID = uc.idGen.Generate()
		entry.Lines[i].EntryID = entry.ID
	}

	if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
		return err
	}

	for i := range entry.Lines {
		line := &entry.Lines[i]
		account := accountMap[line.AccountID]

		newBalance := account.ApplyPosting(line.Amount(), line.Side())
		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, now); err != nil {
			return err
		}

		account.CurrentBalance = newBalance
	}

	totalDebits, _ := entry.Totals()
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      entry.TenantID,
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryPosted,
		Payload: domain.MarshalPayload(domain.EntryPostedEvent{
			EntryID:     entry.ID,
			TenantID:    entry.TenantID,
			EntryNumber: entry.EntryNumber,
			EntryDate:   entry.EntryDate.Format(time.DateOnly),
			EntryType:   string(entry.Type),
			TotalDebits: totalDebits.String(),
			LineCount:   len(entry.Lines),
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// ReverseEntryInput represents input for reversing a posted entry.
type ReverseEntryInput struct {
	TenantID string
	EntryID  string
	Actor    domain.User
}

// ReverseEntry posts a mirror entry with every line's debit and credit
// swapped, dated now, and flags the original as reversed. The original is
// never deleted.
func (uc *EntryUseCase) ReverseEntry(ctx context.Context, input ReverseEntryInput) (*domain.JournalEntry, error) {
	original, err := uc.entryRepo.GetByID(ctx, input.TenantID, input.EntryID)
	if err != nil {
		return nil, err
	}

	if original.IsReversed {
		return nil, domain.ErrAlreadyReversed
	}

	reversalDate := time.Now().UTC()
	if err := uc.guard.GuardPosting(ctx, input.TenantID, reversalDate, input.Actor); err != nil {
		return nil, err
	}

	reversal := &domain.JournalEntry{
		TenantID:    input.TenantID,
		EntryDate:   reversalDate,
		Description: fmt.Sprintf("Reversal of entry #%d", original.EntryNumber),
		Type:        domain.EntryTypeReversal,
		Status:      domain.EntryStatusPosted,
		Lines:       original.ReversalLines(),
		CreatedBy:   input.Actor.ID.String(),
	}

	err = uc.retry(ctx, func() error {
		return uc.postReversal(ctx, original.ID, reversal)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesReversed.Inc()
	}

	return reversal, nil
}

func (uc *EntryUseCase) postReversal(ctx context.Context, originalID string, reversal *domain.JournalEntry) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Re-check under lock: two racing reversals must not both post.
	original, err := uc.entryRepo.GetByIDForUpdate(txCtx, tx, reversal.TenantID, originalID)
	if err != nil {
		return err
	}

	if original.IsReversed {
		return domain.ErrAlreadyReversed
	}

	accountIDs := collectAccountIDs(reversal.Lines)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, reversal.TenantID, accountIDs)
	if err != nil {
		return err
	}

	if len(accounts) != len(accountIDs) {
		return domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	number, err := uc.entryRepo.NextEntryNumber(txCtx, tx, reversal.TenantID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	reversal.ID = uc.idGen.Generate()
	reversal.EntryNumber = number
	reversal.CreatedAt = now
	for i := range reversal.Lines {
		reversal.Lines[i].ID = uc.idGen.Generate()
		reversal.Lines[i].EntryID = reversal.ID
	}

	if err := uc.entryRepo.Create(txCtx, tx, reversal); err != nil {
		return err
	}

	for i := range reversal.Lines {
		line := &reversal.Lines[i]
		account := accountMap[line.AccountID]

		newBalance := account.ApplyPosting(line.Amount(), line.Side())
		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, now); err != nil {
			return err
		}

		account.CurrentBalance = newBalance
	}

	if err := uc.entryRepo.MarkReversed(txCtx, tx, originalID, reversal.ID); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      reversal.TenantID,
		AggregateID:   reversal.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryReversed,
		Payload: domain.MarshalPayload(domain.EntryReversedEvent{
			OriginalEntryID: originalID,
			ReversalEntryID: reversal.ID,
			TenantID:        reversal.TenantID,
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// GetEntry retrieves an entry with its lines.
func (uc *EntryUseCase) GetEntry(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	return uc.entryRepo.GetByID(ctx, tenantID, id)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	TenantID string
	Limit    int
	Offset   int
}

// ListEntries lists a tenant's entries, newest first.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.JournalEntry, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.entryRepo.List(ctx, input.TenantID, input.Limit, input.Offset)
}

// AccountActivityInput represents input for an account statement query.
type AccountActivityInput struct {
	TenantID  string
	AccountID string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// GetAccountActivity returns posted lines touching the account within
// [From, To), ordered by entry date then entry number. Pagination makes the
// sequence restartable: re-reading any page yields the same rows.
func (uc *EntryUseCase) GetAccountActivity(ctx context.Context, input AccountActivityInput) ([]*domain.AccountActivity, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.TenantID, input.AccountID); err != nil {
		return nil, err
	}

	if input.Limit <= 0 {
		input.Limit = 100
	}

	if input.Limit > 1000 {
		input.Limit = 1000
	}

	if input.To.IsZero() {
		input.To = time.Now().UTC().AddDate(0, 0, 1)
	}

	return uc.entryRepo.AccountActivity(ctx, input.TenantID, input.AccountID, input.From, input.To, input.Limit, input.Offset)
}

// CheckConsistency verifies the tenant's ledger is balanced: total debits
// across all posted lines must equal total credits.
func (uc *EntryUseCase) CheckConsistency(ctx context.Context, tenantID string) (bool, error) {
	totalDebits, totalCredits, err := uc.entryRepo.CheckConsistency(ctx, tenantID)
	if err != nil {
		return false, err
	}

	if !totalDebits.Equal(totalCredits) {
		return false, nil
	}

	return true, nil
}

func (uc *EntryUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

func collectAccountIDs(lines []domain.JournalLine) []string {
	seen := make(map[string]bool, len(lines))

	var ids []string
	for i := range lines {
		if !seen[lines[i].AccountID] {
			seen[lines[i].AccountID] = true
			ids = append(ids, lines[i].AccountID)
		}
	}

	sort.Strings(ids)

	return ids
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnbalancedEntry):
		return "unbalanced"
	case errors.Is(err, domain.ErrTooFewLines):
		return "too_few_lines"
	case errors.Is(err, domain.ErrInvalidLine),
		errors.Is(err, domain.ErrNegativeLineAmount),
		errors.Is(err, domain.ErrLineAccountRequired):
		return "invalid_line"
	default:
		return "invalid"
	}
}
