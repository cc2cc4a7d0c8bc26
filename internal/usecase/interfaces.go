package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
)

// AccountRepository defines data access for the chart of accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, tenantID string, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error
	HasChildren(ctx context.Context, tenantID, id string) (bool, error)
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
	ListAll(ctx context.Context, tenantID string) ([]*domain.Account, error)
}

// EntryRepository defines data access for journal entries and their lines.
type EntryRepository interface {
	// Create persists the entry together with its lines.
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, tenantID, id string) (*domain.JournalEntry, error)
	// NextEntryNumber advances and returns the tenant's sequential counter.
	// It must be called inside the same transaction as Create.
	NextEntryNumber(ctx context.Context, tx Transaction, tenantID string) (int64, error)
	MarkReversed(ctx context.Context, tx Transaction, id, reversalEntryID string) error
	List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.JournalEntry, error)
	// AccountActivity returns posted lines touching the account within
	// [from, to), ordered by entry date then entry number.
	AccountActivity(ctx context.Context, tenantID, accountID string, from, to time.Time, limit, offset int) ([]*domain.AccountActivity, error)
	AccountHasLines(ctx context.Context, tenantID, accountID string) (bool, error)
	// SummarizeRange recomputes revenue/expense totals and the entry count
	// over posted entries dated within [from, to).
	SummarizeRange(ctx context.Context, tenantID string, from, to time.Time) (*domain.PeriodSummary, error)
	// CheckConsistency returns the sum of signed account balance movements
	// and the sum of line debits minus credits across the tenant's ledger.
	CheckConsistency(ctx context.Context, tenantID string) (totalDebits, totalCredits decimal.Decimal, err error)
}

// PeriodRepository defines data access for financial period lock records.
type PeriodRepository interface {
	// Get returns the period record, or domain.ErrPeriodNotFound when no
	// explicit record exists (which callers treat as OPEN).
	Get(ctx context.Context, tenantID string, year int, month time.Month) (*domain.FinancialPeriod, error)
	Create(ctx context.Context, period *domain.FinancialPeriod) error
	SetLocked(ctx context.Context, tx Transaction, tenantID string, year int, month time.Month, locked bool, actorID string, reason *string, at time.Time) error
	SaveSummary(ctx context.Context, summary *domain.PeriodSummary) error
	GetSummary(ctx context.Context, tenantID string, year int, month time.Month) (*domain.PeriodSummary, error)
}

// OpeningBalanceRepository defines data access for staged opening balances.
type OpeningBalanceRepository interface {
	// Upsert stages a balance, overwriting any unposted row with the same
	// (tenant, account, asOfDate).
	Upsert(ctx context.Context, balance *domain.OpeningBalance) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.OpeningBalance, error)
	ListUnposted(ctx context.Context, tenantID string, asOfDate time.Time) ([]*domain.OpeningBalance, error)
	MarkPosted(ctx context.Context, tx Transaction, id, entryID string, postedAt time.Time) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation when storage reports a transient conflict
// (serialization failure, deadlock).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for derived read models.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
