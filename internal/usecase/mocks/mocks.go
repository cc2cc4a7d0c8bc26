package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator returns sequential deterministic IDs.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + itoa(m.counter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// MockRetrier runs the operation once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, op func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, op func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, op)
	}
	return op()
}

// MockAccountRepository is an in-memory AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	CreateTxFunc          func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetByCodeFunc         func(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActiveFunc         func(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error
	HasChildrenFunc       func(ctx context.Context, tenantID, id string) (bool, error)
	DeleteFunc            func(ctx context.Context, tenantID, id string) error
	ListFunc              func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
	ListAllFunc           func(ctx context.Context, tenantID string) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

// Seed installs an account directly into the in-memory store.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok && a.TenantID == tenantID {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, tenantID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.TenantID == tenantID && a.Code == code {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, tenantID, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok && a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.CurrentBalance = balance
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, tenantID, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.TenantID != tenantID {
		return domain.ErrAccountNotFound
	}
	a.IsActive = active
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) HasChildren(ctx context.Context, tenantID, id string) (bool, error) {
	if m.HasChildrenFunc != nil {
		return m.HasChildrenFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.TenantID == tenantID && a.ParentID != nil && *a.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, tenantID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tenantID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, limit, offset)
	}
	return m.ListAll(ctx, tenantID)
}

func (m *MockAccountRepository) ListAll(ctx context.Context, tenantID string) ([]*domain.Account, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, tenantID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

// MockEntryRepository is an in-memory EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry
	counter map[string]int64

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetByIDFunc          func(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.JournalEntry, error)
	NextEntryNumberFunc  func(ctx context.Context, tx usecase.Transaction, tenantID string) (int64, error)
	MarkReversedFunc     func(ctx context.Context, tx usecase.Transaction, id, reversalEntryID string) error
	ListFunc             func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.JournalEntry, error)
	AccountActivityFunc  func(ctx context.Context, tenantID, accountID string, from, to time.Time, limit, offset int) ([]*domain.AccountActivity, error)
	AccountHasLinesFunc  func(ctx context.Context, tenantID, accountID string) (bool, error)
	SummarizeRangeFunc   func(ctx context.Context, tenantID string, from, to time.Time) (*domain.PeriodSummary, error)
	CheckConsistencyFunc func(ctx context.Context, tenantID string) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.JournalEntry),
		counter: make(map[string]int64),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok && e.TenantID == tenantID {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.JournalEntry, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, tenantID, id)
	}
	return m.GetByID(ctx, tenantID, id)
}

func (m *MockEntryRepository) NextEntryNumber(ctx context.Context, tx usecase.Transaction, tenantID string) (int64, error) {
	if m.NextEntryNumberFunc != nil {
		return m.NextEntryNumberFunc(ctx, tx, tenantID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter[tenantID]++
	return m.counter[tenantID], nil
}

func (m *MockEntryRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id, reversalEntryID string) error {
	if m.MarkReversedFunc != nil {
		return m.MarkReversedFunc(ctx, tx, id, reversalEntryID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.IsReversed = true
	e.ReversalEntryID = &reversalEntryID
	return nil
}

func (m *MockEntryRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.JournalEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.JournalEntry
	for _, e := range m.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEntryRepository) AccountActivity(ctx context.Context, tenantID, accountID string, from, to time.Time, limit, offset int) ([]*domain.AccountActivity, error) {
	if m.AccountActivityFunc != nil {
		return m.AccountActivityFunc(ctx, tenantID, accountID, from, to, limit, offset)
	}
	return nil, nil
}

func (m *MockEntryRepository) AccountHasLines(ctx context.Context, tenantID, accountID string) (bool, error) {
	if m.AccountHasLinesFunc != nil {
		return m.AccountHasLinesFunc(ctx, tenantID, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		for i := range e.Lines {
			if e.Lines[i].AccountID == accountID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *MockEntryRepository) SummarizeRange(ctx context.Context, tenantID string, from, to time.Time) (*domain.PeriodSummary, error) {
	if m.SummarizeRangeFunc != nil {
		return m.SummarizeRangeFunc(ctx, tenantID, from, to)
	}
	return &domain.PeriodSummary{TenantID: tenantID}, nil
}

func (m *MockEntryRepository) CheckConsistency(ctx context.Context, tenantID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.CheckConsistencyFunc != nil {
		return m.CheckConsistencyFunc(ctx, tenantID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var debits, credits decimal.Decimal
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		d, c := e.Totals()
		debits = debits.Add(d)
		credits = credits.Add(c)
	}
	return debits, credits, nil
}

// MockPeriodRepository is an in-memory PeriodRepository.
type MockPeriodRepository struct {
	mu        sync.RWMutex
	periods   map[string]*domain.FinancialPeriod
	summaries map[string]*domain.PeriodSummary

	GetFunc         func(ctx context.Context, tenantID string, year int, month time.Month) (*domain.FinancialPeriod, error)
	CreateFunc      func(ctx context.Context, period *domain.FinancialPeriod) error
	SetLockedFunc   func(ctx context.Context, tx usecase.Transaction, tenantID string, year int, month time.Month, locked bool, actorID string, reason *string, at time.Time) error
	SaveSummaryFunc func(ctx context.Context, summary *domain.PeriodSummary) error
	GetSummaryFunc  func(ctx context.Context, tenantID string, year int, month time.Month) (*domain.PeriodSummary, error)
}

func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{
		periods:   make(map[string]*domain.FinancialPeriod),
		summaries: make(map[string]*domain.PeriodSummary),
	}
}

func periodMapKey(tenantID string, year int, month time.Month) string {
	return tenantID + ":" + domain.PeriodKey{Year: year, Month: month}.String()
}

func (m *MockPeriodRepository) Get(ctx context.Context, tenantID string, year int, month time.Month) (*domain.FinancialPeriod, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID, year, month)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.periods[periodMapKey(tenantID, year, month)]; ok {
		return p, nil
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) Create(ctx context.Context, period *domain.FinancialPeriod) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[periodMapKey(period.TenantID, period.Year, period.Month)] = period
	return nil
}

func (m *MockPeriodRepository) SetLocked(ctx context.Context, tx usecase.Transaction, tenantID string, year int, month time.Month, locked bool, actorID string, reason *string, at time.Time) error {
	if m.SetLockedFunc != nil {
		return m.SetLockedFunc(ctx, tx, tenantID, year, month, locked, actorID, reason, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[periodMapKey(tenantID, year, month)]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	p.IsLocked = locked
	if locked {
		p.LockedAt = &at
		p.LockedBy = &actorID
	} else {
		p.UnlockedBy = &actorID
		p.UnlockReason = reason
	}
	p.UpdatedAt = at
	return nil
}

func (m *MockPeriodRepository) SaveSummary(ctx context.Context, summary *domain.PeriodSummary) error {
	if m.SaveSummaryFunc != nil {
		return m.SaveSummaryFunc(ctx, summary)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[periodMapKey(summary.TenantID, summary.Year, summary.Month)] = summary
	return nil
}

func (m *MockPeriodRepository) GetSummary(ctx context.Context, tenantID string, year int, month time.Month) (*domain.PeriodSummary, error) {
	if m.GetSummaryFunc != nil {
		return m.GetSummaryFunc(ctx, tenantID, year, month)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.summaries[periodMapKey(tenantID, year, month)]; ok {
		return s, nil
	}
	return nil, domain.ErrPeriodNotFound
}

// MockOpeningBalanceRepository is an in-memory OpeningBalanceRepository.
type MockOpeningBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.OpeningBalance

	UpsertFunc       func(ctx context.Context, balance *domain.OpeningBalance) error
	GetByIDFunc      func(ctx context.Context, tenantID, id string) (*domain.OpeningBalance, error)
	ListUnpostedFunc func(ctx context.Context, tenantID string, asOfDate time.Time) ([]*domain.OpeningBalance, error)
	MarkPostedFunc   func(ctx context.Context, tx usecase.Transaction, id, entryID string, postedAt time.Time) error
}

func NewMockOpeningBalanceRepository() *MockOpeningBalanceRepository {
	return &MockOpeningBalanceRepository{balances: make(map[string]*domain.OpeningBalance)}
}

func (m *MockOpeningBalanceRepository) Upsert(ctx context.Context, balance *domain.OpeningBalance) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range m.balances {
		if b.TenantID == balance.TenantID && b.AccountID == balance.AccountID &&
			b.AsOfDate.Equal(balance.AsOfDate) && !b.IsPosted {
			balance.ID = b.ID
			m.balances[id] = balance
			return nil
		}
	}
	m.balances[balance.ID] = balance
	return nil
}

func (m *MockOpeningBalanceRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.OpeningBalance, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.balances[id]; ok && b.TenantID == tenantID {
		return b, nil
	}
	return nil, domain.ErrOpeningBalanceNotFound
}

func (m *MockOpeningBalanceRepository) ListUnposted(ctx context.Context, tenantID string, asOfDate time.Time) ([]*domain.OpeningBalance, error) {
	if m.ListUnpostedFunc != nil {
		return m.ListUnpostedFunc(ctx, tenantID, asOfDate)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OpeningBalance
	for _, b := range m.balances {
		if b.TenantID == tenantID && !b.IsPosted && b.AsOfDate.Equal(asOfDate) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockOpeningBalanceRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, id, entryID string, postedAt time.Time) error {
	if m.MarkPostedFunc != nil {
		return m.MarkPostedFunc(ctx, tx, id, entryID, postedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		return domain.ErrOpeningBalanceNotFound
	}
	b.IsPosted = true
	b.PostedAt = &postedAt
	b.EntryID = &entryID
	return nil
}

// MockOutboxRepository collects outbox events in memory.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

// MockPeriodGuard is a PeriodGuard with a programmable answer.
type MockPeriodGuard struct {
	GuardPostingFunc func(ctx context.Context, tenantID string, entryDate time.Time, actor domain.User) error
}

func NewMockPeriodGuard() *MockPeriodGuard {
	return &MockPeriodGuard{}
}

func (m *MockPeriodGuard) GuardPosting(ctx context.Context, tenantID string, entryDate time.Time, actor domain.User) error {
	if m.GuardPostingFunc != nil {
		return m.GuardPostingFunc(ctx, tenantID, entryDate, actor)
	}
	return nil
}
