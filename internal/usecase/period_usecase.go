package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/infrastructure/metrics"
)

// LockOverridePolicy decides whether an actor may post into a locked period
// without unlocking it. Injected so the policy can change without touching
// posting logic.
type LockOverridePolicy func(actor domain.User) bool

// DefaultLockOverridePolicy grants the override to the owner role only.
func DefaultLockOverridePolicy(actor domain.User) bool {
	return actor.Role.CanOverrideLock()
}

// PeriodUseCase is the financial period guard: it owns lock state per
// (tenant, year, month) and gates postings dated within locked months.
type PeriodUseCase struct {
	txManager   TransactionManager
	periodRepo  PeriodRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	cache       Cache
	idGen       IDGenerator
	canOverride LockOverridePolicy
	metrics     *metrics.Metrics
}

// NewPeriodUseCase creates a new PeriodUseCase. A nil override policy falls
// back to DefaultLockOverridePolicy.
func NewPeriodUseCase(
	txManager TransactionManager,
	periodRepo PeriodRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	canOverride LockOverridePolicy,
	m *metrics.Metrics,
) *PeriodUseCase {
	if canOverride == nil {
		canOverride = DefaultLockOverridePolicy
	}

	return &PeriodUseCase{
		txManager:   txManager,
		periodRepo:  periodRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		idGen:       idGen,
		canOverride: canOverride,
		metrics:     m,
	}
}

// IsLocked returns the current lock state. A period with no record is OPEN.
func (uc *PeriodUseCase) IsLocked(ctx context.Context, tenantID string, year int, month time.Month) (bool, error) {
	period, err := uc.periodRepo.Get(ctx, tenantID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			return false, nil
		}

		return false, err
	}

	return period.IsLocked, nil
}

// GetPeriod returns the persisted period record, or ErrPeriodNotFound when
// the period has never been locked.
func (uc *PeriodUseCase) GetPeriod(ctx context.Context, tenantID string, year int, month time.Month) (*domain.FinancialPeriod, error) {
	return uc.periodRepo.Get(ctx, tenantID, year, month)
}

// Lock transitions a period OPEN -> LOCKED.
func (uc *PeriodUseCase) Lock(ctx context.Context, tenantID string, year int, month time.Month, actor domain.User) error {
	now := time.Now().UTC()

	period, err := uc.periodRepo.Get(ctx, tenantID, year, month)
	if err != nil {
		if !errors.Is(err, domain.ErrPeriodNotFound) {
			return err
		}

		period = &domain.FinancialPeriod{
			ID:        uc.idGen.Generate(),
			TenantID:  tenantID,
			Year:      year,
			Month:     month,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.periodRepo.Create(ctx, period); err != nil {
			return err
		}
	}

	if period.IsLocked {
		return domain.ErrAlreadyLocked
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	actorID := actor.ID.String()
	if err := uc.periodRepo.SetLocked(ctx, tx, tenantID, year, month, true, actorID, nil, now); err != nil {
		return err
	}

	if err := uc.writeLockEvent(ctx, tx, tenantID, year, month, true, actorID, "", now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsLocked.Inc()
	}

	return nil
}

// Unlock transitions a period LOCKED -> OPEN. Only the owner role may
// unlock, and a reason is required for the audit trail.
func (uc *PeriodUseCase) Unlock(ctx context.Context, tenantID string, year int, month time.Month, actor domain.User, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ErrUnlockReasonRequired
	}

	if !uc.canOverride(actor) {
		return domain.ErrInsufficientPrivilege
	}

	period, err := uc.periodRepo.Get(ctx, tenantID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			return domain.ErrNotLocked
		}

		return err
	}

	if !period.IsLocked {
		return domain.ErrNotLocked
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	actorID := actor.ID.String()
	if err := uc.periodRepo.SetLocked(ctx, tx, tenantID, year, month, false, actorID, &reason, now); err != nil {
		return err
	}

	if err := uc.writeLockEvent(ctx, tx, tenantID, year, month, false, actorID, reason, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsUnlocked.Inc()
	}

	return nil
}

// GuardPosting rejects a posting dated inside a locked period unless the
// actor holds the lock override. An override does not open the period: it
// stays locked after the posting.
func (uc *PeriodUseCase) GuardPosting(ctx context.Context, tenantID string, entryDate time.Time, actor domain.User) error {
	key := domain.PeriodKeyFor(entryDate)

	locked, err := uc.IsLocked(ctx, tenantID, key.Year, key.Month)
	if err != nil {
		return err
	}

	if !locked {
		return nil
	}

	if !uc.canOverride(actor) {
		return fmt.Errorf("%w: %s", domain.ErrPeriodLocked, key)
	}

	if uc.metrics != nil {
		uc.metrics.LockOverrides.Inc()
	}

	return nil
}

// RecomputeSummary rebuilds the period's revenue/expense rollup from posted
// entries. It is a pure recomputation: calling it twice without new postings
// yields identical results.
func (uc *PeriodUseCase) RecomputeSummary(ctx context.Context, tenantID string, year int, month time.Month) (*domain.PeriodSummary, error) {
	key := domain.PeriodKey{Year: year, Month: month}
	from, to := key.Bounds()

	summary, err := uc.entryRepo.SummarizeRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	summary.TenantID = tenantID
	summary.Year = year
	summary.Month = month
	summary.NetIncome = summary.TotalRevenue.Sub(summary.TotalExpenses)
	summary.ComputedAt = time.Now().UTC()

	if err := uc.periodRepo.SaveSummary(ctx, summary); err != nil {
		return nil, err
	}

	uc.cacheSummary(ctx, summary)

	return summary, nil
}

// GetSummary returns the cached rollup, recomputing when no cache exists.
func (uc *PeriodUseCase) GetSummary(ctx context.Context, tenantID string, year int, month time.Month) (*domain.PeriodSummary, error) {
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, summaryCacheKey(tenantID, year, month)); err == nil && raw != "" {
			var summary domain.PeriodSummary
			if err := json.Unmarshal([]byte(raw), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary, err := uc.periodRepo.GetSummary(ctx, tenantID, year, month)
	if err == nil {
		uc.cacheSummary(ctx, summary)
		return summary, nil
	}

	if !errors.Is(err, domain.ErrPeriodNotFound) {
		return nil, err
	}

	return uc.RecomputeSummary(ctx, tenantID, year, month)
}

func (uc *PeriodUseCase) cacheSummary(ctx context.Context, summary *domain.PeriodSummary) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}

	_ = uc.cache.Set(ctx, summaryCacheKey(summary.TenantID, summary.Year, summary.Month), string(raw), SummaryCacheTTL)
}

func (uc *PeriodUseCase) writeLockEvent(ctx context.Context, tx Transaction, tenantID string, year int, month time.Month, locked bool, actorID, reason string, now time.Time) error {
	eventType := domain.EventTypePeriodLocked
	if !locked {
		eventType = domain.EventTypePeriodUnlocked
	}

	key := domain.PeriodKey{Year: year, Month: month}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      tenantID,
		AggregateID:   key.String(),
		AggregateType: domain.AggregateTypePeriod,
		EventType:     eventType,
		Payload: domain.MarshalPayload(domain.PeriodLockedEvent{
			TenantID: tenantID,
			Year:     year,
			Month:    int(month),
			Locked:   locked,
			ActorID:  actorID,
			Reason:   reason,
		}),
		CreatedAt: now,
	})
}

func summaryCacheKey(tenantID string, year int, month time.Month) string {
	return fmt.Sprintf("period-summary:%s:%04d-%02d", tenantID, year, int(month))
}
