package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

// Get retrieves the period record for (tenant, year, month). Absence means
// the period has never been locked and is reported as ErrPeriodNotFound.
func (r *PeriodRepository) Get(ctx context.Context, tenantID string, year int, month time.Month) (*domain.FinancialPeriod, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, year, month, is_locked, locked_at, locked_by,
		       unlocked_by, unlock_reason, created_at, updated_at
		FROM financial_periods
		WHERE tenant_id = $1 AND year = $2 AND month = $3`,
		tenantID, year, int(month))

	var (
		p         domain.FinancialPeriod
		monthNum  int
		lockedAt  pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&p.ID, &p.TenantID, &p.Year, &monthNum, &p.IsLocked,
		&lockedAt, &p.LockedBy, &p.UnlockedBy, &p.UnlockReason,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}

		return nil, err
	}

	p.Month = time.Month(monthNum)
	if lockedAt.Valid {
		t := lockedAt.Time
		p.LockedAt = &t
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// Create inserts a new period record in the OPEN state.
func (r *PeriodRepository) Create(ctx context.Context, period *domain.FinancialPeriod) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO financial_periods
			(id, tenant_id, year, month, is_locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, year, month) DO NOTHING`,
		period.ID,
		period.TenantID,
		period.Year,
		int(period.Month),
		period.IsLocked,
		timeToPgTimestamptz(period.CreatedAt),
		timeToPgTimestamptz(period.UpdatedAt),
	)

	return err
}

// SetLocked flips the lock state and records the audit trail.
func (r *PeriodRepository) SetLocked(ctx context.Context, tx usecase.Transaction, tenantID string, year int, month time.Month, locked bool, actorID string, reason *string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	var tag pgconn.CommandTag
	var err error
	if locked {
		tag, err = pgxTx.Exec(ctx, `
			UPDATE financial_periods
			SET is_locked = TRUE, locked_at = $4, locked_by = $5, updated_at = $4
			WHERE tenant_id = $1 AND year = $2 AND month = $3`,
			tenantID, year, int(month), timeToPgTimestamptz(at), actorID)
	} else {
		tag, err = pgxTx.Exec(ctx, `
			UPDATE financial_periods
			SET is_locked = FALSE, unlocked_by = $4, unlock_reason = $5, updated_at = $6
			WHERE tenant_id = $1 AND year = $2 AND month = $3`,
			tenantID, year, int(month), actorID, reason, timeToPgTimestamptz(at))
	}
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}

	return nil
}

// SaveSummary upserts the derived rollup for a period.
func (r *PeriodRepository) SaveSummary(ctx context.Context, summary *domain.PeriodSummary) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO period_summaries
			(tenant_id, year, month, total_revenue, total_expenses, net_income,
			 journal_entry_count, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, year, month)
		DO UPDATE SET
			total_revenue = EXCLUDED.total_revenue,
			total_expenses = EXCLUDED.total_expenses,
			net_income = EXCLUDED.net_income,
			journal_entry_count = EXCLUDED.journal_entry_count,
			computed_at = EXCLUDED.computed_at`,
		summary.TenantID,
		summary.Year,
		int(summary.Month),
		decimalToNumeric(summary.TotalRevenue),
		decimalToNumeric(summary.TotalExpenses),
		decimalToNumeric(summary.NetIncome),
		summary.JournalEntryCount,
		timeToPgTimestamptz(summary.ComputedAt),
	)

	return err
}

// GetSummary retrieves the stored rollup for a period.
func (r *PeriodRepository) GetSummary(ctx context.Context, tenantID string, year int, month time.Month) (*domain.PeriodSummary, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT tenant_id, year, month, total_revenue, total_expenses,
		       net_income, journal_entry_count, computed_at
		FROM period_summaries
		WHERE tenant_id = $1 AND year = $2 AND month = $3`,
		tenantID, year, int(month))

	var (
		s          domain.PeriodSummary
		monthNum   int
		revenue    pgtype.Numeric
		expenses   pgtype.Numeric
		netIncome  pgtype.Numeric
		computedAt pgtype.Timestamptz
	)

	err := row.Scan(&s.TenantID, &s.Year, &monthNum, &revenue, &expenses,
		&netIncome, &s.JournalEntryCount, &computedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}

		return nil, err
	}

	s.Month = time.Month(monthNum)
	s.TotalRevenue = numericToDecimal(revenue)
	s.TotalExpenses = numericToDecimal(expenses)
	s.NetIncome = numericToDecimal(netIncome)
	s.ComputedAt = computedAt.Time

	return &s, nil
}
