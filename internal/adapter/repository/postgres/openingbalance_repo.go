package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

const openingBalanceColumns = `id, tenant_id, account_id, as_of_date, balance,
	customer_id, vendor_id, is_posted, posted_at, entry_id, created_at, updated_at`

// OpeningBalanceRepository implements usecase.OpeningBalanceRepository.
type OpeningBalanceRepository struct {
	pool poolQuerier
}

// NewOpeningBalanceRepository creates a new OpeningBalanceRepository.
func NewOpeningBalanceRepository(pool *pgxpool.Pool) *OpeningBalanceRepository {
	return newOpeningBalanceRepositoryWithPool(pool)
}

func newOpeningBalanceRepositoryWithPool(pool poolQuerier) *OpeningBalanceRepository {
	return &OpeningBalanceRepository{pool: pool}
}

// Upsert stages a balance. (tenant, account, as_of_date) is the natural key
// for unposted rows: re-staging overwrites the staged value. On conflict the
// surviving row keeps its original id, so the upsert reports the id back and
// the caller's struct is corrected to point at the row that actually exists.
func (r *OpeningBalanceRepository) Upsert(ctx context.Context, balance *domain.OpeningBalance) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO opening_balances (`+openingBalanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NULL, NULL, $8, $9)
		ON CONFLICT (tenant_id, account_id, as_of_date) WHERE NOT is_posted
		DO UPDATE SET
			balance = EXCLUDED.balance,
			customer_id = EXCLUDED.customer_id,
			vendor_id = EXCLUDED.vendor_id,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		balance.ID,
		balance.TenantID,
		balance.AccountID,
		timeToPgTimestamptz(balance.AsOfDate),
		decimalToNumeric(balance.Balance),
		balance.CustomerID,
		balance.VendorID,
		timeToPgTimestamptz(balance.CreatedAt),
		timeToPgTimestamptz(balance.UpdatedAt),
	).Scan(&balance.ID)
}

// GetByID retrieves a staged balance by ID.
func (r *OpeningBalanceRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.OpeningBalance, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+openingBalanceColumns+`
		FROM opening_balances
		WHERE tenant_id = $1 AND id = $2`, tenantID, id)

	return scanOpeningBalance(row)
}

// ListUnposted lists unposted balances staged for a cutover date.
func (r *OpeningBalanceRepository) ListUnposted(ctx context.Context, tenantID string, asOfDate time.Time) ([]*domain.OpeningBalance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+openingBalanceColumns+`
		FROM opening_balances
		WHERE tenant_id = $1 AND as_of_date = $2 AND NOT is_posted
		ORDER BY account_id`, tenantID, timeToPgTimestamptz(asOfDate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.OpeningBalance
	for rows.Next() {
		b, err := scanOpeningBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// MarkPosted flags a staged balance as posted and links its journal entry.
func (r *OpeningBalanceRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, id, entryID string, postedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE opening_balances
		SET is_posted = TRUE, posted_at = $2, entry_id = $3, updated_at = $2
		WHERE id = $1 AND NOT is_posted`,
		id, timeToPgTimestamptz(postedAt), entryID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrOpeningBalanceNotFound
	}

	return nil
}

func scanOpeningBalance(row pgx.Row) (*domain.OpeningBalance, error) {
	var (
		b         domain.OpeningBalance
		asOfDate  pgtype.Timestamptz
		balance   pgtype.Numeric
		postedAt  pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&b.ID, &b.TenantID, &b.AccountID, &asOfDate, &balance,
		&b.CustomerID, &b.VendorID, &b.IsPosted, &postedAt, &b.EntryID,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOpeningBalanceNotFound
		}

		return nil, err
	}

	b.AsOfDate = asOfDate.Time
	b.Balance = numericToDecimal(balance)
	if postedAt.Valid {
		t := postedAt.Time
		b.PostedAt = &t
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}
