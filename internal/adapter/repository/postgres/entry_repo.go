package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

const entryColumns = `id, tenant_id, entry_number, entry_date, description,
	type, status, is_reversed, reversal_entry_id, created_by, created_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool poolQuerier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepositoryWithPool(pool)
}

func newEntryRepositoryWithPool(pool poolQuerier) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts an entry and all its lines inside the posting transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID,
		entry.TenantID,
		entry.EntryNumber,
		timeToPgTimestamptz(entry.EntryDate),
		entry.Description,
		string(entry.Type),
		string(entry.Status),
		entry.IsReversed,
		entry.ReversalEntryID,
		entry.CreatedBy,
		timeToPgTimestamptz(entry.CreatedAt),
	)
	if err != nil {
		return err
	}

	for i := range entry.Lines {
		line := &entry.Lines[i]
		_, err := pgxTx.Exec(ctx, `
			INSERT INTO journal_lines (id, entry_id, account_id, debit, credit, description)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			line.ID,
			line.EntryID,
			line.AccountID,
			decimalToNumeric(line.Debit),
			decimalToNumeric(line.Credit),
			line.Description,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves an entry with its lines.
func (r *EntryRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE tenant_id = $1 AND id = $2`, tenantID, id)

	entry, err := scanEntry(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, r.pool, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetByIDForUpdate retrieves an entry with a FOR UPDATE lock on its row, so
// concurrent reversals of the same entry serialize.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.JournalEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE`, tenantID, id)

	entry, err := scanEntry(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, pgxTx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// NextEntryNumber increments and returns the tenant's entry counter. Called
// inside the posting transaction so numbers follow commit order.
func (r *EntryRepository) NextEntryNumber(ctx context.Context, tx usecase.Transaction, tenantID string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var number int64
	err := pgxTx.QueryRow(ctx, `
		INSERT INTO entry_number_counters (tenant_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id)
		DO UPDATE SET last_number = entry_number_counters.last_number + 1
		RETURNING last_number`, tenantID).Scan(&number)

	return number, err
}

// MarkReversed flags an entry as reversed and links its mirror entry.
func (r *EntryRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id, reversalEntryID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE journal_entries
		SET is_reversed = TRUE, reversal_entry_id = $2
		WHERE id = $1`, id, reversalEntryID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// List lists entries newest-first with their lines.
func (r *EntryRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE tenant_id = $1
		ORDER BY entry_number DESC
		LIMIT $2 OFFSET $3`, tenantID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if err := r.loadLines(ctx, r.pool, entry); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// AccountActivity returns the account's posted lines in statement order:
// entry date, then entry number, then line id so that two lines of the same
// entry against the same account keep a stable order across page boundaries.
func (r *EntryRepository) AccountActivity(ctx context.Context, tenantID, accountID string, from, to time.Time, limit, offset int) ([]*domain.AccountActivity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.entry_number, e.entry_date, e.type,
		       COALESCE(NULLIF(l.description, ''), e.description),
		       l.debit, l.credit
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.tenant_id = $1
		  AND l.account_id = $2
		  AND e.entry_date >= $3
		  AND e.entry_date < $4
		ORDER BY e.entry_date, e.entry_number, l.id
		LIMIT $5 OFFSET $6`,
		tenantID, accountID, timeToPgTimestamptz(from), timeToPgTimestamptz(to),
		int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []*domain.AccountActivity
	for rows.Next() {
		var (
			row       domain.AccountActivity
			entryType string
			entryDate pgtype.Timestamptz
			debit     pgtype.Numeric
			credit    pgtype.Numeric
		)
		if err := rows.Scan(&row.EntryID, &row.EntryNumber, &entryDate,
			&entryType, &row.Description, &debit, &credit); err != nil {
			return nil, err
		}

		row.EntryDate = entryDate.Time
		row.EntryType = domain.EntryType(entryType)
		row.Debit = numericToDecimal(debit)
		row.Credit = numericToDecimal(credit)
		activity = append(activity, &row)
	}

	return activity, rows.Err()
}

// AccountHasLines reports whether any posted line references the account.
func (r *EntryRepository) AccountHasLines(ctx context.Context, tenantID, accountID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM journal_lines l
			JOIN journal_entries e ON e.id = l.entry_id
			WHERE e.tenant_id = $1 AND l.account_id = $2
		)`, tenantID, accountID).Scan(&exists)

	return exists, err
}

// SummarizeRange aggregates revenue and expense movement over [from, to).
// Revenue moves on the credit side, expenses on the debit side; the opposite
// side subtracts so reversals cancel out.
func (r *EntryRepository) SummarizeRange(ctx context.Context, tenantID string, from, to time.Time) (*domain.PeriodSummary, error) {
	var (
		revenue    pgtype.Numeric
		expenses   pgtype.Numeric
		entryCount int64
	)

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN a.type = 'REVENUE' THEN l.credit - l.debit ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN a.type = 'EXPENSE' THEN l.debit - l.credit ELSE 0 END), 0),
			COUNT(DISTINCT e.id)
		FROM journal_entries e
		JOIN journal_lines l ON l.entry_id = e.id
		JOIN accounts a ON a.id = l.account_id
		WHERE e.tenant_id = $1
		  AND e.entry_date >= $2
		  AND e.entry_date < $3`,
		tenantID, timeToPgTimestamptz(from), timeToPgTimestamptz(to),
	).Scan(&revenue, &expenses, &entryCount)
	if err != nil {
		return nil, err
	}

	return &domain.PeriodSummary{
		TenantID:          tenantID,
		TotalRevenue:      numericToDecimal(revenue),
		TotalExpenses:     numericToDecimal(expenses),
		JournalEntryCount: entryCount,
	}, nil
}

// CheckConsistency sums both columns across the whole tenant ledger.
func (r *EntryRepository) CheckConsistency(ctx context.Context, tenantID string) (decimal.Decimal, decimal.Decimal, error) {
	var debits, credits pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.tenant_id = $1`, tenantID).Scan(&debits, &credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debits), numericToDecimal(credits), nil
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *EntryRepository) loadLines(ctx context.Context, q pgxQuerier, entry *domain.JournalEntry) error {
	rows, err := q.Query(ctx, `
		SELECT id, entry_id, account_id, debit, credit, description
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY id`, entry.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line   domain.JournalLine
			debit  pgtype.Numeric
			credit pgtype.Numeric
		)
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID,
			&debit, &credit, &line.Description); err != nil {
			return err
		}

		line.Debit = numericToDecimal(debit)
		line.Credit = numericToDecimal(credit)
		entry.Lines = append(entry.Lines, line)
	}

	return rows.Err()
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var (
		e         domain.JournalEntry
		entryType string
		status    string
		entryDate pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&e.ID, &e.TenantID, &e.EntryNumber, &entryDate, &e.Description,
		&entryType, &status, &e.IsReversed, &e.ReversalEntryID,
		&e.CreatedBy, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	e.Type = domain.EntryType(entryType)
	e.Status = domain.EntryStatus(status)
	e.EntryDate = entryDate.Time
	e.CreatedAt = createdAt.Time

	return &e, nil
}
