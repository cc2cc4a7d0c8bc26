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

const accountColumns = `id, tenant_id, code, name, type, category, parent_id,
	normal_balance, opening_balance, current_balance, is_active, version,
	created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const insertAccountSQL = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, insertAccountSQL, insertAccountArgs(account)...)

	return err
}

// CreateTx creates a new account inside an existing transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, insertAccountSQL, insertAccountArgs(account)...)

	return err
}

func insertAccountArgs(account *domain.Account) []any {
	return []any{
		account.ID,
		account.TenantID,
		account.Code,
		account.Name,
		string(account.Type),
		account.Category,
		account.ParentID,
		string(account.NormalBalance),
		decimalToNumeric(account.OpeningBalance),
		decimalToNumeric(account.CurrentBalance),
		account.IsActive,
		account.Version,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	}
}

// GetByID retrieves an account by ID within a tenant.
func (r *AccountRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE tenant_id = $1 AND id = $2`, tenantID, id)

	return scanAccount(row)
}

// GetByCode retrieves an account by its code within a tenant.
func (r *AccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE tenant_id = $1 AND code = $2`, tenantID, code)

	return scanAccount(row)
}

// GetByIDsForUpdate retrieves multiple accounts with FOR UPDATE locks.
// Callers pass IDs pre-sorted so concurrent postings lock in the same order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string) ([]*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE tenant_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// UpdateBalance updates the running balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE accounts
		SET current_balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1`, id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))

	return err
}

// SetActive toggles an account's active flag.
func (r *AccountRepository) SetActive(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET is_active = $3, version = version + 1, updated_at = $4
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, active, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// HasChildren reports whether any account names this one as parent.
func (r *AccountRepository) HasChildren(ctx context.Context, tenantID, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts WHERE tenant_id = $1 AND parent_id = $2
		)`, tenantID, id).Scan(&exists)

	return exists, err
}

// Delete removes an account.
func (r *AccountRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM accounts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts with pagination, ordered by code.
func (r *AccountRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE tenant_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3`, tenantID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// ListAll lists every account of a tenant, ordered by code.
func (r *AccountRepository) ListAll(ctx context.Context, tenantID string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE tenant_id = $1
		ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a             domain.Account
		accountType   string
		normalBalance string
		opening       pgtype.Numeric
		current       pgtype.Numeric
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID, &a.TenantID, &a.Code, &a.Name, &accountType, &a.Category,
		&a.ParentID, &normalBalance, &opening, &current, &a.IsActive,
		&a.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	a.Type = domain.AccountType(accountType)
	a.NormalBalance = domain.BalanceSide(normalBalance)
	a.OpeningBalance = numericToDecimal(opening)
	a.CurrentBalance = numericToDecimal(current)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}
