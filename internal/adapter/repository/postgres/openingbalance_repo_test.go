package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
)

func TestOpeningBalanceUpsertKeepsSurvivingRowID(t *testing.T) {
	pool := newPoolMock(t)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	staged := &domain.OpeningBalance{
		ID:        "01JFRESHULID00000000000000",
		TenantID:  "tenant-1",
		AccountID: "acct-cash",
		AsOfDate:  now,
		Balance:   decimal.NewFromInt(150),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Re-staging the same (tenant, account, as_of_date) hits the partial
	// unique index; the row keeps the id it was first staged under, and the
	// upsert must report that id back so a follow-up read finds the row.
	pool.ExpectQuery(`(?s)INSERT INTO opening_balances.*RETURNING id`).
		WithArgs(staged.ID, staged.TenantID, staged.AccountID, pgxmock.AnyArg(),
			pgxmock.AnyArg(), staged.CustomerID, staged.VendorID,
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("01JFIRSTULID00000000000000"))

	repo := newOpeningBalanceRepositoryWithPool(pool)
	if err := repo.Upsert(context.Background(), staged); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if staged.ID != "01JFIRSTULID00000000000000" {
		t.Fatalf("expected the surviving row id, got %s", staged.ID)
	}

	expectationsMet(t, pool)
}
