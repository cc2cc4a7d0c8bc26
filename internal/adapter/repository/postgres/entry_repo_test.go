package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tallybooks/internal/domain"
)

func TestAccountActivityOrdersByDateNumberThenLine(t *testing.T) {
	pool := newPoolMock(t)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	// Two lines of the same entry hit the same account; the line id is the
	// final sort key so pagination cannot reorder them between pages.
	pool.ExpectQuery(`(?s)ORDER BY e\.entry_date, e\.entry_number, l\.id`).
		WithArgs("tenant-1", "acct-rent", pgxmock.AnyArg(), pgxmock.AnyArg(), int32(10), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "entry_number", "entry_date", "type", "description", "debit", "credit",
		}).
			AddRow("entry-7", int64(7), from, "MANUAL", "rent split a", "100.00", "0").
			AddRow("entry-7", int64(7), from, "MANUAL", "rent split b", "50.00", "0"))

	repo := newEntryRepositoryWithPool(pool)
	activity, err := repo.AccountActivity(context.Background(), "tenant-1", "acct-rent", from, to, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(activity) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(activity))
	}
	if activity[0].Description != "rent split a" || activity[1].Description != "rent split b" {
		t.Fatalf("rows out of order: %q, %q", activity[0].Description, activity[1].Description)
	}
	if activity[0].EntryType != domain.EntryTypeManual {
		t.Fatalf("unexpected entry type %s", activity[0].EntryType)
	}
	if !activity[0].Debit.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected amount: %s", activity[0].Debit)
	}

	expectationsMet(t, pool)
}
