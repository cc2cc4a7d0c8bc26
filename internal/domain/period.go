package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FinancialPeriod is a tenant's lock state for one calendar month. A period
// with no persisted record is OPEN.
type FinancialPeriod struct {
	ID       string
	TenantID string
	Year     int
	Month    time.Month
	IsLocked bool
	LockedAt *time.Time
	LockedBy *string
	// Unlock audit trail: who reopened the period last and why.
	UnlockedBy   *string
	UnlockReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PeriodKey identifies a period within a tenant.
type PeriodKey struct {
	Year  int
	Month time.Month
}

// PeriodKeyFor derives the period key from an entry date.
func PeriodKeyFor(entryDate time.Time) PeriodKey {
	return PeriodKey{Year: entryDate.Year(), Month: entryDate.Month()}
}

// String renders the key as YYYY-MM.
func (k PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Bounds returns the half-open [start, end) interval covering the month in
// UTC.
func (k PeriodKey) Bounds() (start, end time.Time) {
	start = time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(0, 1, 0)
}

// PeriodSummary is the derived rollup over posted entries within a period.
// It is a cache: every field must be recomputable from the ledger.
type PeriodSummary struct {
	TenantID          string
	Year              int
	Month             time.Month
	TotalRevenue      decimal.Decimal
	TotalExpenses     decimal.Decimal
	NetIncome         decimal.Decimal
	JournalEntryCount int64
	ComputedAt        time.Time
}
