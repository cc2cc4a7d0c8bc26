package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalance is a staged cutover balance for one account. It stays
// unposted until the importer turns it into an OPENING_BALANCE journal
// entry against the tenant's designated offset account.
type OpeningBalance struct {
	ID       string
	TenantID string
	// AccountID and AsOfDate form the natural key: re-staging the same pair
	// overwrites the staged value.
	AccountID string
	AsOfDate  time.Time
	// Balance is signed in the account's normal-balance direction.
	Balance decimal.Decimal
	// Subsidiary-ledger tags for AR/AP detail.
	CustomerID *string
	VendorID   *string
	IsPosted   bool
	PostedAt   *time.Time
	EntryID    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostingResult summarizes a batch opening-balance posting. Posting is
// per-balance atomic: failures are collected and the rest of the batch
// continues.
type PostingResult struct {
	Posted int
	Failed int
	Errors []PostingFailure
}

// PostingFailure records why one staged balance could not post.
type PostingFailure struct {
	OpeningBalanceID string
	AccountID        string
	Reason           string
}
