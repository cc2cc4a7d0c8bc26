package usecase

import "time"

const (
	// DefaultTransactionTimeout caps how long a posting transaction may hold
	// row locks.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// SummaryCacheTTL bounds staleness of cached period summaries and trial
	// balances between recomputations.
	SummaryCacheTTL = 5 * time.Minute

	// OpeningBalanceOffsetCode is the chart code of the equity account that
	// absorbs the offsetting side of opening-balance postings. Seeded by
	// SeedStandardChart.
	OpeningBalanceOffsetCode = "3999"
)
