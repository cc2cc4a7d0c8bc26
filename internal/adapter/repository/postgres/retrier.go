package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postings that touch overlapping account sets can deadlock (40P01) or fail
// serialization (40001) under row locking. Both abort the transaction
// cleanly, so replaying the whole posting is safe.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier implements usecase.Retrier: it replays ledger postings that lost a
// lock conflict, with exponential backoff between attempts.
type Retrier struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger
}

// NewRetrier returns a Retrier tuned for short posting transactions.
func NewRetrier() *Retrier {
	return &Retrier{
		maxAttempts:     4,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          slog.Default(),
	}
}

// Retry runs op, replaying it while it keeps losing posting conflicts.
// Non-conflict errors and exhausted attempts surface unchanged.
func (r *Retrier) Retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialInterval
	bo.MaxInterval = r.maxInterval
	bo.MaxElapsedTime = r.maxElapsedTime

	attempt := 0

	return backoff.Retry(func() error {
		attempt++

		err := op()
		if err == nil {
			return nil
		}

		if !isPostingConflict(err) || attempt >= r.maxAttempts {
			return backoff.Permanent(err)
		}

		var pgErr *pgconn.PgError
		errors.As(err, &pgErr)
		r.logger.Warn("posting lost a lock conflict, replaying",
			"code", pgErr.Code,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
		)

		return err
	}, backoff.WithContext(bo, ctx))
}

// isPostingConflict reports whether the error is a transient lock conflict
// rather than a real failure.
func isPostingConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgErrDeadlock || pgErr.Code == pgErrSerializationFailure
}
