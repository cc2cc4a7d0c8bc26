package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestRetrierReplaysPostingConflicts(t *testing.T) {
	r := NewRetrier()
	r.maxAttempts = 2
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = 10 * time.Millisecond

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: pgErrSerializationFailure}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after replay, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnNonConflictError(t *testing.T) {
	r := NewRetrier()
	attempts := 0
	failure := errors.New("constraint violated")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return failure
	})

	if !errors.Is(err, failure) {
		t.Fatalf("expected the failure surfaced, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierGivesUpAfterMaxAttempts(t *testing.T) {
	r := NewRetrier()
	r.maxAttempts = 3
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second

	attempts := 0
	deadlock := &pgconn.PgError{Code: pgErrDeadlock}
	err := r.Retry(context.Background(), func() error {
		attempts++
		return deadlock
	})

	if !errors.Is(err, deadlock) {
		t.Fatalf("expected deadlock error surfaced, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestIsPostingConflict(t *testing.T) {
	if !isPostingConflict(&pgconn.PgError{Code: pgErrDeadlock}) {
		t.Fatalf("expected deadlock to count as a posting conflict")
	}
	if !isPostingConflict(&pgconn.PgError{Code: pgErrSerializationFailure}) {
		t.Fatalf("expected serialization failure to count as a posting conflict")
	}
	if isPostingConflict(errors.New("other")) {
		t.Fatalf("expected generic error to be permanent")
	}
	if isPostingConflict(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected unique violation to be permanent")
	}
}
