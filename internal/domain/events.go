package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeEntryPosted           = "entry.posted"
	EventTypeEntryReversed         = "entry.reversed"
	EventTypePeriodLocked          = "period.locked"
	EventTypePeriodUnlocked        = "period.unlocked"
	EventTypeOpeningBalancesPosted = "opening_balances.posted"
	EventTypeAccountCreated        = "account.created"
)

// Aggregate types
const (
	AggregateTypeEntry   = "journal_entry"
	AggregateTypePeriod  = "financial_period"
	AggregateTypeAccount = "account"
)

// OutboxEvent is a pending notification for downstream consumers (reporting,
// dashboards). Rows are written in the same transaction as the change they
// describe and published by a background poller.
type OutboxEvent struct {
	ID            string
	TenantID      string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       json.RawMessage
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// EntryPostedEvent payload
type EntryPostedEvent struct {
	EntryID     string `json:"entry_id"`
	TenantID    string `json:"tenant_id"`
	EntryNumber int64  `json:"entry_number"`
	EntryDate   string `json:"entry_date"`
	EntryType   string `json:"entry_type"`
	TotalDebits string `json:"total_debits"`
	LineCount   int    `json:"line_count"`
}

// EntryReversedEvent payload
type EntryReversedEvent struct {
	OriginalEntryID string `json:"original_entry_id"`
	ReversalEntryID string `json:"reversal_entry_id"`
	TenantID        string `json:"tenant_id"`
}

// PeriodLockedEvent payload, shared by lock and unlock with Locked flag.
type PeriodLockedEvent struct {
	TenantID string `json:"tenant_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Locked   bool   `json:"locked"`
	ActorID  string `json:"actor_id"`
	Reason   string `json:"reason,omitempty"`
}

// OpeningBalancesPostedEvent payload
type OpeningBalancesPostedEvent struct {
	TenantID string `json:"tenant_id"`
	AsOfDate string `json:"as_of_date"`
	Posted   int    `json:"posted"`
	Failed   int    `json:"failed"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	TenantID  string `json:"tenant_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

// MarshalPayload encodes a typed event payload for the outbox row.
func MarshalPayload(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}

	return data
}
