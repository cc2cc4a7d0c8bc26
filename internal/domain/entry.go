package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType records what produced a journal entry.
type EntryType string

const (
	EntryTypeManual         EntryType = "MANUAL"
	EntryTypeSystem         EntryType = "SYSTEM"
	EntryTypeOpeningBalance EntryType = "OPENING_BALANCE"
	EntryTypeReversal       EntryType = "REVERSAL"
)

var validEntryTypes = map[EntryType]bool{
	EntryTypeManual:         true,
	EntryTypeSystem:         true,
	EntryTypeOpeningBalance: true,
	EntryTypeReversal:       true,
}

// IsValid reports whether the entry type is known.
func (t EntryType) IsValid() bool {
	return validEntryTypes[t]
}

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryStatusPosted EntryStatus = "POSTED"
)

// BalanceTolerance is the only place floating slack is permitted: entries
// whose debit and credit totals differ by more than 0.01 currency units are
// rejected.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// JournalLine is a single debit or credit against one account. Exactly one
// of Debit and Credit is non-zero.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Side returns which side of the entry the line sits on.
func (l *JournalLine) Side() BalanceSide {
	if l.Debit.IsPositive() {
		return SideDebit
	}

	return SideCredit
}

// Amount returns the line's magnitude regardless of side.
func (l *JournalLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}

	return l.Credit
}

// Validate checks the one-side-only rule and the amount bounds for a line.
func (l *JournalLine) Validate() error {
	if l.AccountID == "" {
		return ErrLineAccountRequired
	}

	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return ErrNegativeLineAmount
	}

	debit := l.Debit.IsPositive()
	credit := l.Credit.IsPositive()

	if debit == credit {
		return ErrInvalidLine
	}

	return ValidateAmount(l.Amount())
}

// JournalEntry is an append-only balanced set of lines posted against a
// tenant's accounts. Entries are never mutated after posting except to flag
// IsReversed.
type JournalEntry struct {
	ID              string
	TenantID        string
	EntryNumber     int64
	EntryDate       time.Time
	Description     string
	Type            EntryType
	Status          EntryStatus
	Lines           []JournalLine
	IsReversed      bool
	ReversalEntryID *string
	CreatedBy       string
	CreatedAt       time.Time
}

// Totals returns the entry's summed debit and credit columns.
func (e *JournalEntry) Totals() (debits, credits decimal.Decimal) {
	for i := range e.Lines {
		debits = debits.Add(e.Lines[i].Debit)
		credits = credits.Add(e.Lines[i].Credit)
	}

	return debits, credits
}

// Validate enforces the structural entry rules: at least two lines, each
// line on exactly one side, and debits equal to credits within
// BalanceTolerance.
func (e *JournalEntry) Validate() error {
	if len(e.Lines) < 2 {
		return ErrTooFewLines
	}

	if !e.Type.IsValid() {
		return ErrInvalidEntryType
	}

	for i := range e.Lines {
		if err := e.Lines[i].Validate(); err != nil {
			return err
		}
	}

	debits, credits := e.Totals()
	if debits.Sub(credits).Abs().GreaterThan(BalanceTolerance) {
		return ErrUnbalancedEntry
	}

	return nil
}

// ReversalLines returns the entry's lines with debit and credit swapped,
// ready to post as the mirror entry.
func (e *JournalEntry) ReversalLines() []JournalLine {
	lines := make([]JournalLine, 0, len(e.Lines))
	for i := range e.Lines {
		lines = append(lines, JournalLine{
			AccountID:   e.Lines[i].AccountID,
			Debit:       e.Lines[i].Credit,
			Credit:      e.Lines[i].Debit,
			Description: e.Lines[i].Description,
		})
	}

	return lines
}

// AccountActivity is one posted line touching an account, as seen in a
// statement. Rows are ordered by entry date then entry number so repeated
// reads produce identical statements.
type AccountActivity struct {
	EntryID     string
	EntryNumber int64
	EntryDate   time.Time
	EntryType   EntryType
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}
