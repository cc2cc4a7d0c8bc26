package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateCode      = errors.New("account code already exists for tenant")
	ErrInvalidParent      = errors.New("parent account does not exist or has an incompatible type")
	ErrAccountHasChildren = errors.New("account has child accounts")
	ErrAccountHasActivity = errors.New("account is referenced by journal entries")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidBalanceSide = errors.New("balance side must be DEBIT or CREDIT")

	// Journal entry errors
	ErrEntryNotFound       = errors.New("journal entry not found")
	ErrTooFewLines         = errors.New("journal entry requires at least two lines")
	ErrInvalidLine         = errors.New("journal line must have exactly one of debit or credit")
	ErrNegativeLineAmount  = errors.New("journal line amounts must not be negative")
	ErrLineAccountRequired = errors.New("journal line is missing an account")
	ErrInvalidEntryType    = errors.New("invalid journal entry type")
	ErrUnbalancedEntry     = errors.New("journal entry debits do not equal credits")
	ErrAlreadyReversed     = errors.New("journal entry is already reversed")

	// Financial period errors
	ErrPeriodNotFound        = errors.New("financial period record not found")
	ErrPeriodLocked          = errors.New("financial period is locked")
	ErrAlreadyLocked         = errors.New("financial period is already locked")
	ErrNotLocked             = errors.New("financial period is not locked")
	ErrUnlockReasonRequired  = errors.New("unlocking a period requires a reason")
	ErrInsufficientPrivilege = errors.New("acting user lacks the required role")

	// Opening balance errors
	ErrOpeningBalanceNotFound = errors.New("opening balance not found")
	ErrAlreadyPosted          = errors.New("opening balance is already posted")
	ErrOffsetAccountMissing   = errors.New("tenant has no designated opening-balance offset account")
)
