package domain

import "errors"

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrSessionInvalid     = errors.New("session invalid")

	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category is being used in transactions or budgets")

	ErrBudgetNotFound     = errors.New("budget not found")
	ErrBudgetExists       = errors.New("budget already exists for the category for this date")
	ErrBudgetInUse        = errors.New("budget is being used in transactions")
	ErrNoBudgetForPeriod  = errors.New("no budget exists for the category in this period")
	ErrInsufficientBudget = errors.New("insufficient budget for this transaction")

	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLockNotAcquired is returned when a conflicting request already
	// holds the advisory lock for the same resource.
	ErrLockNotAcquired = errors.New("lock already held")

	// ErrLedgerIntegrity signals that a budget adjustment that must always
	// succeed (returning a previously deducted amount, or re-deducting
	// during compensation) matched no budget row. The ledger invariant is
	// already broken at that point.
	ErrLedgerIntegrity = errors.New("budget ledger inconsistent")

	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrDescriptionRequired = errors.New("description is required")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidLimit        = errors.New("limit must not be negative")
	ErrInvalidEntryType    = errors.New("type must be income or expense")
	ErrInvalidMonth        = errors.New("month must be between 1 and 12")
	ErrInvalidDate         = errors.New("date is required")
	ErrNoFieldsToUpdate    = errors.New("no fields to update")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrPasswordTooShort    = errors.New("password is too short")
)

// Validation constants
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 255
	MinPasswordLength    = 8
)
