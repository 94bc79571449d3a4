package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is the remaining spending allowance for one category in one
// month. Limit is a running balance, not a fixed cap: expense
// transactions decrement it and reversals increment it. Unique per
// (user, category, month, year).
type Budget struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	CategoryID uuid.UUID       `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// BudgetWithCategory is a budget joined with its category for listings
type BudgetWithCategory struct {
	Budget
	CategoryName string    `json:"categoryName"`
	CategoryType EntryType `json:"categoryType"`
}

// BudgetPage is one page of budgets plus pagination metadata
type BudgetPage struct {
	Metadata PageMetadata          `json:"metadata"`
	Data     []*BudgetWithCategory `json:"data"`
}

// BudgetPatch holds optional budget fields for partial updates
type BudgetPatch struct {
	CategoryID *uuid.UUID
	Limit      *decimal.Decimal
	Month      *int
	Year       *int
}

// Empty reports whether the patch changes nothing
func (p BudgetPatch) Empty() bool {
	return p.CategoryID == nil && p.Limit == nil && p.Month == nil && p.Year == nil
}

// AdjustDirection selects how a ledger adjustment moves the limit
type AdjustDirection string

const (
	// AdjustDeduct decrements the limit, guarded by limit >= amount
	AdjustDeduct AdjustDirection = "deduct"
	// AdjustReturn increments the limit unconditionally
	AdjustReturn AdjustDirection = "return"
)

// BudgetRepository defines the persistence interface for budgets
type BudgetRepository interface {
	// Create persists a new budget. Returns ErrBudgetExists when the
	// (user, category, month, year) unique index is violated.
	Create(budget *Budget) (*Budget, error)
	GetByID(userID, id uuid.UUID) (*Budget, error)
	List(userID uuid.UUID, page, pageSize int) (*BudgetPage, error)
	Update(userID, id uuid.UUID, patch BudgetPatch) (*Budget, error)
	Delete(userID, id uuid.UUID) error
	// Exists reports whether a budget other than excludeID occupies the
	// (user, category, month, year) slot. Pass uuid.Nil to exclude none.
	Exists(userID, categoryID uuid.UUID, month, year int, excludeID uuid.UUID) (bool, error)
	// ExistsForCategory reports whether any budget references the category
	ExistsForCategory(userID, categoryID uuid.UUID) (bool, error)
	// AdjustLimit applies a single atomic conditional update to the
	// budget's limit. For AdjustDeduct the update only matches rows where
	// limit >= amount; for AdjustReturn it matches unconditionally.
	// Returns whether a row was updated. A read-modify-write here would
	// lose concurrent updates; the predicate must travel with the write.
	AdjustLimit(userID, categoryID uuid.UUID, month, year int, amount decimal.Decimal, direction AdjustDirection) (bool, error)
}
