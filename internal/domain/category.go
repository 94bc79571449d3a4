package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryType classifies money movement. Categories carry one, and every
// transaction must match its category's type.
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// Valid reports whether t is one of the known entry types
func (t EntryType) Valid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// Category groups transactions and budgets for one user. Unique per
// (user, name, type).
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"categoryName"`
	Type      EntryType `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryRepository defines the persistence interface for categories
type CategoryRepository interface {
	// Create persists a new category. Returns ErrCategoryExists when the
	// (user, name, type) unique index is violated.
	Create(category *Category) (*Category, error)
	GetByID(userID, id uuid.UUID) (*Category, error)
	// List returns the user's categories, optionally filtered by type.
	List(userID uuid.UUID, entryType *EntryType) ([]*Category, error)
	// Update patches name and/or type; nil fields are left unchanged.
	Update(userID, id uuid.UUID, name *string, entryType *EntryType) (*Category, error)
	// Delete removes the category and returns the deleted row so callers
	// can invalidate per-type caches.
	Delete(userID, id uuid.UUID) (*Category, error)
	Exists(userID, id uuid.UUID) (bool, error)
	// ExistsDuplicate reports whether another category (excluding
	// excludeID) matches the given name and/or type for this user.
	ExistsDuplicate(userID, excludeID uuid.UUID, name *string, entryType *EntryType) (bool, error)
}
