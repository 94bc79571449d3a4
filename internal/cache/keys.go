package cache

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Every cache key and lock key used anywhere in the application is
// built here. Invalidation works by key pattern, so a read path and a
// mutation path that disagree about a key's shape would silently leave
// stale entries behind; keeping the templates in one place (and testing
// that each key matches its pattern) closes that hole.

// BudgetsKey caches one page of a user's budget listing
func BudgetsKey(userID uuid.UUID, page, pageSize int) string {
	return fmt.Sprintf("budgets:%s:%d:%d", userID, page, pageSize)
}

// BudgetsPattern matches every cached budget listing for the user
func BudgetsPattern(userID uuid.UUID) string {
	return fmt.Sprintf("budgets:%s:*", userID)
}

// TransactionsKey caches one page of a user's transaction listing
func TransactionsKey(userID uuid.UUID, page, pageSize int) string {
	return fmt.Sprintf("transactions:%s:%d:%d", userID, page, pageSize)
}

// TransactionsPattern matches every cached transaction listing for the user
func TransactionsPattern(userID uuid.UUID) string {
	return fmt.Sprintf("transactions:%s:*", userID)
}

// CategoriesKey caches the unfiltered category listing for the user
func CategoriesKey(userID uuid.UUID) string {
	return fmt.Sprintf("categories:%s", userID)
}

// CategoriesTypeKey caches a category listing filtered by entry type
func CategoriesTypeKey(userID uuid.UUID, entryType string) string {
	return fmt.Sprintf("categories:%s:%s", userID, entryType)
}

// SummaryKey caches the user's transaction summary
func SummaryKey(userID uuid.UUID) string {
	return fmt.Sprintf("transaction_summary:%s", userID)
}

// RefreshTokenKey mirrors the user's current refresh token; a login
// overwrites it, which invalidates any previously issued session.
func RefreshTokenKey(userID uuid.UUID) string {
	return fmt.Sprintf("RefreshToken:%s", userID)
}

// LockKey builds an advisory lock key for an operation and its scope,
// e.g. LockKey("CreateBudget", user, category, month, year). Callers
// choose the scope to exactly cover the conflicting resource.
func LockKey(operation string, scope ...string) string {
	parts := append([]string{"lock", operation}, scope...)
	return strings.Join(parts, ":")
}
