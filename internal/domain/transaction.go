package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry. Expense transactions
// have a side effect: creating one deducts its amount from the budget
// covering (user, category, month(date), year(date)), deleting one
// returns the amount, and updating one re-balances both budgets.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	CategoryID  uuid.UUID       `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        EntryType       `json:"type"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionWithCategory is a transaction joined with its category name
type TransactionWithCategory struct {
	Transaction
	CategoryName string `json:"categoryName"`
}

// TransactionPage is one page of transactions plus pagination metadata
type TransactionPage struct {
	Metadata PageMetadata               `json:"metadata"`
	Data     []*TransactionWithCategory `json:"data"`
}

// TransactionSummary aggregates a user's totals across all transactions
type TransactionSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// TransactionUpdate holds the full replacement field set for an update
type TransactionUpdate struct {
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Type        EntryType
	Description string
	Date        time.Time
}

// TransactionFilter narrows existence checks. Nil fields are ignored;
// From is inclusive and To exclusive.
type TransactionFilter struct {
	CategoryID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// TransactionRepository defines the persistence interface for transactions
type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(userID, id uuid.UUID) (*Transaction, error)
	List(userID uuid.UUID, page, pageSize int) (*TransactionPage, error)
	Update(userID, id uuid.UUID, fields TransactionUpdate) (*Transaction, error)
	// Delete removes the transaction and returns the deleted row
	Delete(userID, id uuid.UUID) (*Transaction, error)
	// Exists is an existence probe, not a fetch; referential guards call
	// it on hot paths.
	Exists(userID uuid.UUID, filter TransactionFilter) (bool, error)
	Summary(userID uuid.UUID) (*TransactionSummary, error)
}
