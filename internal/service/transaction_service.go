package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/cache"
	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// TransactionService records income and expense entries and keeps the
// budget ledger consistent with them. Every mutation follows the same
// shape: acquire an advisory lock, move the budget balance, persist,
// invalidate caches. The ledger moves happen before persistence so a
// rejected deduction leaves no orphaned transaction row behind.
type TransactionService struct {
	transactions domain.TransactionRepository
	categories   domain.CategoryRepository
	budgets      *BudgetService
	store        cache.Store
	locks        cache.Locker
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactions domain.TransactionRepository, categories domain.CategoryRepository, budgets *BudgetService, store cache.Store, locks cache.Locker) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		categories:   categories,
		budgets:      budgets,
		store:        store,
		locks:        locks,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Type        domain.EntryType
	Description string
	Date        time.Time
}

func (in CreateTransactionInput) validate() error {
	if !in.Type.Valid() {
		return domain.ErrInvalidEntryType
	}
	if !in.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return domain.ErrDescriptionRequired
	}
	if len(description) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}
	if in.Date.IsZero() {
		return domain.ErrInvalidDate
	}
	return nil
}

// CreateTransaction records a new entry. Expenses first deduct from the
// budget covering the entry's category and month; when no budget covers
// it, or the remaining limit is too small, the transaction is refused
// and nothing is persisted.
func (s *TransactionService) CreateTransaction(userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	lockKey := cache.LockKey("CreateTransaction", userID.String(), input.CategoryID.String(),
		string(input.Type), input.Date.Format("2006-01-02"))
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLCreate); err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Type != input.Type {
		return nil, domain.ErrCategoryNotFound
	}

	if input.Type == domain.EntryTypeExpense {
		if err := s.budgets.Adjust(userID, input.CategoryID, input.Date, input.Amount, domain.AdjustDeduct); err != nil {
			return nil, err
		}
	}

	created, err := s.transactions.Create(&domain.Transaction{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Type:        input.Type,
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(userID, input.Type == domain.EntryTypeExpense)
	return created, nil
}

// ListTransactions returns one page of the user's transactions, serving
// from cache when possible
func (s *TransactionService) ListTransactions(userID uuid.UUID, page, pageSize int) (*domain.TransactionPage, error) {
	key := cache.TransactionsKey(userID, page, pageSize)

	if cached, found, err := s.store.Get(key); err == nil && found {
		var transactions domain.TransactionPage
		if err := json.Unmarshal([]byte(cached), &transactions); err == nil {
			return &transactions, nil
		}
	}

	transactions, err := s.transactions.List(userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(transactions); err == nil {
		if err := s.store.Set(key, string(encoded), cache.ListTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache transaction listing")
		}
	}
	return transactions, nil
}

// Summary returns the user's all-time income, expense and balance totals
func (s *TransactionService) Summary(userID uuid.UUID) (*domain.TransactionSummary, error) {
	key := cache.SummaryKey(userID)

	if cached, found, err := s.store.Get(key); err == nil && found {
		var summary domain.TransactionSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	summary, err := s.transactions.Summary(userID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(summary); err == nil {
		if err := s.store.Set(key, string(encoded), cache.ListTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache transaction summary")
		}
	}
	return summary, nil
}

// UpdateTransaction replaces an entry's fields and re-balances the
// ledger: the old expense amount is returned to its budget, then the
// new amount is deducted from its (possibly different) budget. When the
// new deduction is refused the already-applied return is compensated by
// deducting the old amount back, restoring the ledger to its state
// before the update. A compensation that itself fails means the old
// budget was changed underneath us and is reported as a ledger
// integrity violation.
func (s *TransactionService) UpdateTransaction(userID, transactionID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	lockKey := cache.LockKey("UpdateTransaction", userID.String(), transactionID.String())
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLMutate); err != nil {
		return nil, err
	}

	var current *domain.Transaction
	var category *domain.Category
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		current, err = s.transactions.GetByID(userID, transactionID)
		return err
	})
	g.Go(func() (err error) {
		category, err = s.categories.GetByID(userID, input.CategoryID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if category.Type != input.Type {
		return nil, domain.ErrCategoryNotFound
	}

	if current.Type == domain.EntryTypeExpense {
		if err := s.budgets.Adjust(userID, current.CategoryID, current.Date, current.Amount, domain.AdjustReturn); err != nil {
			return nil, err
		}
	}

	if input.Type == domain.EntryTypeExpense {
		if err := s.budgets.Adjust(userID, input.CategoryID, input.Date, input.Amount, domain.AdjustDeduct); err != nil {
			if current.Type == domain.EntryTypeExpense {
				if compErr := s.budgets.Adjust(userID, current.CategoryID, current.Date, current.Amount, domain.AdjustDeduct); compErr != nil {
					log.Error().
						Err(compErr).
						Str("user_id", userID.String()).
						Str("transaction_id", transactionID.String()).
						Msg("ledger integrity violation: failed to compensate returned amount")
					return nil, domain.ErrLedgerIntegrity
				}
			}
			return nil, err
		}
	}

	updated, err := s.transactions.Update(userID, transactionID, domain.TransactionUpdate{
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Type:        input.Type,
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(userID, current.Type == domain.EntryTypeExpense || input.Type == domain.EntryTypeExpense)
	return updated, nil
}

// DeleteTransaction removes an entry; a deleted expense returns its
// amount to the budget it was deducted from
func (s *TransactionService) DeleteTransaction(userID, transactionID uuid.UUID) error {
	lockKey := cache.LockKey("DeleteTransaction", userID.String(), transactionID.String())
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLMutate); err != nil {
		return err
	}

	current, err := s.transactions.GetByID(userID, transactionID)
	if err != nil {
		return err
	}

	if current.Type == domain.EntryTypeExpense {
		if err := s.budgets.Adjust(userID, current.CategoryID, current.Date, current.Amount, domain.AdjustReturn); err != nil {
			return err
		}
	}

	if _, err := s.transactions.Delete(userID, transactionID); err != nil {
		return err
	}

	s.invalidate(userID, current.Type == domain.EntryTypeExpense)
	return nil
}

func (s *TransactionService) invalidate(userID uuid.UUID, touchedBudgets bool) {
	keys := []string{cache.SummaryKey(userID)}
	if err := s.store.Delete(keys...); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate transaction summary cache")
	}
	if err := s.store.DeletePattern(cache.TransactionsPattern(userID)); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate transaction cache")
	}
	if touchedBudgets {
		if err := s.store.DeletePattern(cache.BudgetsPattern(userID)); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate budget cache")
		}
	}
}
