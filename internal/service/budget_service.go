package service

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/cache"
	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BudgetService owns the budget ledger. Each budget's limit is a
// running balance; every movement of it goes through Adjust, which
// rides on the repository's atomic conditional update. Mutations are
// serialized by advisory locks: creates by the (user, category, month,
// year) slot, updates and deletes by the budget id.
type BudgetService struct {
	budgets      domain.BudgetRepository
	categories   domain.CategoryRepository
	transactions domain.TransactionRepository
	store        cache.Store
	locks        cache.Locker
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgets domain.BudgetRepository, categories domain.CategoryRepository, transactions domain.TransactionRepository, store cache.Store, locks cache.Locker) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		categories:   categories,
		transactions: transactions,
		store:        store,
		locks:        locks,
	}
}

// CreateBudgetInput holds the input for creating a budget
type CreateBudgetInput struct {
	CategoryID uuid.UUID
	Limit      decimal.Decimal
	Month      int
	Year       int
}

// CreateBudget creates the budget for one (category, month, year) slot.
// The lock serializes concurrent creates for the same slot so exactly
// one passes the uniqueness check; the unique index backstops a lock
// that expired mid-request.
func (s *BudgetService) CreateBudget(userID uuid.UUID, input CreateBudgetInput) (*domain.Budget, error) {
	if input.Limit.IsNegative() {
		return nil, domain.ErrInvalidLimit
	}
	if input.Month < 1 || input.Month > 12 {
		return nil, domain.ErrInvalidMonth
	}

	lockKey := cache.LockKey("CreateBudget", userID.String(), input.CategoryID.String(),
		strconv.Itoa(input.Month), strconv.Itoa(input.Year))
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLCreate); err != nil {
		return nil, err
	}

	var categoryExists, budgetExists bool
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		categoryExists, err = s.categories.Exists(userID, input.CategoryID)
		return err
	})
	g.Go(func() (err error) {
		budgetExists, err = s.budgets.Exists(userID, input.CategoryID, input.Month, input.Year, uuid.Nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !categoryExists {
		return nil, domain.ErrCategoryNotFound
	}
	if budgetExists {
		return nil, domain.ErrBudgetExists
	}

	created, err := s.budgets.Create(&domain.Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Limit:      input.Limit,
		Month:      input.Month,
		Year:       input.Year,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListings(userID)
	return created, nil
}

// ListBudgets returns one page of the user's budgets, serving from
// cache when possible
func (s *BudgetService) ListBudgets(userID uuid.UUID, page, pageSize int) (*domain.BudgetPage, error) {
	key := cache.BudgetsKey(userID, page, pageSize)

	if cached, found, err := s.store.Get(key); err == nil && found {
		var budgets domain.BudgetPage
		if err := json.Unmarshal([]byte(cached), &budgets); err == nil {
			return &budgets, nil
		}
	}

	budgets, err := s.budgets.List(userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(budgets); err == nil {
		if err := s.store.Set(key, string(encoded), cache.ListTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache budget listing")
		}
	}
	return budgets, nil
}

// UpdateBudget patches a budget. Moving it to another (category, month,
// year) slot is refused while any transaction sits inside the current
// slot's month window, because those transactions' deductions would be
// orphaned from their budget.
func (s *BudgetService) UpdateBudget(userID, budgetID uuid.UUID, patch domain.BudgetPatch) (*domain.Budget, error) {
	if patch.Empty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if patch.Limit != nil && patch.Limit.IsNegative() {
		return nil, domain.ErrInvalidLimit
	}
	if patch.Month != nil && (*patch.Month < 1 || *patch.Month > 12) {
		return nil, domain.ErrInvalidMonth
	}

	lockKey := cache.LockKey("UpdateBudget", budgetID.String(), userID.String())
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLMutate); err != nil {
		return nil, err
	}

	current, err := s.budgets.GetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	categoryChanged := patch.CategoryID != nil && *patch.CategoryID != current.CategoryID
	monthChanged := patch.Month != nil && *patch.Month != current.Month
	yearChanged := patch.Year != nil && *patch.Year != current.Year

	if categoryChanged || monthChanged || yearChanged {
		newCategory := current.CategoryID
		if patch.CategoryID != nil {
			newCategory = *patch.CategoryID
		}
		newMonth := current.Month
		if patch.Month != nil {
			newMonth = *patch.Month
		}
		newYear := current.Year
		if patch.Year != nil {
			newYear = *patch.Year
		}

		from, to := util.MonthWindow(current.Year, current.Month)
		var slotTaken, categoryExists, inUse bool
		g := new(errgroup.Group)
		g.Go(func() (err error) {
			slotTaken, err = s.budgets.Exists(userID, newCategory, newMonth, newYear, budgetID)
			return err
		})
		g.Go(func() (err error) {
			categoryExists, err = s.categories.Exists(userID, newCategory)
			return err
		})
		g.Go(func() (err error) {
			inUse, err = s.transactions.Exists(userID, domain.TransactionFilter{
				CategoryID: &current.CategoryID,
				From:       &from,
				To:         &to,
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if slotTaken {
			return nil, domain.ErrBudgetExists
		}
		if !categoryExists {
			return nil, domain.ErrCategoryNotFound
		}
		if inUse {
			return nil, domain.ErrBudgetInUse
		}
	}

	updated, err := s.budgets.Update(userID, budgetID, patch)
	if err != nil {
		return nil, err
	}

	s.invalidateListings(userID)
	return updated, nil
}

// DeleteBudget removes a budget that no transaction history depends on
func (s *BudgetService) DeleteBudget(userID, budgetID uuid.UUID) error {
	lockKey := cache.LockKey("DeleteBudget", budgetID.String(), userID.String())
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLMutate); err != nil {
		return err
	}

	current, err := s.budgets.GetByID(userID, budgetID)
	if err != nil {
		return err
	}

	from, to := util.MonthWindow(current.Year, current.Month)
	inUse, err := s.transactions.Exists(userID, domain.TransactionFilter{
		CategoryID: &current.CategoryID,
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrBudgetInUse
	}

	if err := s.budgets.Delete(userID, budgetID); err != nil {
		return err
	}

	s.invalidateListings(userID)
	return nil
}

// Adjust moves the limit of the budget covering (category, month(date),
// year(date)) by amount.
//
// Deductions are guarded: the single conditional update only matches
// when limit >= amount, so the balance can never be driven negative,
// even by concurrent requests that slipped past the advisory lock. When
// nothing matched, an existence probe splits "no budget for this
// period" from "budget present but insufficient" — the store reports
// both as zero rows updated.
//
// Returns are unguarded: a transaction only ever returns an amount it
// previously deducted, so the target budget must exist. If it does not,
// the ledger invariant is already broken and the failure is surfaced as
// ErrLedgerIntegrity rather than a normal error.
func (s *BudgetService) Adjust(userID, categoryID uuid.UUID, date time.Time, amount decimal.Decimal, direction domain.AdjustDirection) error {
	month, year := util.MonthYear(date)

	matched, err := s.budgets.AdjustLimit(userID, categoryID, month, year, amount, direction)
	if err != nil {
		return err
	}
	if matched {
		return nil
	}

	if direction == domain.AdjustDeduct {
		exists, err := s.budgets.Exists(userID, categoryID, month, year, uuid.Nil)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNoBudgetForPeriod
		}
		return domain.ErrInsufficientBudget
	}

	log.Error().
		Str("user_id", userID.String()).
		Str("category_id", categoryID.String()).
		Int("month", month).
		Int("year", year).
		Msg("ledger integrity violation: return adjustment matched no budget")
	return domain.ErrLedgerIntegrity
}

func (s *BudgetService) invalidateListings(userID uuid.UUID) {
	if err := s.store.DeletePattern(cache.BudgetsPattern(userID)); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate budget cache")
	}
}
