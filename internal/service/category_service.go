package service

import (
	"encoding/json"
	"strings"

	"github.com/Rexomon/Finance-tracker/internal/cache"
	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CategoryService handles category CRUD and the referential guards that
// keep budgets and transactions consistent with their category's type.
type CategoryService struct {
	categories   domain.CategoryRepository
	budgets      domain.BudgetRepository
	transactions domain.TransactionRepository
	store        cache.Store
	locks        cache.Locker
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories domain.CategoryRepository, budgets domain.BudgetRepository, transactions domain.TransactionRepository, store cache.Store, locks cache.Locker) *CategoryService {
	return &CategoryService{
		categories:   categories,
		budgets:      budgets,
		transactions: transactions,
		store:        store,
		locks:        locks,
	}
}

// CreateCategory creates a new category for the user
func (s *CategoryService) CreateCategory(userID uuid.UUID, name string, entryType domain.EntryType) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !entryType.Valid() {
		return nil, domain.ErrInvalidEntryType
	}

	lockKey := cache.LockKey("CreateCategory", userID.String(), name, string(entryType))
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLCreate); err != nil {
		return nil, err
	}

	created, err := s.categories.Create(&domain.Category{
		UserID: userID,
		Name:   name,
		Type:   entryType,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListings(userID, entryType)
	return created, nil
}

// ListCategories returns the user's categories, optionally filtered by
// type, serving from cache when possible
func (s *CategoryService) ListCategories(userID uuid.UUID, entryType *domain.EntryType) ([]*domain.Category, error) {
	key := cache.CategoriesKey(userID)
	if entryType != nil {
		if !entryType.Valid() {
			return nil, domain.ErrInvalidEntryType
		}
		key = cache.CategoriesTypeKey(userID, string(*entryType))
	}

	if cached, found, err := s.store.Get(key); err == nil && found {
		var categories []*domain.Category
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			return categories, nil
		}
	}

	categories, err := s.categories.List(userID, entryType)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(categories); err == nil {
		if err := s.store.Set(key, string(encoded), cache.ListTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache category listing")
		}
	}
	return categories, nil
}

// UpdateCategory patches a category's name and/or type. A type change
// is refused while any budget or transaction references the category,
// because it would silently re-classify their history.
func (s *CategoryService) UpdateCategory(userID, categoryID uuid.UUID, name *string, entryType *domain.EntryType) (*domain.Category, error) {
	if name == nil && entryType == nil {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, domain.ErrNameRequired
		}
		if len(trimmed) > domain.MaxNameLength {
			return nil, domain.ErrNameTooLong
		}
		name = &trimmed
	}
	if entryType != nil && !entryType.Valid() {
		return nil, domain.ErrInvalidEntryType
	}

	lockKey := cache.LockKey("UpdateCategory", userID.String(), categoryID.String())
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLMutate); err != nil {
		return nil, err
	}

	// The four lookups are independent; run them together.
	var (
		current      *domain.Category
		duplicate    bool
		inTx, inBudg bool
	)
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		current, err = s.categories.GetByID(userID, categoryID)
		return err
	})
	g.Go(func() (err error) {
		duplicate, err = s.categories.ExistsDuplicate(userID, categoryID, name, entryType)
		return err
	})
	g.Go(func() (err error) {
		inTx, err = s.transactions.Exists(userID, domain.TransactionFilter{CategoryID: &categoryID})
		return err
	})
	g.Go(func() (err error) {
		inBudg, err = s.budgets.ExistsForCategory(userID, categoryID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if duplicate {
		return nil, domain.ErrCategoryExists
	}

	typeChanged := entryType != nil && current.Type != *entryType
	if typeChanged && (inTx || inBudg) {
		return nil, domain.ErrCategoryInUse
	}

	oldType := current.Type
	updated, err := s.categories.Update(userID, categoryID, name, entryType)
	if err != nil {
		return nil, err
	}

	keys := []string{
		cache.CategoriesKey(userID),
		cache.CategoriesTypeKey(userID, string(oldType)),
	}
	if typeChanged {
		keys = append(keys, cache.CategoriesTypeKey(userID, string(*entryType)))
	}
	if err := s.store.Delete(keys...); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate category cache")
	}

	// Renaming a referenced category changes joined listings too
	if inTx || inBudg {
		if err := s.store.DeletePattern(cache.BudgetsPattern(userID)); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate budget cache")
		}
		if err := s.store.DeletePattern(cache.TransactionsPattern(userID)); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate transaction cache")
		}
	}

	return updated, nil
}

// DeleteCategory removes an unreferenced category
func (s *CategoryService) DeleteCategory(userID, categoryID uuid.UUID) error {
	lockKey := cache.LockKey("DeleteCategory", userID.String(), categoryID.String())
	if _, err := s.locks.Acquire(lockKey, cache.LockTTLMutate); err != nil {
		return err
	}

	var inTx, inBudg bool
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		inTx, err = s.transactions.Exists(userID, domain.TransactionFilter{CategoryID: &categoryID})
		return err
	})
	g.Go(func() (err error) {
		inBudg, err = s.budgets.ExistsForCategory(userID, categoryID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if inTx || inBudg {
		return domain.ErrCategoryInUse
	}

	deleted, err := s.categories.Delete(userID, categoryID)
	if err != nil {
		return err
	}

	s.invalidateListings(userID, deleted.Type)
	return nil
}

func (s *CategoryService) invalidateListings(userID uuid.UUID, entryType domain.EntryType) {
	err := s.store.Delete(
		cache.CategoriesKey(userID),
		cache.CategoriesTypeKey(userID, string(entryType)),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to invalidate category cache")
	}
}
