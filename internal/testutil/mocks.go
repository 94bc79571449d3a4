// Package testutil provides in-memory fakes for the repository and
// store interfaces, used by service and handler tests.
package testutil

import (
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a map-backed implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[uuid.UUID]*domain.User
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates an empty MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[uuid.UUID]*domain.User)}
}

// Create persists a new user, enforcing the name/email unique indexes
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	for _, existing := range m.Users {
		if existing.Name == user.Name {
			return nil, domain.ErrUserExists
		}
		if existing.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.ID] = user
	return user, nil
}

// GetByID retrieves a user by id
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindByNameOrEmail retrieves a user matching either field
func (m *MockUserRepository) FindByNameOrEmail(name, email string) (*domain.User, error) {
	for _, user := range m.Users {
		if user.Name == name || user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// AddUser adds a user directly (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.ID] = user
}

// MockCategoryRepository is a map-backed implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[uuid.UUID]*domain.Category
}

// NewMockCategoryRepository creates an empty MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[uuid.UUID]*domain.Category)}
}

// Create persists a new category, enforcing the (user, name, type) unique index
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	for _, existing := range m.Categories {
		if existing.UserID == category.UserID && existing.Name == category.Name && existing.Type == category.Type {
			return nil, domain.ErrCategoryExists
		}
	}
	category.ID = uuid.New()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category owned by the user
func (m *MockCategoryRepository) GetByID(userID, id uuid.UUID) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok && category.UserID == userID {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// List returns the user's categories, optionally filtered by type
func (m *MockCategoryRepository) List(userID uuid.UUID, entryType *domain.EntryType) ([]*domain.Category, error) {
	result := make([]*domain.Category, 0)
	for _, category := range m.Categories {
		if category.UserID != userID {
			continue
		}
		if entryType != nil && category.Type != *entryType {
			continue
		}
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update patches the category's name and/or type
func (m *MockCategoryRepository) Update(userID, id uuid.UUID, name *string, entryType *domain.EntryType) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	if name != nil {
		category.Name = *name
	}
	if entryType != nil {
		category.Type = *entryType
	}
	category.UpdatedAt = time.Now()
	return category, nil
}

// Delete removes the category and returns the deleted row
func (m *MockCategoryRepository) Delete(userID, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return category, nil
}

// Exists reports whether the user owns a category with the given id
func (m *MockCategoryRepository) Exists(userID, id uuid.UUID) (bool, error) {
	category, ok := m.Categories[id]
	return ok && category.UserID == userID, nil
}

// ExistsDuplicate reports whether another category matches name and/or type
func (m *MockCategoryRepository) ExistsDuplicate(userID, excludeID uuid.UUID, name *string, entryType *domain.EntryType) (bool, error) {
	for _, category := range m.Categories {
		if category.UserID != userID || category.ID == excludeID {
			continue
		}
		if name != nil && category.Name != *name {
			continue
		}
		if entryType != nil && category.Type != *entryType {
			continue
		}
		return true, nil
	}
	return false, nil
}

// AddCategory adds a category directly (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	m.Categories[category.ID] = category
}

// MockBudgetRepository is a map-backed implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets       map[uuid.UUID]*domain.Budget
	AdjustLimitFn func(userID, categoryID uuid.UUID, month, year int, amount decimal.Decimal, direction domain.AdjustDirection) (bool, error)
}

// NewMockBudgetRepository creates an empty MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[uuid.UUID]*domain.Budget)}
}

// Create persists a new budget, enforcing the (user, category, month, year) unique index
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	for _, existing := range m.Budgets {
		if existing.UserID == budget.UserID && existing.CategoryID == budget.CategoryID &&
			existing.Month == budget.Month && existing.Year == budget.Year {
			return nil, domain.ErrBudgetExists
		}
	}
	budget.ID = uuid.New()
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget owned by the user
func (m *MockBudgetRepository) GetByID(userID, id uuid.UUID) (*domain.Budget, error) {
	if budget, ok := m.Budgets[id]; ok && budget.UserID == userID {
		return budget, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// List returns one page of the user's budgets, newest period first
func (m *MockBudgetRepository) List(userID uuid.UUID, page, pageSize int) (*domain.BudgetPage, error) {
	all := make([]*domain.BudgetWithCategory, 0)
	for _, budget := range m.Budgets {
		if budget.UserID == userID {
			all = append(all, &domain.BudgetWithCategory{Budget: *budget})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Year != all[j].Year {
			return all[i].Year > all[j].Year
		}
		return all[i].Month > all[j].Month
	})

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	return &domain.BudgetPage{
		Metadata: domain.NewPageMetadata(int64(len(all)), page, pageSize),
		Data:     all[start:end],
	}, nil
}

// Update patches the budget's fields
func (m *MockBudgetRepository) Update(userID, id uuid.UUID, patch domain.BudgetPatch) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	if patch.CategoryID != nil {
		budget.CategoryID = *patch.CategoryID
	}
	if patch.Limit != nil {
		budget.Limit = *patch.Limit
	}
	if patch.Month != nil {
		budget.Month = *patch.Month
	}
	if patch.Year != nil {
		budget.Year = *patch.Year
	}
	budget.UpdatedAt = time.Now()
	return budget, nil
}

// Delete removes the budget
func (m *MockBudgetRepository) Delete(userID, id uuid.UUID) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// Exists reports whether a budget other than excludeID occupies the slot
func (m *MockBudgetRepository) Exists(userID, categoryID uuid.UUID, month, year int, excludeID uuid.UUID) (bool, error) {
	for _, budget := range m.Budgets {
		if budget.ID == excludeID {
			continue
		}
		if budget.UserID == userID && budget.CategoryID == categoryID &&
			budget.Month == month && budget.Year == year {
			return true, nil
		}
	}
	return false, nil
}

// ExistsForCategory reports whether any budget references the category
func (m *MockBudgetRepository) ExistsForCategory(userID, categoryID uuid.UUID) (bool, error) {
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

// AdjustLimit applies a conditional adjustment with the same floor
// guard semantics as the SQL implementation.
func (m *MockBudgetRepository) AdjustLimit(userID, categoryID uuid.UUID, month, year int, amount decimal.Decimal, direction domain.AdjustDirection) (bool, error) {
	if m.AdjustLimitFn != nil {
		return m.AdjustLimitFn(userID, categoryID, month, year, amount, direction)
	}
	for _, budget := range m.Budgets {
		if budget.UserID != userID || budget.CategoryID != categoryID ||
			budget.Month != month || budget.Year != year {
			continue
		}
		if direction == domain.AdjustDeduct {
			if budget.Limit.LessThan(amount) {
				return false, nil
			}
			budget.Limit = budget.Limit.Sub(amount)
		} else {
			budget.Limit = budget.Limit.Add(amount)
		}
		budget.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

// AddBudget adds a budget directly (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	m.Budgets[budget.ID] = budget
}

// FindBudget returns the budget occupying the given slot (helper for tests)
func (m *MockBudgetRepository) FindBudget(userID, categoryID uuid.UUID, month, year int) *domain.Budget {
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.CategoryID == categoryID &&
			budget.Month == month && budget.Year == year {
			return budget
		}
	}
	return nil
}

// MockTransactionRepository is a map-backed implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
	CreateFn     func(transaction *domain.Transaction) (*domain.Transaction, error)
}

// NewMockTransactionRepository creates an empty MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: make(map[uuid.UUID]*domain.Transaction)}
}

// Create persists a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	transaction.ID = uuid.New()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction owned by the user
func (m *MockTransactionRepository) GetByID(userID, id uuid.UUID) (*domain.Transaction, error) {
	if transaction, ok := m.Transactions[id]; ok && transaction.UserID == userID {
		return transaction, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// List returns one page of the user's transactions, newest first
func (m *MockTransactionRepository) List(userID uuid.UUID, page, pageSize int) (*domain.TransactionPage, error) {
	all := make([]*domain.TransactionWithCategory, 0)
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID {
			all = append(all, &domain.TransactionWithCategory{Transaction: *transaction})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	return &domain.TransactionPage{
		Metadata: domain.NewPageMetadata(int64(len(all)), page, pageSize),
		Data:     all[start:end],
	}, nil
}

// Update replaces the transaction's mutable fields
func (m *MockTransactionRepository) Update(userID, id uuid.UUID, fields domain.TransactionUpdate) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.CategoryID = fields.CategoryID
	transaction.Amount = fields.Amount
	transaction.Type = fields.Type
	transaction.Description = fields.Description
	transaction.Date = fields.Date
	transaction.UpdatedAt = time.Now()
	return transaction, nil
}

// Delete removes the transaction and returns the deleted row
func (m *MockTransactionRepository) Delete(userID, id uuid.UUID) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return transaction, nil
}

// Exists reports whether any transaction matches the filter
func (m *MockTransactionRepository) Exists(userID uuid.UUID, filter domain.TransactionFilter) (bool, error) {
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if filter.CategoryID != nil && transaction.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.From != nil && transaction.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !transaction.Date.Before(*filter.To) {
			continue
		}
		return true, nil
	}
	return false, nil
}

// Summary aggregates totals across the user's transactions
func (m *MockTransactionRepository) Summary(userID uuid.UUID) (*domain.TransactionSummary, error) {
	summary := &domain.TransactionSummary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if transaction.Type == domain.EntryTypeIncome {
			summary.TotalIncome = summary.TotalIncome.Add(transaction.Amount)
		} else {
			summary.TotalExpense = summary.TotalExpense.Add(transaction.Amount)
		}
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}

// AddTransaction adds a transaction directly (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	m.Transactions[transaction.ID] = transaction
}

// MockStore is an in-memory key-value store implementing cache.Store.
// TTLs are recorded but only enforced through the Expire test helper.
type MockStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

// Get returns the value for key and whether it exists
func (m *MockStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	return value, ok, nil
}

// Set stores value under key
func (m *MockStore) Set(key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete removes the given keys
func (m *MockStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// DeletePattern removes every key matching a glob pattern
func (m *MockStore) DeletePattern(pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		// path.Match and Redis globbing agree for the key shapes used
		// here; keys never contain "/".
		matched, err := path.Match(pattern, key)
		if err != nil {
			return err
		}
		if matched {
			delete(m.data, key)
		}
	}
	return nil
}

// SetNX stores value under key only if the key does not exist
func (m *MockStore) SetNX(key, value string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

// CompareAndDelete removes key only if its current value equals value
func (m *MockStore) CompareAndDelete(key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.data[key]; ok && current == value {
		delete(m.data, key)
		return true, nil
	}
	return false, nil
}

// Expire simulates TTL expiry of a key (helper for tests)
func (m *MockStore) Expire(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Has reports whether any stored key has the given prefix (helper for tests)
func (m *MockStore) Has(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// ExpenseBudget is a convenience for wiring a budget that covers a
// transaction date (helper for tests)
func ExpenseBudget(userID, categoryID uuid.UUID, date time.Time, limit decimal.Decimal) *domain.Budget {
	month, year := util.MonthYear(date)
	return &domain.Budget{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Limit:      limit,
		Month:      month,
		Year:       year,
	}
}
