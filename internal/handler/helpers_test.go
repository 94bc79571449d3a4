package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/cache"
	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/middleware"
	"github.com/Rexomon/Finance-tracker/internal/service"
	"github.com/Rexomon/Finance-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// fixture wires the full service stack over in-memory fakes
type fixture struct {
	echo         *echo.Echo
	users        *testutil.MockUserRepository
	categories   *testutil.MockCategoryRepository
	budgets      *testutil.MockBudgetRepository
	transactions *testutil.MockTransactionRepository
	store        *testutil.MockStore

	authService        *service.AuthService
	categoryService    *service.CategoryService
	budgetService      *service.BudgetService
	transactionService *service.TransactionService
}

func newFixture() *fixture {
	f := &fixture{
		echo:         echo.New(),
		users:        testutil.NewMockUserRepository(),
		categories:   testutil.NewMockCategoryRepository(),
		budgets:      testutil.NewMockBudgetRepository(),
		transactions: testutil.NewMockTransactionRepository(),
		store:        testutil.NewMockStore(),
	}
	locks := cache.NewLock(f.store)
	f.authService = service.NewAuthService(f.users, f.store, "test-access-secret", "test-refresh-secret")
	f.categoryService = service.NewCategoryService(f.categories, f.budgets, f.transactions, f.store, locks)
	f.budgetService = service.NewBudgetService(f.budgets, f.categories, f.transactions, f.store, locks)
	f.transactionService = service.NewTransactionService(f.transactions, f.categories, f.budgetService, f.store, locks)
	return f
}

// request builds an echo context carrying a JSON body
func (f *fixture) request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return f.echo.NewContext(req, rec), rec
}

// setupAuthContext injects the authenticated user the way the auth
// middleware would
func setupAuthContext(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.EmailKey, "test@example.com")
	c.SetRequest(c.Request().WithContext(ctx))
}

// mustInput builds a valid expense input for June 10 2025
func mustInput(t *testing.T, categoryID uuid.UUID, amount string) service.CreateTransactionInput {
	t.Helper()
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("Invalid amount %q: %v", amount, err)
	}
	return service.CreateTransactionInput{
		CategoryID:  categoryID,
		Amount:      parsed,
		Type:        domain.EntryTypeExpense,
		Description: "weekly groceries",
		Date:        time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	}
}
