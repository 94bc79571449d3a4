package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testDay = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

func expenseBody(categoryID uuid.UUID, amount string) string {
	return `{"category":"` + categoryID.String() + `","amount":"` + amount +
		`","type":"expense","description":"weekly groceries","date":"2025-06-10"}`
}

func TestCreateTransaction_ExpenseDeductsBudget(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)
	f.budgets.AddBudget(testutil.ExpenseBudget(userID, category.ID, testDay, decimal.NewFromInt(100)))

	c, rec := f.request(http.MethodPost, "/api/v1/transactions", expenseBody(category.ID, "40.00"))
	setupAuthContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != "40" {
		t.Errorf("Expected amount '40', got %s", response.Amount)
	}
	if response.Date != "2025-06-10" {
		t.Errorf("Expected date '2025-06-10', got %s", response.Date)
	}

	budget := f.budgets.FindBudget(userID, category.ID, 6, 2025)
	if !budget.Limit.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected remaining budget 60, got %s", budget.Limit)
	}
}

func TestCreateTransaction_NoBudgetForPeriod(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)

	c, rec := f.request(http.MethodPost, "/api/v1/transactions", expenseBody(category.ID, "40.00"))
	setupAuthContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Detail != "Please create a budget for this category first" {
		t.Errorf("Unexpected detail: %s", problem.Detail)
	}
}

func TestCreateTransaction_InsufficientBudget(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)
	f.budgets.AddBudget(testutil.ExpenseBudget(userID, category.ID, testDay, decimal.NewFromInt(30)))

	c, rec := f.request(http.MethodPost, "/api/v1/transactions", expenseBody(category.ID, "40.00"))
	setupAuthContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Detail != "You don't have enough budget for this transaction" {
		t.Errorf("Unexpected detail: %s", problem.Detail)
	}
}

func TestCreateTransaction_Contended(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)
	f.budgets.AddBudget(testutil.ExpenseBudget(userID, category.ID, testDay, decimal.NewFromInt(100)))

	c, _ := f.request(http.MethodPost, "/api/v1/transactions", expenseBody(category.ID, "40.00"))
	setupAuthContext(c, userID)
	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// same user, category, type and day contends for the same lock
	c, rec := f.request(http.MethodPost, "/api/v1/transactions", expenseBody(category.ID, "10.00"))
	setupAuthContext(c, userID)
	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header to be set")
	}
}

func TestGetTransactions_Paginated(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)

	for day := 1; day <= 3; day++ {
		f.transactions.AddTransaction(&domain.Transaction{
			UserID:      userID,
			CategoryID:  category.ID,
			Amount:      decimal.NewFromInt(int64(day)),
			Type:        domain.EntryTypeExpense,
			Description: "entry",
			Date:        time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC),
		})
	}

	c, rec := f.request(http.MethodGet, "/api/v1/transactions?page=1&pageSize=2", "")
	setupAuthContext(c, userID)

	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PaginatedTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Metadata.TotalCount != 3 {
		t.Errorf("Expected total count 3, got %d", response.Metadata.TotalCount)
	}
	if len(response.Data) != 2 {
		t.Errorf("Expected 2 transactions on page, got %d", len(response.Data))
	}
}

func TestGetSummary(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)
	income, err := f.categoryService.CreateCategory(userID, "Salary", domain.EntryTypeIncome)
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	f.transactions.AddTransaction(&domain.Transaction{
		UserID: userID, CategoryID: income.ID,
		Amount: decimal.NewFromInt(2500), Type: domain.EntryTypeIncome,
		Description: "june salary", Date: testDay,
	})
	f.transactions.AddTransaction(&domain.Transaction{
		UserID: userID, CategoryID: category.ID,
		Amount: decimal.NewFromInt(40), Type: domain.EntryTypeExpense,
		Description: "weekly groceries", Date: testDay,
	})

	c, rec := f.request(http.MethodGet, "/api/v1/transactions/summary", "")
	setupAuthContext(c, userID)

	if err := handler.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.TotalIncome != "2500" {
		t.Errorf("Expected total income '2500', got %s", response.TotalIncome)
	}
	if response.TotalExpense != "40" {
		t.Errorf("Expected total expense '40', got %s", response.TotalExpense)
	}
	if response.Balance != "2460" {
		t.Errorf("Expected balance '2460', got %s", response.Balance)
	}
}

func TestUpdateTransaction_Success(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)
	f.budgets.AddBudget(testutil.ExpenseBudget(userID, category.ID, testDay, decimal.NewFromInt(100)))

	created, err := f.transactionService.CreateTransaction(userID, mustInput(t, category.ID, "40"))
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	c, rec := f.request(http.MethodPatch, "/api/v1/transactions/"+created.ID.String(), expenseBody(category.ID, "70.00"))
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	setupAuthContext(c, userID)

	if err := handler.UpdateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	budget := f.budgets.FindBudget(userID, category.ID, 6, 2025)
	if !budget.Limit.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected remaining budget 30, got %s", budget.Limit)
	}
}

func TestDeleteTransaction_ReturnsAmount(t *testing.T) {
	f := newFixture()
	handler := NewTransactionHandler(f.transactionService)
	userID := uuid.New()
	category := createTestCategory(t, f, userID)
	f.budgets.AddBudget(testutil.ExpenseBudget(userID, category.ID, testDay, decimal.NewFromInt(100)))

	created, err := f.transactionService.CreateTransaction(userID, mustInput(t, category.ID, "40"))
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	c, rec := f.request(http.MethodDelete, "/api/v1/transactions/"+created.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	setupAuthContext(c, userID)

	if err := handler.DeleteTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	budget := f.budgets.FindBudget(userID, category.ID, 6, 2025)
	if !budget.Limit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected restored budget 100, got %s", budget.Limit)
	}
}
