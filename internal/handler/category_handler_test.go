package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateCategory_Success(t *testing.T) {
	f := newFixture()
	handler := NewCategoryHandler(f.categoryService)
	userID := uuid.New()

	c, rec := f.request(http.MethodPost, "/api/v1/categories", `{"categoryName":"Groceries","type":"expense"}`)
	setupAuthContext(c, userID)

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.CategoryName != "Groceries" {
		t.Errorf("Expected name 'Groceries', got %s", response.CategoryName)
	}
	if response.Type != "expense" {
		t.Errorf("Expected type 'expense', got %s", response.Type)
	}
}

func TestCreateCategory_InvalidType(t *testing.T) {
	f := newFixture()
	handler := NewCategoryHandler(f.categoryService)

	c, rec := f.request(http.MethodPost, "/api/v1/categories", `{"categoryName":"Groceries","type":"transfer"}`)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetCategories_FilteredByType(t *testing.T) {
	f := newFixture()
	handler := NewCategoryHandler(f.categoryService)
	userID := uuid.New()

	if _, err := f.categoryService.CreateCategory(userID, "Groceries", domain.EntryTypeExpense); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if _, err := f.categoryService.CreateCategory(userID, "Salary", domain.EntryTypeIncome); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	c, rec := f.request(http.MethodGet, "/api/v1/categories?type=income", "")
	setupAuthContext(c, userID)

	if err := handler.GetCategories(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 category, got %d", len(response))
	}
	if response[0].CategoryName != "Salary" {
		t.Errorf("Expected 'Salary', got %s", response[0].CategoryName)
	}
}

func TestUpdateCategory_Rename(t *testing.T) {
	f := newFixture()
	handler := NewCategoryHandler(f.categoryService)
	userID := uuid.New()

	category, err := f.categoryService.CreateCategory(userID, "Groceries", domain.EntryTypeExpense)
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	c, rec := f.request(http.MethodPatch, "/api/v1/categories/"+category.ID.String(), `{"categoryName":"Food"}`)
	c.SetParamNames("id")
	c.SetParamValues(category.ID.String())
	setupAuthContext(c, userID)

	if err := handler.UpdateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.CategoryName != "Food" {
		t.Errorf("Expected name 'Food', got %s", response.CategoryName)
	}
}

func TestDeleteCategory_InUse(t *testing.T) {
	f := newFixture()
	handler := NewCategoryHandler(f.categoryService)
	userID := uuid.New()

	category, err := f.categoryService.CreateCategory(userID, "Groceries", domain.EntryTypeExpense)
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	f.transactions.AddTransaction(&domain.Transaction{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     decimal.NewFromInt(25),
		Type:       domain.EntryTypeExpense,
		Date:       time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	})

	c, rec := f.request(http.MethodDelete, "/api/v1/categories/"+category.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(category.ID.String())
	setupAuthContext(c, userID)

	if err := handler.DeleteCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected error type %s, got %s", ErrorTypeValidation, problem.Type)
	}
	if problem.Detail != "Category is being used in transactions or budgets" {
		t.Errorf("Unexpected detail: %s", problem.Detail)
	}
}

func TestUpdateCategory_TypeChangeInUse(t *testing.T) {
	f := newFixture()
	handler := NewCategoryHandler(f.categoryService)
	userID := uuid.New()

	category, err := f.categoryService.CreateCategory(userID, "Groceries", domain.EntryTypeExpense)
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	f.transactions.AddTransaction(&domain.Transaction{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     decimal.NewFromInt(25),
		Type:       domain.EntryTypeExpense,
		Date:       time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	})

	c, rec := f.request(http.MethodPatch, "/api/v1/categories/"+category.ID.String(), `{"type":"income"}`)
	c.SetParamNames("id")
	c.SetParamValues(category.ID.String())
	setupAuthContext(c, userID)

	if err := handler.UpdateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDeleteCategory_InvalidID(t *testing.T) {
	f := newFixture()
	handler := NewCategoryHandler(f.categoryService)

	c, rec := f.request(http.MethodDelete, "/api/v1/categories/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	setupAuthContext(c, uuid.New())

	if err := handler.DeleteCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
