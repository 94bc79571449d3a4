package handler

import (
	"net/http"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/middleware"
	"github.com/Rexomon/Finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	CategoryID string `json:"category"`
	Limit      string `json:"limit"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	CategoryID *string `json:"category,omitempty"`
	Limit      *string `json:"limit,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID           string `json:"id"`
	CategoryID   string `json:"category"`
	CategoryName string `json:"categoryName,omitempty"`
	Limit        string `json:"limit"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// PaginatedBudgetsResponse represents one page of budgets in API responses
type PaginatedBudgetsResponse struct {
	Metadata domain.PageMetadata `json:"metadata"`
	Data     []BudgetResponse    `json:"data"`
}

func toBudgetResponse(budget *domain.Budget, categoryName string) BudgetResponse {
	return BudgetResponse{
		ID:           budget.ID.String(),
		CategoryID:   budget.CategoryID.String(),
		CategoryName: categoryName,
		Limit:        budget.Limit.String(),
		Month:        budget.Month,
		Year:         budget.Year,
		CreatedAt:    budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    budget.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateBudget creates a budget for one category and period
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Must be a valid category id"},
		})
	}

	limit, err := decimal.NewFromString(req.Limit)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "limit", Message: "Must be a valid decimal number"},
		})
	}

	budget, err := h.budgetService.CreateBudget(userID, service.CreateBudgetInput{
		CategoryID: categoryID,
		Limit:      limit,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", userID.String()).Str("budget_id", budget.ID.String()).Msg("Budget created")

	return c.JSON(http.StatusCreated, toBudgetResponse(budget, ""))
}

// GetBudgets lists the user's budgets one page at a time
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	page, pageSize := parsePagination(c)

	budgets, err := h.budgetService.ListBudgets(userID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	response := PaginatedBudgetsResponse{
		Metadata: budgets.Metadata,
		Data:     make([]BudgetResponse, 0, len(budgets.Data)),
	}
	for _, budget := range budgets.Data {
		response.Data = append(response.Data, toBudgetResponse(&budget.Budget, budget.CategoryName))
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateBudget patches a budget's fields
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)

	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget id", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var patch domain.BudgetPatch
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "category", Message: "Must be a valid category id"},
			})
		}
		patch.CategoryID = &categoryID
	}
	if req.Limit != nil {
		limit, err := decimal.NewFromString(*req.Limit)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "limit", Message: "Must be a valid decimal number"},
			})
		}
		patch.Limit = &limit
	}
	patch.Month = req.Month
	patch.Year = req.Year

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, patch)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget, ""))
}

// DeleteBudget removes a budget with no recorded transactions
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)

	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget id", nil)
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", userID.String()).Str("budget_id", budgetID.String()).Msg("Budget deleted")

	return c.JSON(http.StatusOK, map[string]string{"message": "Budget deleted"})
}
