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
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	CategoryName string `json:"categoryName"`
	Type         string `json:"type"`
}

// UpdateCategoryRequest represents the update category request body
type UpdateCategoryRequest struct {
	CategoryName *string `json:"categoryName,omitempty"`
	Type         *string `json:"type,omitempty"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID           string `json:"id"`
	CategoryName string `json:"categoryName"`
	Type         string `json:"type"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:           category.ID.String(),
		CategoryName: category.Name,
		Type:         string(category.Type),
		CreatedAt:    category.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    category.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateCategory creates a new category for the authenticated user
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(userID, req.CategoryName, domain.EntryType(req.Type))
	if err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", category.ID.String()).Msg("Category created")

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories lists the user's categories, optionally filtered by type
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var entryType *domain.EntryType
	if v := c.QueryParam("type"); v != "" {
		parsed := domain.EntryType(v)
		if !parsed.Valid() {
			return respondError(c, domain.ErrInvalidEntryType)
		}
		entryType = &parsed
	}

	categories, err := h.categoryService.ListCategories(userID, entryType)
	if err != nil {
		return respondError(c, err)
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryResponse(category))
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateCategory patches a category's name and/or type
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category id", nil)
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var entryType *domain.EntryType
	if req.Type != nil {
		parsed := domain.EntryType(*req.Type)
		entryType = &parsed
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, req.CategoryName, entryType)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory removes an unreferenced category
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category id", nil)
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", categoryID.String()).Msg("Category deleted")

	return c.JSON(http.StatusOK, map[string]string{"message": "Category deleted"})
}
