package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://finance-tracker.dev/errors/validation"
	ErrorTypeNotFound     = "https://finance-tracker.dev/errors/not-found"
	ErrorTypeUnauthorized = "https://finance-tracker.dev/errors/unauthorized"
	ErrorTypeConflict     = "https://finance-tracker.dev/errors/conflict"
	ErrorTypeRateLimit    = "https://finance-tracker.dev/errors/rate-limit"
	ErrorTypeInternal     = "https://finance-tracker.dev/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewTooManyRequestsError creates a rate-limited error response
func NewTooManyRequestsError(c echo.Context, detail string) error {
	c.Response().Header().Set("Retry-After", "1")
	return c.JSON(http.StatusTooManyRequests, ProblemDetails{
		Type:     ErrorTypeRateLimit,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// validationDetail maps a validation sentinel to a field-level message,
// or returns nil when the error is not a validation failure
func validationDetail(err error) []ValidationError {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return []ValidationError{{Field: "name", Message: "Name is required"}}
	case errors.Is(err, domain.ErrNameTooLong):
		return []ValidationError{{Field: "name", Message: "Name must be 100 characters or less"}}
	case errors.Is(err, domain.ErrDescriptionRequired):
		return []ValidationError{{Field: "description", Message: "Description is required"}}
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return []ValidationError{{Field: "description", Message: "Description must be 255 characters or less"}}
	case errors.Is(err, domain.ErrInvalidAmount):
		return []ValidationError{{Field: "amount", Message: "Amount must be positive"}}
	case errors.Is(err, domain.ErrInvalidLimit):
		return []ValidationError{{Field: "limit", Message: "Limit must not be negative"}}
	case errors.Is(err, domain.ErrInvalidEntryType):
		return []ValidationError{{Field: "type", Message: "Type must be one of: income, expense"}}
	case errors.Is(err, domain.ErrInvalidMonth):
		return []ValidationError{{Field: "month", Message: "Month must be between 1 and 12"}}
	case errors.Is(err, domain.ErrInvalidDate):
		return []ValidationError{{Field: "date", Message: "Must be in YYYY-MM-DD format"}}
	case errors.Is(err, domain.ErrInvalidEmail):
		return []ValidationError{{Field: "email", Message: "Must be a valid email address"}}
	case errors.Is(err, domain.ErrPasswordTooShort):
		return []ValidationError{{Field: "password", Message: "Password must be at least 8 characters"}}
	}
	return nil
}

// respondError maps service errors to problem detail responses. Every
// handler funnels its service errors through here so the status map
// lives in one place.
func respondError(c echo.Context, err error) error {
	if fields := validationDetail(err); fields != nil {
		return NewValidationError(c, "Validation failed", fields)
	}

	switch {
	case errors.Is(err, domain.ErrNoFieldsToUpdate):
		return NewValidationError(c, "At least one field must be provided", nil)
	case errors.Is(err, domain.ErrInsufficientBudget):
		return NewValidationError(c, "You don't have enough budget for this transaction", nil)
	case errors.Is(err, domain.ErrCategoryInUse):
		return NewValidationError(c, "Category is being used in transactions or budgets", nil)
	case errors.Is(err, domain.ErrBudgetInUse):
		return NewValidationError(c, "Budget is being used in transactions", nil)

	case errors.Is(err, domain.ErrInvalidCredentials):
		return NewUnauthorizedError(c, "Invalid email or password")
	case errors.Is(err, domain.ErrSessionInvalid):
		return NewUnauthorizedError(c, "Session is invalid or expired, please log in again")

	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrNoBudgetForPeriod):
		return NewNotFoundError(c, "Please create a budget for this category first")
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")

	case errors.Is(err, domain.ErrUserExists):
		return NewConflictError(c, "Username is already taken")
	case errors.Is(err, domain.ErrEmailExists):
		return NewConflictError(c, "Email is already registered")
	case errors.Is(err, domain.ErrCategoryExists):
		return NewConflictError(c, "Category already exists")
	case errors.Is(err, domain.ErrBudgetExists):
		return NewConflictError(c, "A budget for this category and period already exists")

	case errors.Is(err, domain.ErrLockNotAcquired):
		return NewTooManyRequestsError(c, "Too many requests, please wait a moment and try again")
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled service error")
	return NewInternalError(c, "Something went wrong, please try again later")
}

// parsePagination reads page and pageSize query parameters with
// defaults of 1 and 10, capping pageSize at 100
func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 10
	if v := c.QueryParam("page"); v != "" {
		if parsed, err := parsePositiveInt(v); err == nil {
			page = parsed
		}
	}
	if v := c.QueryParam("pageSize"); v != "" {
		if parsed, err := parsePositiveInt(v); err == nil {
			pageSize = parsed
		}
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func parsePositiveInt(v string) (int, error) {
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if parsed < 1 {
		return 0, strconv.ErrRange
	}
	return parsed, nil
}
