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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create and update transaction
// request bodies; updates replace the full field set
type TransactionRequest struct {
	CategoryID  string `json:"category"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID           string `json:"id"`
	CategoryID   string `json:"category"`
	CategoryName string `json:"categoryName,omitempty"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents one page of transactions in API responses
type PaginatedTransactionsResponse struct {
	Metadata domain.PageMetadata   `json:"metadata"`
	Data     []TransactionResponse `json:"data"`
}

// SummaryResponse represents the transaction summary in API responses
type SummaryResponse struct {
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Balance      string `json:"balance"`
}

func toTransactionResponse(transaction *domain.Transaction, categoryName string) TransactionResponse {
	return TransactionResponse{
		ID:           transaction.ID.String(),
		CategoryID:   transaction.CategoryID.String(),
		CategoryName: categoryName,
		Amount:       transaction.Amount.String(),
		Type:         string(transaction.Type),
		Description:  transaction.Description,
		Date:         transaction.Date.Format("2006-01-02"),
		CreatedAt:    transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    transaction.UpdatedAt.Format(time.RFC3339),
	}
}

func (r TransactionRequest) toInput(c echo.Context) (service.CreateTransactionInput, error) {
	categoryID, err := uuid.Parse(r.CategoryID)
	if err != nil {
		return service.CreateTransactionInput{}, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Must be a valid category id"},
		})
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return service.CreateTransactionInput{}, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return service.CreateTransactionInput{}, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	return service.CreateTransactionInput{
		CategoryID:  categoryID,
		Amount:      amount,
		Type:        domain.EntryType(r.Type),
		Description: r.Description,
		Date:        date,
	}, nil
}

// CreateTransaction records a new income or expense entry
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, parseErr := req.toInput(c)
	if parseErr != nil {
		return parseErr
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", transaction.ID.String()).Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction, ""))
}

// GetTransactions lists the user's transactions one page at a time
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	page, pageSize := parsePagination(c)

	transactions, err := h.transactionService.ListTransactions(userID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	response := PaginatedTransactionsResponse{
		Metadata: transactions.Metadata,
		Data:     make([]TransactionResponse, 0, len(transactions.Data)),
	}
	for _, transaction := range transactions.Data {
		response.Data = append(response.Data, toTransactionResponse(&transaction.Transaction, transaction.CategoryName))
	}
	return c.JSON(http.StatusOK, response)
}

// GetSummary returns the user's all-time totals
func (h *TransactionHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.transactionService.Summary(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, SummaryResponse{
		TotalIncome:  summary.TotalIncome.String(),
		TotalExpense: summary.TotalExpense.String(),
		Balance:      summary.Balance.String(),
	})
}

// UpdateTransaction replaces a transaction's fields and re-balances the
// affected budgets
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction id", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, parseErr := req.toInput(c)
	if parseErr != nil {
		return parseErr
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction, ""))
}

// DeleteTransaction removes a transaction, returning a deleted
// expense's amount to its budget
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction id", nil)
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", transactionID.String()).Msg("Transaction deleted")

	return c.JSON(http.StatusOK, map[string]string{"message": "Transaction deleted"})
}
