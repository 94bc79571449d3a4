package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, category_id, amount::text, type, description, date, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount string
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &amount, &t.Type, &t.Description,
		&t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persists a new transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()
	return scanTransaction(r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, category_id, amount, type, description, date)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6)
		 RETURNING `+transactionColumns,
		transaction.UserID, transaction.CategoryID, transaction.Amount.String(),
		transaction.Type, transaction.Description, transaction.Date))
}

// GetByID retrieves a transaction owned by the user
func (r *TransactionRepository) GetByID(userID, id uuid.UUID) (*domain.Transaction, error) {
	ctx := context.Background()
	transaction, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// List returns one page of the user's transactions with their category
// names, newest first
func (r *TransactionRepository) List(userID uuid.UUID, page, pageSize int) (*domain.TransactionPage, error) {
	ctx := context.Background()

	var totalCount int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&totalCount)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.user_id, t.category_id, t.amount::text, t.type, t.description,
		        t.date, t.created_at, t.updated_at, c.name
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = $1
		 ORDER BY t.date DESC
		 LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := make([]*domain.TransactionWithCategory, 0)
	for rows.Next() {
		var t domain.TransactionWithCategory
		var amount string
		err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &amount, &t.Type, &t.Description,
			&t.Date, &t.CreatedAt, &t.UpdatedAt, &t.CategoryName)
		if err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		data = append(data, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.TransactionPage{
		Metadata: domain.NewPageMetadata(totalCount, page, pageSize),
		Data:     data,
	}, nil
}

// Update replaces the transaction's mutable fields
func (r *TransactionRepository) Update(userID, id uuid.UUID, fields domain.TransactionUpdate) (*domain.Transaction, error) {
	ctx := context.Background()
	updated, err := scanTransaction(r.pool.QueryRow(ctx,
		`UPDATE transactions
		 SET category_id = $3, amount = $4::numeric, type = $5, description = $6,
		     date = $7, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+transactionColumns,
		id, userID, fields.CategoryID, fields.Amount.String(), fields.Type,
		fields.Description, fields.Date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the transaction and returns the deleted row
func (r *TransactionRepository) Delete(userID, id uuid.UUID) (*domain.Transaction, error) {
	ctx := context.Background()
	deleted, err := scanTransaction(r.pool.QueryRow(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2
		 RETURNING `+transactionColumns,
		id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return deleted, nil
}

// Exists reports whether any transaction matches the filter
func (r *TransactionRepository) Exists(userID uuid.UUID, filter domain.TransactionFilter) (bool, error) {
	ctx := context.Background()

	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND date < $%d`, len(args))
	}
	query += `)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, args...).Scan(&exists)
	return exists, err
}

// Summary aggregates income and expense totals across the user's transactions
func (r *TransactionRepository) Summary(userID uuid.UUID) (*domain.TransactionSummary, error) {
	ctx := context.Background()

	var income, expense string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)::text,
		        COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)::text
		 FROM transactions WHERE user_id = $1`,
		userID).Scan(&income, &expense)
	if err != nil {
		return nil, err
	}

	summary := &domain.TransactionSummary{}
	if summary.TotalIncome, err = decimal.NewFromString(income); err != nil {
		return nil, err
	}
	if summary.TotalExpense, err = decimal.NewFromString(expense); err != nil {
		return nil, err
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}
