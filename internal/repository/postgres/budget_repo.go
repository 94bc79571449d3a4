package postgres

import (
	"context"
	"errors"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, user_id, category_id, limit_amount::text, month, year, created_at, updated_at`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var limit string
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &limit, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Limit, err = decimal.NewFromString(limit)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persists a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, category_id, limit_amount, month, year)
		 VALUES ($1, $2, $3::numeric, $4, $5)
		 RETURNING `+budgetColumns,
		budget.UserID, budget.CategoryID, budget.Limit.String(), budget.Month, budget.Year)

	created, err := scanBudget(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrBudgetExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a budget owned by the user
func (r *BudgetRepository) GetByID(userID, id uuid.UUID) (*domain.Budget, error) {
	ctx := context.Background()
	budget, err := scanBudget(r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`,
		id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// List returns one page of the user's budgets with their categories,
// newest period first
func (r *BudgetRepository) List(userID uuid.UUID, page, pageSize int) (*domain.BudgetPage, error) {
	ctx := context.Background()

	var totalCount int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM budgets WHERE user_id = $1`, userID).Scan(&totalCount)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.user_id, b.category_id, b.limit_amount::text, b.month, b.year,
		        b.created_at, b.updated_at, c.name, c.type
		 FROM budgets b
		 JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = $1
		 ORDER BY b.year DESC, b.month DESC, c.name
		 LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := make([]*domain.BudgetWithCategory, 0)
	for rows.Next() {
		var b domain.BudgetWithCategory
		var limit string
		err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &limit, &b.Month, &b.Year,
			&b.CreatedAt, &b.UpdatedAt, &b.CategoryName, &b.CategoryType)
		if err != nil {
			return nil, err
		}
		if b.Limit, err = decimal.NewFromString(limit); err != nil {
			return nil, err
		}
		data = append(data, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.BudgetPage{
		Metadata: domain.NewPageMetadata(totalCount, page, pageSize),
		Data:     data,
	}, nil
}

// Update patches the budget's fields
func (r *BudgetRepository) Update(userID, id uuid.UUID, patch domain.BudgetPatch) (*domain.Budget, error) {
	ctx := context.Background()

	var limit *string
	if patch.Limit != nil {
		s := patch.Limit.String()
		limit = &s
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE budgets
		 SET category_id = COALESCE($3, category_id),
		     limit_amount = COALESCE($4::numeric, limit_amount),
		     month = COALESCE($5, month),
		     year = COALESCE($6, year),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+budgetColumns,
		id, userID, patch.CategoryID, limit, patch.Month, patch.Year)

	updated, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		if isPgUniqueViolation(err) {
			return nil, domain.ErrBudgetExists
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the budget
func (r *BudgetRepository) Delete(userID, id uuid.UUID) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// Exists reports whether a budget other than excludeID occupies the
// (user, category, month, year) slot
func (r *BudgetRepository) Exists(userID, categoryID uuid.UUID, month, year int, excludeID uuid.UUID) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM budgets
			WHERE user_id = $1 AND category_id = $2 AND month = $3 AND year = $4 AND id <> $5
		)`,
		userID, categoryID, month, year, excludeID).Scan(&exists)
	return exists, err
}

// ExistsForCategory reports whether any budget references the category
func (r *BudgetRepository) ExistsForCategory(userID, categoryID uuid.UUID) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM budgets WHERE user_id = $1 AND category_id = $2)`,
		userID, categoryID).Scan(&exists)
	return exists, err
}

// AdjustLimit applies a single atomic conditional update to the
// budget's limit. The predicate rides in the UPDATE itself, so two
// concurrent deductions can never both pass a stale read of the
// balance: whichever commits second re-evaluates limit_amount >= amount
// against the committed value.
func (r *BudgetRepository) AdjustLimit(userID, categoryID uuid.UUID, month, year int, amount decimal.Decimal, direction domain.AdjustDirection) (bool, error) {
	ctx := context.Background()

	var tag pgconn.CommandTag
	var err error
	if direction == domain.AdjustDeduct {
		tag, err = r.pool.Exec(ctx,
			`UPDATE budgets
			 SET limit_amount = limit_amount - $5::numeric, updated_at = now()
			 WHERE user_id = $1 AND category_id = $2 AND month = $3 AND year = $4
			   AND limit_amount >= $5::numeric`,
			userID, categoryID, month, year, amount.String())
	} else {
		tag, err = r.pool.Exec(ctx,
			`UPDATE budgets
			 SET limit_amount = limit_amount + $5::numeric, updated_at = now()
			 WHERE user_id = $1 AND category_id = $2 AND month = $3 AND year = $4`,
			userID, categoryID, month, year, amount.String())
	}
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
