package postgres

import (
	"context"
	"errors"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, name, type, created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, type)
		 VALUES ($1, $2, $3)
		 RETURNING `+categoryColumns,
		category.UserID, category.Name, category.Type)

	created, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a category owned by the user
func (r *CategoryRepository) GetByID(userID, id uuid.UUID) (*domain.Category, error) {
	ctx := context.Background()
	category, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// List returns the user's categories, optionally filtered by type
func (r *CategoryRepository) List(userID uuid.UUID, entryType *domain.EntryType) ([]*domain.Category, error) {
	ctx := context.Background()

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1`
	args := []any{userID}
	if entryType != nil {
		query += ` AND type = $2`
		args = append(args, *entryType)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

// Update patches the category's name and/or type
func (r *CategoryRepository) Update(userID, id uuid.UUID, name *string, entryType *domain.EntryType) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE categories
		 SET name = COALESCE($3, name),
		     type = COALESCE($4, type),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+categoryColumns,
		id, userID, name, (*string)(entryType))

	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the category and returns the deleted row
func (r *CategoryRepository) Delete(userID, id uuid.UUID) (*domain.Category, error) {
	ctx := context.Background()
	deleted, err := scanCategory(r.pool.QueryRow(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2
		 RETURNING `+categoryColumns,
		id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return deleted, nil
}

// Exists reports whether the user owns a category with the given id
func (r *CategoryRepository) Exists(userID, id uuid.UUID) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)`,
		id, userID).Scan(&exists)
	return exists, err
}

// ExistsDuplicate reports whether another category matches name and/or type
func (r *CategoryRepository) ExistsDuplicate(userID, excludeID uuid.UUID, name *string, entryType *domain.EntryType) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE user_id = $1
			  AND id <> $2
			  AND ($3::text IS NULL OR name = $3)
			  AND ($4::text IS NULL OR type = $4)
		)`,
		userID, excludeID, name, (*string)(entryType)).Scan(&exists)
	return exists, err
}
