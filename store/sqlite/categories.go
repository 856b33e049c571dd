package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/warp/library-engine/catalog"
)

// =============================================================================
// CATEGORY STORE (catalog.CategoryStore interface)
// =============================================================================

type categoryRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
}

func (r categoryRow) toCategory() (*catalog.Category, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &catalog.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   createdAt,
	}, nil
}

// CreateCategory inserts a category. Maps the name uniqueness constraint
// to catalog.ErrDuplicateCategory.
func (s *Store) CreateCategory(ctx context.Context, category *catalog.Category) error {
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.ext.ExecContext(ctx, query,
		category.ID, category.Name, category.Description, fmtTime(category.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err, "categories.name") {
			return catalog.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategory returns a category by id.
func (s *Store) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	var row categoryRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT * FROM categories WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return row.toCategory()
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var rows []categoryRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, `SELECT * FROM categories ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]catalog.Category, 0, len(rows))
	for _, r := range rows {
		c, err := r.toCategory()
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, nil
}

// UpdateCategory rewrites name and description.
func (s *Store) UpdateCategory(ctx context.Context, category *catalog.Category) error {
	query := `UPDATE categories SET name = ?, description = ? WHERE id = ?`
	res, err := s.ext.ExecContext(ctx, query, category.Name, category.Description, category.ID)
	if err != nil {
		if isUniqueConstraintError(err, "categories.name") {
			return catalog.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.ext.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}
