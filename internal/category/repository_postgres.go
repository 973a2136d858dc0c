package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wichananm65/bloom-aura/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	categoryColumns = `id, name, slug, description, created_at, updated_at`

	listCategoriesQuery = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name`
	getCategoryQuery    = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	insertCategoryQuery = `INSERT INTO categories (name, slug, description) VALUES ($1, $2, $3) RETURNING ` + categoryColumns
	updateCategoryQuery = `UPDATE categories SET name = $1, slug = $2, description = $3, updated_at = NOW() WHERE id = $4 RETURNING ` + categoryColumns
	deleteCategoryQuery = `DELETE FROM categories WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, getCategoryQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c Category) (Category, error) {
	created, err := scanCategory(r.db.QueryRowContext(ctx, insertCategoryQuery, c.Name, c.Slug, c.Description))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Category{}, ErrDuplicate
		}
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, c Category) (Category, error) {
	updated, err := scanCategory(r.db.QueryRowContext(ctx, updateCategoryQuery, c.Name, c.Slug, c.Description, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Category{}, ErrNotFound
	case database.IsUniqueViolation(err):
		return Category{}, ErrDuplicate
	case err != nil:
		return Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	return updated, nil
}

// Delete leaves products in place; the foreign key nulls their category.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, deleteCategoryQuery, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(s rowScanner) (Category, error) {
	var c Category
	err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
