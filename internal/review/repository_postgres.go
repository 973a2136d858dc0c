package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/wichananm65/bloom-aura/internal/database"
)

// PostgresRepository maps rows onto Review through sqlx struct scanning.
type PostgresRepository struct {
	db *sqlx.DB
}

const (
	reviewSelect = `
		SELECT r.id, r.product_id, r.customer_id, c.full_name AS author,
		       r.rating, r.comment, r.is_approved, r.created_at
		FROM reviews r
		JOIN customers c ON c.id = r.customer_id`

	listApprovedQuery = reviewSelect + ` WHERE r.product_id = $1 AND r.is_approved ORDER BY r.id DESC`
	listAllQuery      = reviewSelect + ` ORDER BY r.id DESC`
	listPendingQuery  = reviewSelect + ` WHERE NOT r.is_approved ORDER BY r.id DESC`
	insertReviewQuery = `
		INSERT INTO reviews (product_id, customer_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, product_id, customer_id, rating, comment, is_approved, created_at`
	approveReviewQuery = `
		UPDATE reviews SET is_approved = TRUE WHERE id = $1
		RETURNING id, product_id, customer_id, rating, comment, is_approved, created_at`
	deleteReviewQuery = `DELETE FROM reviews WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: sqlx.NewDb(db, database.DriverName)}
}

func (r *PostgresRepository) ListApproved(ctx context.Context, productID int64) ([]Review, error) {
	out := make([]Review, 0)
	if err := r.db.SelectContext(ctx, &out, listApprovedQuery, productID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListForModeration(ctx context.Context, pendingOnly bool) ([]Review, error) {
	query := listAllQuery
	if pendingOnly {
		query = listPendingQuery
	}
	out := make([]Review, 0)
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rv Review) (Review, error) {
	var out Review
	err := r.db.GetContext(ctx, &out, insertReviewQuery, rv.ProductID, rv.CustomerID, rv.Rating, rv.Comment)
	switch {
	case database.IsUniqueViolation(err):
		return Review{}, ErrAlreadyReviewed
	case database.IsForeignKeyViolation(err):
		return Review{}, ErrProductNotFound
	case err != nil:
		return Review{}, fmt.Errorf("insert review: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Approve(ctx context.Context, id int64) (Review, error) {
	var out Review
	err := r.db.GetContext(ctx, &out, approveReviewQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	if err != nil {
		return Review{}, fmt.Errorf("approve review: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReviewQuery, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
