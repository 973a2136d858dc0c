package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/wichananm65/bloom-aura/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

const (
	productColumns = `id, category_id, name, description, price, stock, image_url, is_active, created_at, updated_at`

	getProductByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	insertProductQuery  = `
		INSERT INTO products (category_id, name, description, price, stock, image_url, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING ` + productColumns
	updateProductQuery = `
		UPDATE products
		SET category_id = $1,
			name = $2,
			description = $3,
			price = $4,
			is_active = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING ` + productColumns
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
	adjustStockQuery   = `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING ` + productColumns
	setImageQuery = `UPDATE products SET image_url = $1, updated_at = NOW() WHERE id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// List builds the catalog query from the filter; only the predicates in use
// end up in the WHERE clause.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	f = f.normalize()
	q := r.sb.Select(productColumns).From("products")
	if !f.IncludeInactive {
		q = q.Where(sq.Eq{"is_active": true})
	}
	if f.CategoryID > 0 {
		q = q.Where(sq.Eq{"category_id": f.CategoryID})
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		q = q.Where(sq.Or{sq.ILike{"name": pattern}, sq.ILike{"description": pattern}})
	}
	q = q.OrderBy("id").Limit(uint64(f.Limit)).Offset(uint64(f.Offset))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	created, err := scanProduct(r.db.QueryRowContext(ctx, insertProductQuery,
		nullableID(p.CategoryID),
		p.Name,
		p.Description,
		p.Price,
		p.Stock,
		p.ImageURL,
		p.Active,
	))
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, p Product) (Product, error) {
	updated, err := scanProduct(r.db.QueryRowContext(ctx, updateProductQuery,
		nullableID(p.CategoryID),
		p.Name,
		p.Description,
		p.Price,
		p.Active,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies delta in a single conditional statement so restocking
// cannot race a checkout into negative stock.
func (r *PostgresRepository) AdjustStock(ctx context.Context, id int64, delta int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, adjustStockQuery, delta, id))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return Product{}, getErr
		}
		return Product{}, ErrInsufficientStock
	}
	if err != nil {
		return Product{}, fmt.Errorf("adjust stock for product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) SetImage(ctx context.Context, id int64, url string) error {
	result, err := r.db.ExecContext(ctx, setImageQuery, url, id)
	if err != nil {
		return fmt.Errorf("set image for product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var categoryID sql.NullInt64
	if err := scanner.Scan(
		&p.ID,
		&categoryID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.ImageURL,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	return p, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
