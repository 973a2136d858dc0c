package customer

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
	customerColumns = `id, email, password_hash, full_name, phone, created_at, updated_at`

	listCustomersQuery      = `SELECT ` + customerColumns + ` FROM customers ORDER BY id LIMIT $1 OFFSET $2`
	getCustomerByIDQuery    = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	getCustomerByEmailQuery = `SELECT ` + customerColumns + ` FROM customers WHERE lower(email) = lower($1)`
	insertCustomerQuery     = `
		INSERT INTO customers (email, password_hash, full_name, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + customerColumns
	updateProfileQuery = `
		UPDATE customers SET full_name = $1, phone = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + customerColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]Customer, error) {
	rows, err := r.db.QueryContext(ctx, listCustomersQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Customer, error) {
	return r.getOne(ctx, getCustomerByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Customer, error) {
	return r.getOne(ctx, getCustomerByEmailQuery, email)
}

func (r *PostgresRepository) Create(ctx context.Context, c Customer) (Customer, error) {
	created, err := scanCustomer(r.db.QueryRowContext(ctx, insertCustomerQuery, c.Email, c.PasswordHash, c.FullName, c.Phone))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Customer{}, ErrEmailExists
		}
		return Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, fullName, phone string) (Customer, error) {
	return r.getOne(ctx, updateProfileQuery, fullName, phone, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, fmt.Errorf("query customer: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s rowScanner) (Customer, error) {
	var c Customer
	err := s.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FullName, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
