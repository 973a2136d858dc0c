package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/bloom-aura/internal/database"
)

var (
	ErrNotFound           = errors.New("admin not found")
	ErrEmailExists        = errors.New("admin email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Admin is a back-office operator. Admins are seeded, never self-registered.
type Admin struct {
	ID           int64     `json:"adminId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Repository interface {
	GetByEmail(ctx context.Context, email string) (Admin, error)
	Create(ctx context.Context, a Admin) (Admin, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Admin
	nextID  int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.storage {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return Admin{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, a Admin) (Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if strings.EqualFold(existing.Email, a.Email) {
			return Admin{}, ErrEmailExists
		}
	}
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now().UTC()
	r.storage = append(r.storage, a)
	return a, nil
}

type PostgresRepository struct {
	db *sql.DB
}

const (
	getAdminByEmailQuery = `SELECT id, email, password_hash, name, created_at FROM admins WHERE lower(email) = lower($1)`
	insertAdminQuery     = `
		INSERT INTO admins (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, name, created_at`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := r.db.QueryRowContext(ctx, getAdminByEmailQuery, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	if err != nil {
		return Admin{}, fmt.Errorf("query admin: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a Admin) (Admin, error) {
	var out Admin
	err := r.db.QueryRowContext(ctx, insertAdminQuery, a.Email, a.PasswordHash, a.Name).
		Scan(&out.ID, &out.Email, &out.PasswordHash, &out.Name, &out.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Admin{}, ErrEmailExists
		}
		return Admin{}, fmt.Errorf("insert admin: %w", err)
	}
	return out, nil
}
