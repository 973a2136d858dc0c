package customer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound           = errors.New("customer not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (Customer, error)
	GetByEmail(ctx context.Context, email string) (Customer, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	UpdateProfile(ctx context.Context, id int64, fullName, phone string) (Customer, error)
}

// InMemoryRepository is used by tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Customer
	nextID  int64
}

func NewInMemoryRepository(seed []Customer) *InMemoryRepository {
	r := &InMemoryRepository{storage: append([]Customer(nil), seed...), nextID: 1}
	for _, c := range seed {
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, limit, offset int) ([]Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if offset >= len(r.storage) {
		return []Customer{}, nil
	}
	end := min(offset+limit, len(r.storage))
	return append([]Customer{}, r.storage[offset:end]...), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id {
			return c, nil
		}
	}
	return Customer{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return Customer{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, c Customer) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if strings.EqualFold(existing.Email, c.Email) {
			return Customer{}, ErrEmailExists
		}
	}
	c.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.storage = append(r.storage, c)
	return c, nil
}

func (r *InMemoryRepository) UpdateProfile(_ context.Context, id int64, fullName, phone string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].FullName = fullName
			r.storage[i].Phone = phone
			r.storage[i].UpdatedAt = time.Now().UTC()
			return r.storage[i], nil
		}
	}
	return Customer{}, ErrNotFound
}
