package category

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrDuplicate = errors.New("a category with this name already exists")
)

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, id int64, c Category) (Category, error)
	Delete(ctx context.Context, id int64) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Category
	nextID  int64
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{storage: append([]Category(nil), seed...), nextID: 1}
	for _, c := range seed {
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Category{}, r.storage...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(c, 0) {
		return Category{}, ErrDuplicate
	}
	c.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.storage = append(r.storage, c)
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int64, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID != id {
			continue
		}
		if r.taken(c, id) {
			return Category{}, ErrDuplicate
		}
		c.ID = id
		c.CreatedAt = r.storage[i].CreatedAt
		c.UpdatedAt = time.Now().UTC()
		r.storage[i] = c
		return c, nil
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// taken mirrors the UNIQUE constraints on name and slug.
func (r *InMemoryRepository) taken(c Category, except int64) bool {
	for _, existing := range r.storage {
		if existing.ID != except && (existing.Name == c.Name || existing.Slug == c.Slug) {
			return true
		}
	}
	return false
}
