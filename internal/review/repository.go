package review

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	ErrProductNotFound = errors.New("product not found")
)

type Repository interface {
	ListApproved(ctx context.Context, productID int64) ([]Review, error)
	ListForModeration(ctx context.Context, pendingOnly bool) ([]Review, error)
	Create(ctx context.Context, r Review) (Review, error)
	Approve(ctx context.Context, id int64) (Review, error)
	Delete(ctx context.Context, id int64) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Review
	nextID  int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) ListApproved(_ context.Context, productID int64) ([]Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Review, 0)
	for _, rv := range r.storage {
		if rv.ProductID == productID && rv.Approved {
			out = append(out, rv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) ListForModeration(_ context.Context, pendingOnly bool) ([]Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Review, 0)
	for _, rv := range r.storage {
		if pendingOnly && rv.Approved {
			continue
		}
		out = append(out, rv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, rv Review) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if existing.ProductID == rv.ProductID && existing.CustomerID == rv.CustomerID {
			return Review{}, ErrAlreadyReviewed
		}
	}
	rv.ID = r.nextID
	r.nextID++
	rv.Approved = false
	rv.CreatedAt = time.Now().UTC()
	r.storage = append(r.storage, rv)
	return rv, nil
}

func (r *InMemoryRepository) Approve(_ context.Context, id int64) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Approved = true
			return r.storage[i], nil
		}
	}
	return Review{}, ErrNotFound
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
