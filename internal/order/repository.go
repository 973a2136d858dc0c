package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrStatusConflict    = errors.New("order status changed, reload and try again")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrInvalidStatus     = errors.New("unknown order status")
)

// Repository reads orders and moves them through their lifecycle. Orders are
// written by checkout.
type Repository interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	GetForCustomer(ctx context.Context, id, customerID int64) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	// UpdateStatus applies to only if the order is still in from. Moving to
	// cancelled returns every line's quantity to stock in the same transaction.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (Order, error)
}

// Restocker receives quantities released by a cancellation.
type Restocker func(productID int64, qty int)

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Order
	restock Restocker
}

func NewInMemoryRepository(seed []Order, restock Restocker) *InMemoryRepository {
	return &InMemoryRepository{storage: append([]Order(nil), seed...), restock: restock}
}

// Add stores an order as checkout would.
func (r *InMemoryRepository) Add(o Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = append(r.storage, o)
}

func (r *InMemoryRepository) ListByCustomer(_ context.Context, customerID int64) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.storage {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	newestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) GetForCustomer(ctx context.Context, id, customerID int64) (Order, error) {
	o, err := r.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.CustomerID != customerID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int64) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.storage {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Order, error) {
	f = f.normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]Order, 0)
	for _, o := range r.storage {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.CustomerID > 0 && o.CustomerID != f.CustomerID {
			continue
		}
		o.Lines = nil
		matched = append(matched, o)
	}
	newestFirst(matched)
	if f.Offset >= len(matched) {
		return []Order{}, nil
	}
	end := min(f.Offset+f.Limit, len(matched))
	return matched[f.Offset:end], nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id int64, from, to Status) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID != id {
			continue
		}
		if r.storage[i].Status != from {
			return Order{}, ErrStatusConflict
		}
		r.storage[i].Status = to
		r.storage[i].UpdatedAt = time.Now().UTC()
		if to == StatusCancelled && r.restock != nil {
			for _, l := range r.storage[i].Lines {
				r.restock(l.ProductID, l.Quantity)
			}
		}
		return r.storage[i], nil
	}
	return Order{}, ErrNotFound
}

func newestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
