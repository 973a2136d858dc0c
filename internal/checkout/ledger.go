package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wichananm65/bloom-aura/internal/order"
)

// Ledger opens the transaction an order is written in.
type Ledger interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is one open order transaction. Nothing it writes is visible to
// other transactions before Commit.
type LedgerTx interface {
	InsertOrder(ctx context.Context, o order.Order) (int64, error)
	InsertLine(ctx context.Context, orderID int64, l order.Line) error
	// DecrementStock takes qty from the product only if at least qty is left,
	// and reports whether it did.
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
	Commit() error
	Rollback() error
}

var (
	ErrTxDone         = errors.New("transaction already committed or rolled back")
	errUnknownProduct = errors.New("order line references an unknown product")
	errUnknownOrder   = errors.New("order line references an unknown order")
)

// InMemoryLedger keeps stock and orders in memory with the same
// check-and-set semantics as the SQL ledger. Transactions are serialized,
// like two writers contending for the same product rows.
type InMemoryLedger struct {
	sem chan struct{}

	mu     sync.RWMutex
	stock  map[int64]int
	orders map[int64]order.Order
	nextID int64
}

func NewInMemoryLedger(stock map[int64]int) *InMemoryLedger {
	l := &InMemoryLedger{
		sem:    make(chan struct{}, 1),
		stock:  make(map[int64]int, len(stock)),
		orders: make(map[int64]order.Order),
		nextID: 1,
	}
	for id, n := range stock {
		l.stock[id] = n
	}
	return l
}

func (l *InMemoryLedger) Begin(ctx context.Context) (LedgerTx, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &memTx{ledger: l, taken: make(map[int64]int)}, nil
}

// Stock returns the committed stock of a product.
func (l *InMemoryLedger) Stock(productID int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stock[productID]
}

// Orders returns every committed order with its lines.
func (l *InMemoryLedger) Orders() []order.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]order.Order, 0, len(l.orders))
	for id := int64(1); id < l.nextID; id++ {
		if o, ok := l.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Restock returns quantity to a product; cancelled orders use it.
func (l *InMemoryLedger) Restock(productID int64, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[productID] += qty
}

type memTx struct {
	ledger *InMemoryLedger
	order  *order.Order
	taken  map[int64]int
	done   bool
}

func (t *memTx) InsertOrder(ctx context.Context, o order.Order) (int64, error) {
	if err := t.usable(ctx); err != nil {
		return 0, err
	}
	t.ledger.mu.Lock()
	o.ID = t.ledger.nextID
	t.ledger.nextID++
	t.ledger.mu.Unlock()

	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	o.Lines = nil
	t.order = &o
	return o.ID, nil
}

func (t *memTx) InsertLine(ctx context.Context, orderID int64, l order.Line) error {
	if err := t.usable(ctx); err != nil {
		return err
	}
	if t.order == nil || t.order.ID != orderID {
		return errUnknownOrder
	}
	t.ledger.mu.RLock()
	_, known := t.ledger.stock[l.ProductID]
	t.ledger.mu.RUnlock()
	if !known {
		return errUnknownProduct
	}
	t.order.Lines = append(t.order.Lines, l)
	return nil
}

func (t *memTx) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	if err := t.usable(ctx); err != nil {
		return false, err
	}
	t.ledger.mu.RLock()
	available, known := t.ledger.stock[productID]
	t.ledger.mu.RUnlock()
	if !known || available-t.taken[productID] < qty {
		return false, nil
	}
	t.taken[productID] += qty
	return true, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.release()

	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	for id, n := range t.taken {
		t.ledger.stock[id] -= n
	}
	if t.order != nil {
		t.ledger.orders[t.order.ID] = *t.order
	}
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.release()
	return nil
}

func (t *memTx) usable(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	return ctx.Err()
}

func (t *memTx) release() { <-t.ledger.sem }
