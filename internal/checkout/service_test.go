package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wichananm65/bloom-aura/internal/cart"
	"github.com/wichananm65/bloom-aura/internal/order"
)

var validDelivery = Delivery{
	Name:    "Asha Rao",
	Address: "12 MG Road",
	City:    "Pune",
	Pincode: "411001",
	Phone:   "9876543210",
}

func nullLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

// spyLedger wraps a real ledger, records rollbacks and can fail chosen steps.
type spyLedger struct {
	Ledger
	mu        sync.Mutex
	begins    int
	rollbacks int
	failOn    string
	block     bool
}

func (s *spyLedger) Begin(ctx context.Context) (LedgerTx, error) {
	s.mu.Lock()
	s.begins++
	s.mu.Unlock()
	if s.failOn == "begin" {
		return nil, errors.New("connection refused")
	}
	tx, err := s.Ledger.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &spyTx{LedgerTx: tx, spy: s}, nil
}

type spyTx struct {
	LedgerTx
	spy *spyLedger
}

func (t *spyTx) InsertOrder(ctx context.Context, o order.Order) (int64, error) {
	if t.spy.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return t.LedgerTx.InsertOrder(ctx, o)
}

func (t *spyTx) InsertLine(ctx context.Context, orderID int64, l order.Line) error {
	if t.spy.failOn == "line" {
		return errors.New("constraint violation")
	}
	return t.LedgerTx.InsertLine(ctx, orderID, l)
}

func (t *spyTx) Rollback() error {
	t.spy.mu.Lock()
	t.spy.rollbacks++
	t.spy.mu.Unlock()
	return t.LedgerTx.Rollback()
}

type failingClearer struct{}

func (failingClearer) Clear(context.Context, int64) error { return errors.New("redis down") }

func TestPlaceOrder_CommitsEverything(t *testing.T) {
	ledger := NewInMemoryLedger(map[int64]int{1: 5, 2: 3})
	store := cart.NewInMemoryStore()
	svc := NewService(ledger, store, nullLogger(), time.Second)
	ctx := context.Background()

	lines := []cart.Line{
		{ProductID: 1, Name: "Red Rose Bouquet", UnitPrice: 300, Quantity: 2},
		{ProductID: 2, Name: "White Lily Vase", UnitPrice: 400, Quantity: 1},
	}
	require.NoError(t, store.Save(ctx, 7, cart.Snapshot{Lines: lines, PromoApplied: true}))

	id, err := svc.PlaceOrder(ctx, 7, lines, true, validDelivery, order.PaymentUPI)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	orders := ledger.Orders()
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, int64(7), o.CustomerID)
	assert.Equal(t, order.PaymentUPI, o.PaymentMethod)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, int64(1), o.Lines[0].ProductID, "lines keep cart order")
	assert.Equal(t, int64(1000), o.Subtotal)
	assert.Equal(t, int64(0), o.DeliveryFee)
	assert.Equal(t, int64(100), o.Discount)
	assert.Equal(t, int64(900), o.Total)

	assert.Equal(t, 3, ledger.Stock(1))
	assert.Equal(t, 2, ledger.Stock(2))

	snap, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.False(t, snap.PromoApplied)
}

func TestPlaceOrder_Totals(t *testing.T) {
	cases := []struct {
		name      string
		lines     []cart.Line
		promo     bool
		fee, disc int64
		total     int64
	}{
		{"free delivery above threshold", []cart.Line{{ProductID: 1, UnitPrice: 1000, Quantity: 1}}, false, 0, 0, 1000},
		{"delivery fee at threshold", []cart.Line{{ProductID: 1, UnitPrice: 999, Quantity: 1}}, false, 80, 0, 1079},
		{"fee without promo", []cart.Line{{ProductID: 1, UnitPrice: 500, Quantity: 1}}, false, 80, 0, 580},
		{"fee with promo", []cart.Line{{ProductID: 1, UnitPrice: 500, Quantity: 1}}, true, 80, 50, 530},
		{"promo rounds half up", []cart.Line{{ProductID: 1, UnitPrice: 125, Quantity: 1}}, true, 80, 13, 192},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := NewInMemoryLedger(map[int64]int{1: 10})
			svc := NewService(ledger, nil, nullLogger(), 0)

			_, err := svc.PlaceOrder(context.Background(), 1, tc.lines, tc.promo, validDelivery, order.PaymentCOD)
			require.NoError(t, err)
			o := ledger.Orders()[0]
			assert.Equal(t, tc.fee, o.DeliveryFee)
			assert.Equal(t, tc.disc, o.Discount)
			assert.Equal(t, tc.total, o.Total)
			assert.Equal(t, o.Subtotal+o.DeliveryFee-o.Discount, o.Total)
		})
	}
}

func TestPlaceOrder_ValidationOpensNoTransaction(t *testing.T) {
	lines := []cart.Line{{ProductID: 1, Name: "Rose", UnitPrice: 100, Quantity: 1}}
	cases := []struct {
		name   string
		mutate func(d *Delivery)
		method order.PaymentMethod
		field  string
	}{
		{"blank name", func(d *Delivery) { d.Name = "   " }, order.PaymentCOD, "name"},
		{"blank address", func(d *Delivery) { d.Address = "" }, order.PaymentCOD, "address"},
		{"blank city", func(d *Delivery) { d.City = "\t" }, order.PaymentCOD, "city"},
		{"five digit pincode", func(d *Delivery) { d.Pincode = "12345" }, order.PaymentCOD, "pincode"},
		{"nine digit phone", func(d *Delivery) { d.Phone = "987654321" }, order.PaymentCOD, "phone"},
		{"unknown payment", func(d *Delivery) {}, order.PaymentMethod("cheque"), "paymentMethod"},
		{"missing payment", func(d *Delivery) {}, "", "paymentMethod"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spy := &spyLedger{Ledger: NewInMemoryLedger(map[int64]int{1: 1})}
			svc := NewService(spy, nil, nullLogger(), 0)
			d := validDelivery
			tc.mutate(&d)

			_, err := svc.PlaceOrder(context.Background(), 1, lines, false, d, tc.method)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
			assert.Zero(t, spy.begins)
		})
	}
}

func TestPlaceOrder_ValidationBoundaries(t *testing.T) {
	ledger := NewInMemoryLedger(map[int64]int{1: 10})
	svc := NewService(ledger, nil, nullLogger(), 0)
	lines := []cart.Line{{ProductID: 1, UnitPrice: 100, Quantity: 1}}

	d := validDelivery
	d.Pincode, d.Phone = "123456", "9876543210"
	_, err := svc.PlaceOrder(context.Background(), 1, lines, false, d, order.PaymentCard)
	assert.NoError(t, err)

	d.Pincode = "12345"
	_, err = svc.PlaceOrder(context.Background(), 1, lines, false, d, order.PaymentCard)
	assert.Equal(t, KindValidation, KindOf(err))

	d.Pincode, d.Phone = "123456", "987654321"
	_, err = svc.PlaceOrder(context.Background(), 1, lines, false, d, order.PaymentCard)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	spy := &spyLedger{Ledger: NewInMemoryLedger(nil)}
	svc := NewService(spy, nil, nullLogger(), 0)

	_, err := svc.PlaceOrder(context.Background(), 1, nil, false, validDelivery, order.PaymentCOD)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, spy.begins)
}

func TestPlaceOrder_RejectsMalformedLines(t *testing.T) {
	svc := NewService(NewInMemoryLedger(map[int64]int{1: 5}), nil, nullLogger(), 0)

	_, err := svc.PlaceOrder(context.Background(), 1, []cart.Line{{ProductID: 1, Name: "Rose", UnitPrice: 10, Quantity: 0}}, false, validDelivery, order.PaymentCOD)
	assert.Equal(t, KindValidation, KindOf(err))

	dup := []cart.Line{{ProductID: 1, Name: "Rose", UnitPrice: 10, Quantity: 1}, {ProductID: 1, Name: "Rose", UnitPrice: 10, Quantity: 2}}
	_, err = svc.PlaceOrder(context.Background(), 1, dup, false, validDelivery, order.PaymentCOD)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPlaceOrder_StockConflictRollsBackEverything(t *testing.T) {
	ledger := NewInMemoryLedger(map[int64]int{1: 5, 2: 0})
	spy := &spyLedger{Ledger: ledger}
	store := cart.NewInMemoryStore()
	svc := NewService(spy, store, nullLogger(), 0)
	ctx := context.Background()

	lines := []cart.Line{
		{ProductID: 1, Name: "Product A", UnitPrice: 600, Quantity: 1},
		{ProductID: 2, Name: "Product B", UnitPrice: 500, Quantity: 1},
	}
	require.NoError(t, store.Save(ctx, 3, cart.Snapshot{Lines: lines}))

	_, err := svc.PlaceOrder(ctx, 3, lines, false, validDelivery, order.PaymentCOD)
	var se *StockConflictError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, int64(2), se.ProductID)
	assert.Equal(t, "Product B", se.Name)

	assert.Equal(t, 5, ledger.Stock(1), "first line's decrement is rolled back")
	assert.Equal(t, 0, ledger.Stock(2))
	assert.Empty(t, ledger.Orders())
	assert.Equal(t, 1, spy.rollbacks)

	snap, err := store.Get(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, snap.Lines, 2, "cart survives a failed checkout")
}

func TestPlaceOrder_InfrastructureFailures(t *testing.T) {
	lines := []cart.Line{{ProductID: 1, Name: "Rose", UnitPrice: 100, Quantity: 1}}

	t.Run("begin", func(t *testing.T) {
		spy := &spyLedger{Ledger: NewInMemoryLedger(map[int64]int{1: 5}), failOn: "begin"}
		svc := NewService(spy, nil, nullLogger(), 0)
		_, err := svc.PlaceOrder(context.Background(), 1, lines, false, validDelivery, order.PaymentCOD)
		var te *TransactionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "begin", te.Op)
	})

	t.Run("insert line", func(t *testing.T) {
		ledger := NewInMemoryLedger(map[int64]int{1: 5})
		spy := &spyLedger{Ledger: ledger, failOn: "line"}
		log, hook := test.NewNullLogger()
		svc := NewService(spy, nil, log, 0)

		_, err := svc.PlaceOrder(context.Background(), 1, lines, false, validDelivery, order.PaymentCOD)
		assert.Equal(t, KindTransaction, KindOf(err))
		assert.Equal(t, 1, spy.rollbacks)
		assert.Empty(t, ledger.Orders())
		assert.Equal(t, 5, ledger.Stock(1))

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
		assert.Equal(t, "insert line", entry.Data["op"])
	})

	t.Run("unknown product", func(t *testing.T) {
		ledger := NewInMemoryLedger(map[int64]int{1: 5})
		svc := NewService(ledger, nil, nullLogger(), 0)
		_, err := svc.PlaceOrder(context.Background(), 1, []cart.Line{{ProductID: 99, Name: "Ghost", UnitPrice: 1, Quantity: 1}}, false, validDelivery, order.PaymentCOD)
		assert.Equal(t, KindTransaction, KindOf(err))
		assert.Empty(t, ledger.Orders())
	})
}

func TestPlaceOrder_TimeoutRollsBack(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ledger := NewInMemoryLedger(map[int64]int{1: 5})
	spy := &spyLedger{Ledger: ledger, block: true}
	svc := NewService(spy, nil, nullLogger(), 20*time.Millisecond)

	_, err := svc.PlaceOrder(context.Background(), 1, []cart.Line{{ProductID: 1, Name: "Rose", UnitPrice: 100, Quantity: 1}}, false, validDelivery, order.PaymentCOD)
	require.Equal(t, KindTransaction, KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, spy.rollbacks)

	// the ledger is usable again once the timed-out transaction is gone
	spy.block = false
	_, err = svc.PlaceOrder(context.Background(), 1, []cart.Line{{ProductID: 1, Name: "Rose", UnitPrice: 100, Quantity: 1}}, false, validDelivery, order.PaymentCOD)
	require.NoError(t, err)
	assert.Equal(t, 4, ledger.Stock(1))
}

func TestPlaceOrder_ClearFailureIsOnlyLogged(t *testing.T) {
	ledger := NewInMemoryLedger(map[int64]int{1: 5})
	log, hook := test.NewNullLogger()
	svc := NewService(ledger, failingClearer{}, log, 0)

	id, err := svc.PlaceOrder(context.Background(), 1, []cart.Line{{ProductID: 1, Name: "Rose", UnitPrice: 100, Quantity: 1}}, false, validDelivery, order.PaymentCOD)
	require.NoError(t, err)
	assert.NotZero(t, id)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestPlaceOrder_LastUnitRace(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ledger := NewInMemoryLedger(map[int64]int{1: 1})
	svc := NewService(ledger, cart.NewInMemoryStore(), nullLogger(), time.Second)
	lines := []cart.Line{{ProductID: 1, Name: "Last Orchid", UnitPrice: 1500, Quantity: 1}}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.PlaceOrder(context.Background(), int64(i+1), lines, false, validDelivery, order.PaymentCOD)
		}(i)
	}
	close(start)
	wg.Wait()

	kinds := map[Kind]int{}
	for _, err := range errs {
		kinds[KindOf(err)]++
	}
	assert.Equal(t, map[Kind]int{KindNone: 1, KindStockConflict: 1}, kinds)
	assert.Equal(t, 0, ledger.Stock(1))
	assert.Len(t, ledger.Orders(), 1)
}

func TestPlaceOrder_StockNeverNegativeUnderLoad(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ledger := NewInMemoryLedger(map[int64]int{1: 5, 2: 100})
	svc := NewService(ledger, nil, nullLogger(), time.Second)
	lines := []cart.Line{
		{ProductID: 2, Name: "Fern", UnitPrice: 50, Quantity: 1},
		{ProductID: 1, Name: "Peony", UnitPrice: 700, Quantity: 2},
	}

	const buyers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), id, lines, false, validDelivery, order.PaymentCOD)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.Equal(t, KindStockConflict, KindOf(err))
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 2, successes)
	assert.Equal(t, 1, ledger.Stock(1))
	assert.Equal(t, 98, ledger.Stock(2), "fern is only sold with completed orders")
	assert.Len(t, ledger.Orders(), 2)
}
