package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bloom-aura/internal/cart"
	"github.com/wichananm65/bloom-aura/internal/order"
	"github.com/wichananm65/bloom-aura/internal/pricing"
	"github.com/wichananm65/bloom-aura/internal/validation"
)

// SnapshotClearer empties a customer's cart and promo flag once their order
// is committed.
type SnapshotClearer interface {
	Clear(ctx context.Context, customerID int64) error
}

// Service places orders.
type Service struct {
	ledger   Ledger
	clearer  SnapshotClearer
	validate *validator.Validate
	log      logrus.FieldLogger
	timeout  time.Duration
}

// NewService wires the order transaction. timeout bounds the whole
// transaction; zero means only the caller's context applies.
func NewService(ledger Ledger, clearer SnapshotClearer, log logrus.FieldLogger, timeout time.Duration) *Service {
	return &Service{
		ledger:   ledger,
		clearer:  clearer,
		validate: validation.New(),
		log:      log,
		timeout:  timeout,
	}
}

// PlaceOrder turns a cart snapshot and the checkout form into a pending
// order. Either the order, all its lines and every stock decrement commit
// together, or nothing does. The error is nil or one of *ValidationError,
// *StockConflictError and *TransactionError.
func (s *Service) PlaceOrder(
	ctx context.Context,
	customerID int64,
	lines []cart.Line,
	promo bool,
	delivery Delivery,
	method order.PaymentMethod,
) (int64, error) {
	if err := checkLines(lines); err != nil {
		return 0, err
	}
	delivery, err := check(s.validate, delivery, method)
	if err != nil {
		return 0, err
	}

	totals := pricing.ForItems(lines, promo)
	log := s.log.WithFields(logrus.Fields{
		"customerId": customerID,
		"lines":      len(lines),
		"total":      totals.Total,
	})

	txCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	orderID, err := s.write(txCtx, log, customerID, lines, totals, delivery, method)
	if err != nil {
		return 0, err
	}

	if s.clearer != nil {
		if err := s.clearer.Clear(ctx, customerID); err != nil {
			log.WithError(err).WithField("orderId", orderID).Warn("order placed but cart could not be cleared")
		}
	}
	log.WithField("orderId", orderID).Info("order placed")
	return orderID, nil
}

// write inserts the order and its lines and decrements stock in one
// transaction. Any early return rolls back before the error reaches the caller.
func (s *Service) write(
	ctx context.Context,
	log logrus.FieldLogger,
	customerID int64,
	lines []cart.Line,
	totals pricing.Totals,
	delivery Delivery,
	method order.PaymentMethod,
) (orderID int64, err error) {
	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return 0, s.fail(log, "begin", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrTxDone) {
			log.WithError(rbErr).Error("rollback failed")
		}
	}()

	orderID, err = tx.InsertOrder(ctx, order.Order{
		CustomerID:    customerID,
		Totals:        totals,
		Status:        order.StatusPending,
		Delivery:      delivery.toOrder(),
		PaymentMethod: method,
	})
	if err != nil {
		return 0, s.fail(log, "insert order", err)
	}

	for _, l := range lines {
		if err := tx.InsertLine(ctx, orderID, order.Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}); err != nil {
			return 0, s.fail(log, "insert line", err)
		}

		ok, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
		if err != nil {
			return 0, s.fail(log, "decrement stock", err)
		}
		if !ok {
			log.WithFields(logrus.Fields{"productId": l.ProductID, "quantity": l.Quantity}).
				Info("checkout lost stock race")
			return 0, &StockConflictError{ProductID: l.ProductID, Name: l.Name}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, s.fail(log, "commit", err)
	}
	committed = true
	return orderID, nil
}

func (s *Service) fail(log logrus.FieldLogger, op string, err error) error {
	log.WithError(err).WithField("op", op).Error("order transaction failed")
	return &TransactionError{Op: op, Err: err}
}
