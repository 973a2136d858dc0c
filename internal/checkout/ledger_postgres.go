package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wichananm65/bloom-aura/internal/order"
)

const (
	insertOrderQuery = `
		INSERT INTO orders (customer_id, subtotal, delivery_fee, discount, total, status,
			delivery_name, delivery_address, delivery_city, delivery_pincode, delivery_phone, payment_method)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`
	insertLineQuery = `INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1,$2,$3,$4)`
	// The WHERE clause is the only concurrency control: of two transactions
	// racing for the last unit, the second re-checks after the first commits
	// and matches no row.
	decrementStockQuery = `UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`
)

// PostgresLedger writes orders in a READ COMMITTED database/sql transaction.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Begin(ctx context.Context) (LedgerTx, error) {
	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) InsertOrder(ctx context.Context, o order.Order) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, insertOrderQuery,
		o.CustomerID,
		o.Subtotal,
		o.DeliveryFee,
		o.Discount,
		o.Total,
		string(o.Status),
		o.Delivery.Name,
		o.Delivery.Address,
		o.Delivery.City,
		o.Delivery.Pincode,
		o.Delivery.Phone,
		string(o.PaymentMethod),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (t *sqlTx) InsertLine(ctx context.Context, orderID int64, l order.Line) error {
	if _, err := t.tx.ExecContext(ctx, insertLineQuery, orderID, l.ProductID, l.Quantity, l.UnitPrice); err != nil {
		return fmt.Errorf("insert line for product %d: %w", l.ProductID, err)
	}
	return nil
}

func (t *sqlTx) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	result, err := t.tx.ExecContext(ctx, decrementStockQuery, qty, productID)
	if err != nil {
		return false, fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for product %d: %w", productID, err)
	}
	return n == 1, nil
}

func (t *sqlTx) Commit() error {
	return mapTxDone(t.tx.Commit())
}

func (t *sqlTx) Rollback() error {
	return mapTxDone(t.tx.Rollback())
}

func mapTxDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return ErrTxDone
	}
	return err
}
