package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

const (
	orderColumns = `id, customer_id, subtotal, delivery_fee, discount, total, status,
		delivery_name, delivery_address, delivery_city, delivery_pincode, delivery_phone,
		payment_method, created_at, updated_at`

	getOrderQuery             = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getCustomerOrderQuery     = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND customer_id = $2`
	listCustomerOrdersQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`
	orderStatusQuery          = `SELECT status FROM orders WHERE id = $1`
	updateOrderStatusQuery    = `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING ` + orderColumns
	restockCancelledLineQuery = `
		UPDATE products p
		SET stock = p.stock + oi.quantity, updated_at = NOW()
		FROM order_items oi
		WHERE oi.order_id = $1 AND p.id = oi.product_id`
	orderLinesQuery = `
		SELECT oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	orders, err := r.queryOrders(ctx, listCustomerOrdersQuery, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders for customer %d: %w", customerID, err)
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) GetForCustomer(ctx context.Context, id, customerID int64) (Order, error) {
	return r.getOne(ctx, getCustomerOrderQuery, id, customerID)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Order, error) {
	return r.getOne(ctx, getOrderQuery, id)
}

// List serves the back-office; lines are not loaded.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Order, error) {
	f = f.normalize()
	q := r.sb.Select(orderColumns).From("orders")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.CustomerID > 0 {
		q = q.Where(sq.Eq{"customer_id": f.CustomerID})
	}
	q = q.OrderBy("created_at DESC", "id DESC").Limit(uint64(f.Limit)).Offset(uint64(f.Offset))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build order list query: %w", err)
	}
	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, from, to Status) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	o, err := scanOrder(tx.QueryRowContext(ctx, updateOrderStatusQuery, string(to), id, string(from)))
	if errors.Is(err, sql.ErrNoRows) {
		var current string
		if err := tx.QueryRowContext(ctx, orderStatusQuery, id).Scan(&current); errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		} else if err != nil {
			return Order{}, fmt.Errorf("read status of order %d: %w", id, err)
		}
		return Order{}, ErrStatusConflict
	}
	if err != nil {
		return Order{}, fmt.Errorf("update status of order %d: %w", id, err)
	}

	if to == StatusCancelled {
		if _, err := tx.ExecContext(ctx, restockCancelledLineQuery, id); err != nil {
			return Order{}, fmt.Errorf("restock cancelled order %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit status update: %w", err)
	}

	orders := []Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	orders := []Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// attachLines loads the lines of every order in one round trip.
func (r *PostgresRepository) attachLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, orderLinesQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int64
			l       Line
		)
		if err := rows.Scan(&orderID, &l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (Order, error) {
	var (
		o      Order
		status string
		method string
	)
	err := s.Scan(
		&o.ID,
		&o.CustomerID,
		&o.Subtotal,
		&o.DeliveryFee,
		&o.Discount,
		&o.Total,
		&status,
		&o.Delivery.Name,
		&o.Delivery.Address,
		&o.Delivery.City,
		&o.Delivery.Pincode,
		&o.Delivery.Phone,
		&method,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	o.PaymentMethod = PaymentMethod(method)
	return o, nil
}
