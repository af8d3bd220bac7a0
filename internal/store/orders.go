package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, customer_id, customer_name, items, total, status, payment_status, reviewed, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var total pgtype.Numeric
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.Items, &total,
		&o.Status, &o.PaymentStatus, &o.Reviewed, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Total, err = numericToDecimal(total)
	if err != nil {
		return Order{}, fmt.Errorf("scanning order total: %w", err)
	}
	return o, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type CreateOrderParams struct {
	CustomerID   uuid.UUID
	CustomerName string
	Items        []string
	Total        decimal.Decimal
}

// CreateOrder inserts a new order in its initial state: Pending, Unpaid,
// not reviewed.
func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, customer_name, items, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		uuid.New(), arg.CustomerID, arg.CustomerName, arg.Items, decimalToNumeric(arg.Total))
	return scanOrder(row)
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// ListOrders returns every order, newest first. Admin dashboard view.
func (s *Store) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListOrdersByCustomer returns a customer's own orders, newest first.
func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListActiveOrders returns orders the kitchen still has to act on
// (Pending or In Progress), oldest first so the queue reads top-down.
func (s *Store) ListActiveOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status IN ('Pending', 'In Progress')
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (Order, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+orderColumns, id, status, time.Now())
	return scanOrder(row)
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) (Order, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE orders SET payment_status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+orderColumns, id, paymentStatus, time.Now())
	return scanOrder(row)
}

func (s *Store) SetOrderReviewed(ctx context.Context, id uuid.UUID, reviewed bool) (Order, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE orders SET reviewed = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+orderColumns, id, reviewed, time.Now())
	return scanOrder(row)
}
