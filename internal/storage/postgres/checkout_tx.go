package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xenking/akasa-feast/internal/domain/cart"
	"github.com/xenking/akasa-feast/internal/domain/catalog"
	"github.com/xenking/akasa-feast/internal/domain/order"
	"github.com/xenking/akasa-feast/internal/domain/payment"
)

const (
	itemsByIDsSQL = `SELECT id, name, description, price_cents, stock, COALESCE(category_id, 0)
		FROM items WHERE id = ANY($1)`

	insertOrderSQL = `INSERT INTO orders (user_id, status, payment_status, total_cents, tracking_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	insertOrderLineSQL = `INSERT INTO order_items (order_id, item_id, quantity, price_cents_each)
		VALUES ($1, $2, $3, $4)`

	// The stock guard in the WHERE clause makes concurrent decrements on the
	// same item serialize without ever violating the non-negative invariant;
	// a miss is reported through the affected-row count.
	decrementStockSQL = `UPDATE items SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	orderForUpdateSQL = `SELECT id, user_id, status, payment_status, total_cents, tracking_id, created_at
		FROM orders WHERE id = $2 AND user_id = $1
		FOR UPDATE`

	insertPaymentSQL = `INSERT INTO payments (order_id, amount_cents, method, status, transaction_id, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	// Compare-and-set on payment_status: the loser of a race sees zero
	// affected rows instead of double-applying success effects.
	markOrderPaidSQL = `UPDATE orders SET payment_status = 'PAID', status = 'PLACED'
		WHERE id = $1 AND payment_status <> 'PAID'`

	orderLinesSQL = `SELECT id, order_id, item_id, quantity, price_cents_each
		FROM order_items WHERE order_id = $1 ORDER BY id`
)

// dbtx is the subset of pgx shared by pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Compile-time checks: one transactional view serves both pipelines.
var (
	_ order.Tx   = (*txQueries)(nil)
	_ payment.Tx = (*txQueries)(nil)
)

// txQueries implements the checkout and payment transactional views on top
// of a single pgx transaction.
type txQueries struct {
	db dbtx
}

func (q *txQueries) CartLines(ctx context.Context, userID int64) ([]cart.Line, error) {
	rows, err := q.db.Query(ctx, cartLinesSQL, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing cart for user %d", userID)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

func (q *txQueries) ItemsByIDs(ctx context.Context, ids []int64) ([]catalog.Item, error) {
	rows, err := q.db.Query(ctx, itemsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "getting items by ids")
	}
	return pgx.CollectRows(rows, scanItem)
}

func (q *txQueries) InsertOrder(ctx context.Context, o *order.Order) error {
	err := q.db.QueryRow(ctx, insertOrderSQL,
		o.UserID, o.Status, o.PaymentStatus, o.TotalCents, o.TrackingID,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "inserting order for user %d", o.UserID)
	}
	return nil
}

func (q *txQueries) InsertLines(ctx context.Context, lines []order.Line) error {
	for _, l := range lines {
		_, err := q.db.Exec(ctx, insertOrderLineSQL, l.OrderID, l.ItemID, l.Quantity, l.PriceCentsEach)
		if err != nil {
			return errors.Wrapf(err, "inserting line for order %d item %d", l.OrderID, l.ItemID)
		}
	}
	return nil
}

func (q *txQueries) DecrementStock(ctx context.Context, itemID int64, quantity int) (bool, error) {
	tag, err := q.db.Exec(ctx, decrementStockSQL, itemID, quantity)
	if err != nil {
		return false, errors.Wrapf(err, "decrementing stock of item %d", itemID)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *txQueries) ClearCart(ctx context.Context, userID int64) error {
	if _, err := q.db.Exec(ctx, clearCartSQL, userID); err != nil {
		return errors.Wrapf(err, "clearing cart for user %d", userID)
	}
	return nil
}

func (q *txQueries) OrderForUpdate(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	rows, err := q.db.Query(ctx, orderForUpdateSQL, userID, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "locking order %d", orderID)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "locking order %d", orderID)
	}
	return &o, nil
}

func (q *txQueries) InsertPayment(ctx context.Context, p *payment.Payment) error {
	err := q.db.QueryRow(ctx, insertPaymentSQL,
		p.OrderID, p.AmountCents, p.Method, p.Status, p.TransactionID, p.CompletedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "inserting payment for order %d", p.OrderID)
	}
	return nil
}

func (q *txQueries) MarkOrderPaid(ctx context.Context, orderID int64) (bool, error) {
	tag, err := q.db.Exec(ctx, markOrderPaidSQL, orderID)
	if err != nil {
		return false, errors.Wrapf(err, "marking order %d paid", orderID)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *txQueries) OrderLines(ctx context.Context, orderID int64) ([]order.Line, error) {
	rows, err := q.db.Query(ctx, orderLinesSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing lines for order %d", orderID)
	}
	return pgx.CollectRows(rows, scanOrderLine)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.TotalCents, &o.TrackingID, &o.CreatedAt)
	return o, err
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &l.PriceCentsEach)
	return l, err
}
