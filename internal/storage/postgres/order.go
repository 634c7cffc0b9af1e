package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/akasa-feast/internal/domain/order"
)

const (
	orderByIDSQL = `SELECT id, user_id, status, payment_status, total_cents, tracking_id, created_at
		FROM orders WHERE id = $2 AND user_id = $1`

	ordersByUserSQL = `SELECT id, user_id, status, payment_status, total_cents, tracking_id, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
)

var _ order.Store = (*OrderStore)(nil)

// OrderStore implements order.Store backed by PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// InTx runs fn against a transactional view with one automatic retry on
// transient conflicts.
func (s *OrderStore) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&txQueries{db: tx})
	})
}

// OrderByID returns the user's order, or order.ErrNotFound. Other users'
// orders look absent.
func (s *OrderStore) OrderByID(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	rows, err := s.pool.Query(ctx, orderByIDSQL, userID, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %d", orderID)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %d", orderID)
	}
	return &o, nil
}

// OrdersByUser returns the user's orders, newest first.
func (s *OrderStore) OrdersByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := s.pool.Query(ctx, ordersByUserSQL, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders for user %d", userID)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// LinesByOrder returns the order's lines.
func (s *OrderStore) LinesByOrder(ctx context.Context, orderID int64) ([]order.Line, error) {
	return (&txQueries{db: s.pool}).OrderLines(ctx, orderID)
}
