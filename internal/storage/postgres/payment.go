package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/akasa-feast/internal/domain/payment"
)

const latestPaymentSQL = `SELECT id, order_id, amount_cents, method, status, transaction_id, created_at, completed_at
	FROM payments WHERE order_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT 1`

var _ payment.Store = (*PaymentStore)(nil)

// PaymentStore implements payment.Store backed by PostgreSQL.
type PaymentStore struct {
	pool *pgxpool.Pool
}

// NewPaymentStore returns a PaymentStore that uses the given pool.
func NewPaymentStore(pool *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{pool: pool}
}

// InTx runs fn against a transactional view with one automatic retry on
// transient conflicts.
func (s *PaymentStore) InTx(ctx context.Context, fn func(tx payment.Tx) error) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&txQueries{db: tx})
	})
}

// LatestByOrder returns the most recent payment attempt for the order, or
// nil when no attempt exists.
func (s *PaymentStore) LatestByOrder(ctx context.Context, orderID int64) (*payment.Payment, error) {
	rows, err := s.pool.Query(ctx, latestPaymentSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting latest payment for order %d", orderID)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "getting latest payment for order %d", orderID)
	}
	return &p, nil
}

func scanPayment(row pgx.CollectableRow) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.AmountCents, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt, &p.CompletedAt)
	return p, err
}
