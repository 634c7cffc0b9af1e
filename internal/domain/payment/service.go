package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/akasa-feast/internal/domain/inventory"
	"github.com/xenking/akasa-feast/internal/domain/order"
)

// Service processes payment attempts for deferred-checkout orders and
// reconciles order, stock, and cart state on success.
type Service struct {
	store    Store
	outcomes OutcomeSource
	now      func() time.Time
}

// NewService creates a payment Service. outcomes decides simulated gateway
// results; pass a FixedOutcome in tests for determinism.
func NewService(store Store, outcomes OutcomeSource) *Service {
	return &Service{
		store:    store,
		outcomes: outcomes,
		now:      time.Now,
	}
}

// Process runs one payment attempt against the user's order.
//
// Detail validation happens before anything is persisted; an invalid method
// or malformed details produce no Payment record. Once details pass, exactly
// one Payment row is written per attempt regardless of outcome. A successful
// attempt additionally flips the order to PAID/PLACED, decrements stock for
// every order line, and clears the user's whole cart, all in one transaction
// guarded by a row lock plus a compare-and-set on the order's payment status,
// so concurrent attempts on the same order cannot both succeed.
func (s *Service) Process(ctx context.Context, userID, orderID int64, method Method, details Details) (*Payment, error) {
	if err := ValidateDetails(method, details); err != nil {
		return nil, err
	}

	// The gateway draw happens once, outside the transaction, so a transient
	// commit retry cannot flip the outcome.
	approved := s.outcomes.Approve()

	var attempt *Payment
	err := s.store.InTx(ctx, func(tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, userID, orderID)
		if err != nil {
			return err
		}
		if o.PaymentStatus == order.PaymentPaid {
			return ErrAlreadyPaid
		}

		p := &Payment{
			OrderID:       o.ID,
			AmountCents:   o.TotalCents,
			Method:        method,
			Status:        StatusFailed,
			TransactionID: newTransactionID(),
		}
		if approved {
			p.Status = StatusSuccess
			completed := s.now().UTC()
			p.CompletedAt = &completed
		}
		if err := tx.InsertPayment(ctx, p); err != nil {
			return errors.Wrapf(err, "insert payment for order %d", o.ID)
		}

		if !approved {
			// The failed attempt commits; the order stays payable.
			attempt = p
			return nil
		}

		ok, err := tx.MarkOrderPaid(ctx, o.ID)
		if err != nil {
			return errors.Wrapf(err, "mark order %d paid", o.ID)
		}
		if !ok {
			return ErrAlreadyPaid
		}

		lines, err := tx.OrderLines(ctx, o.ID)
		if err != nil {
			return errors.Wrapf(err, "load lines for order %d", o.ID)
		}
		demands := make([]inventory.Demand, len(lines))
		for i, l := range lines {
			demands[i] = inventory.Demand{ItemID: l.ItemID, Quantity: l.Quantity}
		}
		// Stock was validated at order creation, but inventory may have
		// moved since. A miss here aborts the whole success transaction:
		// no SUCCESS payment without its matching decrement.
		if err := inventory.Commit(ctx, tx, demands); err != nil {
			return errors.Wrap(ErrStockConflict, err.Error())
		}

		// Any successful payment closes the user's entire cart, not just
		// the paid order's lines.
		if err := tx.ClearCart(ctx, userID); err != nil {
			return errors.Wrapf(err, "clear cart for user %d", userID)
		}

		attempt = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if attempt.Status == StatusFailed {
		return attempt, ErrDeclined
	}
	return attempt, nil
}

// LatestByOrder returns the most recent attempt for an order, or nil.
func (s *Service) LatestByOrder(ctx context.Context, orderID int64) (*Payment, error) {
	return s.store.LatestByOrder(ctx, orderID)
}
