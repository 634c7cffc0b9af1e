package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/akasa-feast/internal/domain/catalog"
	"github.com/xenking/akasa-feast/internal/domain/inventory"
)

// Mode selects when a checkout decrements stock and consumes the cart.
type Mode int

const (
	// ModeImmediate charges at checkout: stock is decremented and the cart
	// cleared in the same transaction that creates the order.
	ModeImmediate Mode = iota
	// ModeDeferred only validates and prices: stock and cart are left
	// untouched until a payment for the order succeeds.
	ModeDeferred
)

// Service turns a mutable cart into an immutable priced order. Both checkout
// protocols run through the same validation and pricing path and differ only
// in their stock and cart side effects.
type Service struct {
	store Store
}

// NewService creates an order Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Checkout snapshots the caller's cart into a new order. The whole operation
// runs in one storage transaction: either the order, its lines, and any stock
// decrement all commit, or none do.
func (s *Service) Checkout(ctx context.Context, userID int64, mode Mode) (*Order, error) {
	var out *Order

	err := s.store.InTx(ctx, func(tx Tx) error {
		lines, err := tx.CartLines(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		ids := make([]int64, len(lines))
		for i, l := range lines {
			ids[i] = l.ItemID
		}
		fetched, err := tx.ItemsByIDs(ctx, ids)
		if err != nil {
			return errors.Wrap(err, "load items")
		}
		items := make(map[int64]catalog.Item, len(fetched))
		for _, it := range fetched {
			items[it.ID] = it
		}

		demands := make([]inventory.Demand, len(lines))
		for i, l := range lines {
			if _, ok := items[l.ItemID]; !ok {
				return &ItemUnavailableError{ItemID: l.ItemID}
			}
			demands[i] = inventory.Demand{ItemID: l.ItemID, Quantity: l.Quantity}
		}

		// Sufficiency is validated for every line in both modes; only the
		// decrement timing differs.
		if err := inventory.Check(demands, items); err != nil {
			return err
		}

		o := &Order{
			UserID:     userID,
			TrackingID: uuid.New().String(),
		}
		var total int64
		for _, l := range lines {
			total += int64(l.Quantity) * items[l.ItemID].PriceCents
		}
		o.TotalCents = total

		switch mode {
		case ModeImmediate:
			o.Status = StatusPlaced
			// Charged at checkout, so the payment pipeline treats the order
			// as settled.
			o.PaymentStatus = PaymentPaid
		case ModeDeferred:
			o.Status = StatusPendingPayment
			o.PaymentStatus = PaymentPending
		}

		if err := tx.InsertOrder(ctx, o); err != nil {
			return errors.Wrapf(err, "insert order for user %d", userID)
		}

		orderLines := make([]Line, len(lines))
		for i, l := range lines {
			orderLines[i] = Line{
				OrderID:        o.ID,
				ItemID:         l.ItemID,
				Quantity:       l.Quantity,
				PriceCentsEach: items[l.ItemID].PriceCents,
			}
		}
		if err := tx.InsertLines(ctx, orderLines); err != nil {
			return errors.Wrapf(err, "insert lines for order %d", o.ID)
		}

		if mode == ModeImmediate {
			if err := inventory.Commit(ctx, tx, demands); err != nil {
				return err
			}
			if err := tx.ClearCart(ctx, userID); err != nil {
				return errors.Wrapf(err, "clear cart for user %d", userID)
			}
		}

		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one of the user's orders with its lines. Orders of other users
// are reported as not found.
func (s *Service) Get(ctx context.Context, userID, orderID int64) (*Order, []Line, error) {
	o, err := s.store.OrderByID(ctx, userID, orderID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.store.LinesByOrder(ctx, o.ID)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load lines for order %d", o.ID)
	}
	return o, lines, nil
}

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]Order, error) {
	return s.store.OrdersByUser(ctx, userID)
}
