package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/akasa-feast/internal/domain/cart"
	"github.com/xenking/akasa-feast/internal/domain/catalog"
	"github.com/xenking/akasa-feast/internal/domain/inventory"
)

// Status is the fulfillment lifecycle state of an order.
type Status string

const (
	StatusPlaced         Status = "PLACED"
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// PaymentStatus is the payment lifecycle state of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Sentinel errors for checkout and order lookup.
var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNotFound  = errors.New("order not found")
)

// ItemUnavailableError indicates a cart line references an item that no
// longer exists in the catalog.
type ItemUnavailableError struct {
	ItemID int64
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("item %d is no longer available", e.ItemID)
}

// Order is an immutable priced record built from a cart snapshot. TotalCents
// is fixed at creation and never recomputed; TrackingID is generated once.
type Order struct {
	ID            int64
	UserID        int64
	Status        Status
	PaymentStatus PaymentStatus
	TotalCents    int64
	TrackingID    string
	CreatedAt     time.Time
}

// Line is a purchased-item record. PriceCentsEach is the item's price at the
// moment the order was created; later catalog price changes never touch it.
type Line struct {
	ID             int64
	OrderID        int64
	ItemID         int64
	Quantity       int
	PriceCentsEach int64
}

// Tx is the transactional storage view a checkout runs against. Every read
// and write issued through it commits or rolls back as one unit.
type Tx interface {
	inventory.StockTx

	CartLines(ctx context.Context, userID int64) ([]cart.Line, error)
	ItemsByIDs(ctx context.Context, ids []int64) ([]catalog.Item, error)
	// InsertOrder persists the order and fills its ID and CreatedAt.
	InsertOrder(ctx context.Context, o *Order) error
	InsertLines(ctx context.Context, lines []Line) error
	ClearCart(ctx context.Context, userID int64) error
}

// Store provides transactional checkout execution and the read-only order
// projections. Reads never mutate state.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	OrderByID(ctx context.Context, userID, orderID int64) (*Order, error)
	OrdersByUser(ctx context.Context, userID int64) ([]Order, error)
	LinesByOrder(ctx context.Context, orderID int64) ([]Line, error)
}
