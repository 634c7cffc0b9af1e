package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrLineNotFound is returned when a cart line does not exist or belongs to
// another user. Ownership misses deliberately look identical to absence.
var ErrLineNotFound = errors.New("cart line not found")

// Line is one (user, item) entry pending purchase. A user has at most one
// line per item; adding the same item again merges quantities.
type Line struct {
	ID       int64
	UserID   int64
	ItemID   int64
	Quantity int
	AddedAt  time.Time
}

// Repository defines persistence operations for cart lines.
type Repository interface {
	Lines(ctx context.Context, userID int64) ([]Line, error)
	// UpsertLine adds quantity to the user's line for the item, creating the
	// line when absent.
	UpsertLine(ctx context.Context, userID, itemID int64, quantity int) error
	// SetQuantity replaces the quantity of an owned line. A quantity of zero
	// or less deletes the line.
	SetQuantity(ctx context.Context, userID, lineID int64, quantity int) error
	DeleteLine(ctx context.Context, userID, lineID int64) error
	Clear(ctx context.Context, userID int64) error
}
