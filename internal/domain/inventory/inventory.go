// Package inventory enforces the non-negative stock invariant. Checks and
// decrements always run inside the caller's storage transaction so that a
// multi-line reservation is observed by other callers either fully applied
// or not at all.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/akasa-feast/internal/domain/catalog"
)

// ErrStockMoved is returned when a conditional decrement misses because a
// concurrent caller consumed the stock after it was checked. The enclosing
// transaction must roll back.
var ErrStockMoved = errors.New("stock changed concurrently")

// Demand is one requested (item, quantity) reservation.
type Demand struct {
	ItemID   int64
	Quantity int
}

// Shortfall describes a single line that cannot be satisfied.
type Shortfall struct {
	ItemID    int64
	Name      string
	Requested int
	Available int
}

// InsufficientStockError reports every unsatisfiable line of a reservation,
// not just the first one found.
type InsufficientStockError struct {
	Short []Shortfall
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, len(e.Short))
	for i, s := range e.Short {
		names[i] = fmt.Sprintf("%s (want %d, have %d)", s.Name, s.Requested, s.Available)
	}
	return "not available: " + strings.Join(names, ", ")
}

// StockTx is the slice of a storage transaction the ledger needs to commit
// a reservation.
type StockTx interface {
	// DecrementStock subtracts quantity from the item's stock only when
	// enough remains, reporting whether a row was updated.
	DecrementStock(ctx context.Context, itemID int64, quantity int) (bool, error)
}

// Check validates that every demand can be satisfied by the given item
// snapshot. It never mutates anything; both checkout modes share it.
func Check(demands []Demand, items map[int64]catalog.Item) error {
	var short []Shortfall
	for _, d := range demands {
		it, ok := items[d.ItemID]
		if !ok {
			short = append(short, Shortfall{
				ItemID:    d.ItemID,
				Name:      fmt.Sprintf("item %d", d.ItemID),
				Requested: d.Quantity,
			})
			continue
		}
		if it.Stock < d.Quantity {
			short = append(short, Shortfall{
				ItemID:    d.ItemID,
				Name:      it.Name,
				Requested: d.Quantity,
				Available: it.Stock,
			})
		}
	}
	if len(short) > 0 {
		return &InsufficientStockError{Short: short}
	}
	return nil
}

// Commit decrements stock for every demand inside the caller's transaction.
// Each decrement is conditional on sufficient remaining stock; a miss means
// inventory moved since Check and the whole transaction must abort, so no
// partial decrement ever becomes visible.
func Commit(ctx context.Context, tx StockTx, demands []Demand) error {
	for _, d := range demands {
		ok, err := tx.DecrementStock(ctx, d.ItemID, d.Quantity)
		if err != nil {
			return errors.Wrapf(err, "decrement stock for item %d", d.ItemID)
		}
		if !ok {
			return errors.Wrapf(ErrStockMoved, "item %d", d.ItemID)
		}
	}
	return nil
}
