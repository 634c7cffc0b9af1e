package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/akasa-feast/internal/domain/cart"
)

const (
	cartLinesSQL = `SELECT id, user_id, item_id, quantity, added_at
		FROM cart_items WHERE user_id = $1 ORDER BY added_at`

	upsertCartLineSQL = `INSERT INTO cart_items (user_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	setCartQuantitySQL = `UPDATE cart_items SET quantity = $3
		WHERE id = $2 AND user_id = $1`

	deleteCartLineSQL = `DELETE FROM cart_items WHERE id = $2 AND user_id = $1`

	clearCartSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Lines returns the user's cart lines in the order they were added.
func (r *CartRepository) Lines(ctx context.Context, userID int64) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, cartLinesSQL, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing cart for user %d", userID)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// UpsertLine adds quantity to the user's line for the item, creating it when
// absent.
func (r *CartRepository) UpsertLine(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if _, err := r.pool.Exec(ctx, upsertCartLineSQL, userID, itemID, quantity); err != nil {
		return errors.Wrapf(err, "adding item %d to cart of user %d", itemID, userID)
	}
	return nil
}

// SetQuantity replaces the quantity of an owned line; zero or less deletes
// it. Lines of other users look absent.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, lineID int64, quantity int) error {
	if quantity <= 0 {
		return r.DeleteLine(ctx, userID, lineID)
	}

	tag, err := r.pool.Exec(ctx, setCartQuantitySQL, userID, lineID, quantity)
	if err != nil {
		return errors.Wrapf(err, "updating cart line %d", lineID)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// DeleteLine removes an owned line.
func (r *CartRepository) DeleteLine(ctx context.Context, userID, lineID int64) error {
	tag, err := r.pool.Exec(ctx, deleteCartLineSQL, userID, lineID)
	if err != nil {
		return errors.Wrapf(err, "deleting cart line %d", lineID)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Clear removes every line of the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, userID); err != nil {
		return errors.Wrapf(err, "clearing cart for user %d", userID)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(&l.ID, &l.UserID, &l.ItemID, &l.Quantity, &l.AddedAt)
	return l, err
}
