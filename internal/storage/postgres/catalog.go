package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/akasa-feast/internal/domain/catalog"
)

const (
	listItemsSQL = `SELECT id, name, description, price_cents, stock, COALESCE(category_id, 0)
		FROM items ORDER BY name`

	listItemsByCategorySQL = `SELECT i.id, i.name, i.description, i.price_cents, i.stock, COALESCE(i.category_id, 0)
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE c.name = $1
		ORDER BY i.name`

	getItemSQL = `SELECT id, name, description, price_cents, stock, COALESCE(category_id, 0)
		FROM items WHERE id = $1`

	listCategoriesSQL = `SELECT id, name FROM categories ORDER BY name`

	upsertCategorySQL = `INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	upsertItemSQL = `INSERT INTO items (name, description, price_cents, stock, category_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    price_cents = EXCLUDED.price_cents,
		    stock       = EXCLUDED.stock,
		    category_id = EXCLUDED.category_id
		RETURNING id`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListItems returns menu items ordered by name, optionally filtered by
// category name. An unknown category yields an empty list.
func (r *CatalogRepository) ListItems(ctx context.Context, categoryName string) ([]catalog.Item, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if categoryName == "" {
		rows, err = r.pool.Query(ctx, listItemsSQL)
	} else {
		rows, err = r.pool.Query(ctx, listItemsByCategorySQL, categoryName)
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing items")
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetItem returns a single menu item by id.
func (r *CatalogRepository) GetItem(ctx context.Context, id int64) (*catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getItemSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting item %d", id)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting item %d", id)
	}
	return &it, nil
}

// ListCategories returns all categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// UpsertCategory creates the category if needed and returns its id. Used by
// the seeder.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, upsertCategorySQL, name).Scan(&id); err != nil {
		return 0, errors.Wrapf(err, "upserting category %q", name)
	}
	return id, nil
}

// UpsertItem creates or refreshes a menu item by name and returns its id.
// Used by the seeder.
func (r *CatalogRepository) UpsertItem(ctx context.Context, it catalog.Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, upsertItemSQL,
		it.Name, it.Description, it.PriceCents, it.Stock, nullableID(it.CategoryID),
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "upserting item %q", it.Name)
	}
	return id, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func scanItem(row pgx.CollectableRow) (catalog.Item, error) {
	var it catalog.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.PriceCents, &it.Stock, &it.CategoryID)
	return it, err
}
