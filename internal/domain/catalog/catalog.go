package catalog

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Item is a menu entry available for purchase. Price is in integer
// minor-currency units; Stock never goes below zero.
type Item struct {
	ID          int64
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	CategoryID  int64
}

// Category groups related menu items.
type Category struct {
	ID   int64
	Name string
}

// Repository defines read operations for the catalog.
type Repository interface {
	ListItems(ctx context.Context, categoryName string) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
