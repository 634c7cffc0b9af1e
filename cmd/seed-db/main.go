// Command seed-db loads the menu into PostgreSQL. The menu file is JSON,
// optionally gzip-compressed, grouping items under their categories. Runs
// are idempotent: categories and items are upserted by name.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/akasa-feast/internal/domain/catalog"
	"github.com/xenking/akasa-feast/internal/storage/postgres"
)

type menuJSON struct {
	Categories []categoryJSON `json:"categories"`
}

type categoryJSON struct {
	Name  string     `json:"name"`
	Items []itemJSON `json:"items"`
}

type itemJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
}

func main() {
	var (
		databaseURL string
		menuFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file (.json or .json.gz)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	menu, err := readMenu(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu")
	}

	return seedMenu(ctx, postgres.NewCatalogRepository(pool), menu)
}

func readMenu(path string) (*menuJSON, error) {
	slog.Info("reading menu file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open menu file")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer gz.Close()
		r = gz
	}

	var menu menuJSON
	if err := json.NewDecoder(r).Decode(&menu); err != nil {
		return nil, errors.Wrap(err, "parse menu JSON")
	}
	return &menu, nil
}

// seedMenu upserts one category at a time; items within a category are
// upserted concurrently.
func seedMenu(ctx context.Context, repo *postgres.CatalogRepository, menu *menuJSON) error {
	for _, c := range menu.Categories {
		categoryID, err := repo.UpsertCategory(ctx, c.Name)
		if err != nil {
			return errors.Wrapf(err, "upsert category %q", c.Name)
		}
		slog.Info("upserted category", slog.String("name", c.Name), slog.Int("items", len(c.Items)))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, it := range c.Items {
			g.Go(func() error {
				id, err := repo.UpsertItem(gctx, catalog.Item{
					Name:        it.Name,
					Description: it.Description,
					PriceCents:  it.PriceCents,
					Stock:       it.Stock,
					CategoryID:  categoryID,
				})
				if err != nil {
					return errors.Wrapf(err, "upsert item %q", it.Name)
				}
				slog.Info("upserted item", slog.Int64("id", id), slog.String("name", it.Name))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
