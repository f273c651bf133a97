// Command migrate copies the local catalogue and credential files into the
// remote datastore, whose tables must already exist. Users are upserted by
// username and products by id, so running it twice is harmless.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"catalog-api/internal/config"
	"catalog-api/internal/database"
	"catalog-api/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadMigration()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("data_dir", cfg.Storage.DataDir).Msg("starting migration")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	local := repository.NewFileStore(cfg.Storage.ProductsFile(), cfg.Storage.UsersFile(), logger)
	remote := repository.NewPostgresStore(pool, logger)

	users, err := local.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local users: %w", err)
	}
	migratedUsers, err := remote.MigrateUsers(ctx, users)
	if err != nil {
		return err
	}

	products, err := local.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local catalogue: %w", err)
	}
	if err := remote.StoreProducts(ctx, products); err != nil {
		return err
	}

	logger.Info().
		Int("users", migratedUsers).
		Int("products", len(products)).
		Msg("migration completed")

	return nil
}
