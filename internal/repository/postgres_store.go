package repository

import (
	"context"
	"fmt"
	"time"

	"catalog-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresStore is the remote tier. A store built with a nil pool is
// unconfigured and answers every call with ErrUnavailable.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore creates the remote tier on top of pool, which may be nil.
func NewPostgresStore(pool *pgxpool.Pool, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres").Logger(),
	}
}

func (s *PostgresStore) Name() string {
	return "postgres"
}

// Configured reports whether the store has a connection pool.
func (s *PostgresStore) Configured() bool {
	return s.pool != nil
}

// LoadProducts retrieves every product, newest first.
func (s *PostgresStore) LoadProducts(ctx context.Context) ([]model.Product, error) {
	if s.pool == nil {
		return nil, ErrUnavailable
	}

	query := `
		SELECT id, name, price, category, available, image_url, active, created_at
		FROM products
		ORDER BY created_at DESC NULLS LAST, id DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			p         model.Product
			createdAt *time.Time
		)
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Available, &p.ImageURL, &p.Active, &createdAt)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if createdAt != nil {
			p.CreatedAt = createdAt.UTC()
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// StoreProducts upserts every product by primary key in a single transaction.
func (s *PostgresStore) StoreProducts(ctx context.Context, products []model.Product) error {
	if s.pool == nil {
		return ErrUnavailable
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return upsertProducts(ctx, tx, products)
	})
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(products)).Msg("failed to upsert products")
		return fmt.Errorf("failed to upsert products: %w", err)
	}

	return nil
}

// ReplaceProducts deletes the whole table and inserts products in one transaction.
func (s *PostgresStore) ReplaceProducts(ctx context.Context, products []model.Product) error {
	if s.pool == nil {
		return ErrUnavailable
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}
		return upsertProducts(ctx, tx, products)
	})
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(products)).Msg("failed to replace products")
		return fmt.Errorf("failed to replace products: %w", err)
	}

	return nil
}

func upsertProducts(ctx context.Context, tx pgx.Tx, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := `
		INSERT INTO products (id, name, price, category, available, image_url, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			available = EXCLUDED.available,
			image_url = EXCLUDED.image_url,
			active = EXCLUDED.active,
			created_at = EXCLUDED.created_at
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.ID, p.Name, p.Price, p.Category, p.Available, p.ImageURL, p.Active, nullableTime(p.CreatedAt))
	}

	results := tx.SendBatch(ctx, batch)
	for _, p := range products {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
		}
	}

	return results.Close()
}

// LoadUsers retrieves every user.
//
// An empty table is reported as ErrUnavailable rather than as an empty set:
// it is taken to mean the credentials have not been migrated yet, and falling
// back keeps the local accounts usable instead of locking everyone out. An
// intentionally empty remote table is indistinguishable from that case.
func (s *PostgresStore) LoadUsers(ctx context.Context) ([]model.User, error) {
	if s.pool == nil {
		return nil, ErrUnavailable
	}

	rows, err := s.pool.Query(ctx, `SELECT id, username, password FROM users ORDER BY id`)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query users")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password); err != nil {
			s.logger.Error().Err(err).Msg("failed to scan user row")
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("error iterating user rows")
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	if len(users) == 0 {
		s.logger.Warn().Msg("remote user table is empty, treating as not migrated")
		return nil, ErrUnavailable
	}

	return users, nil
}

// StoreUsers upserts every user by id and moves the id sequence past the
// largest stored id.
func (s *PostgresStore) StoreUsers(ctx context.Context, users []model.User) error {
	if s.pool == nil {
		return ErrUnavailable
	}
	if len(users) == 0 {
		return nil
	}

	query := `
		INSERT INTO users (id, username, password)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			password = EXCLUDED.password
	`

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range users {
			batch.Queue(query, u.ID, u.Username, u.Password)
		}
		batch.Queue(`SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))`)
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(users)).Msg("failed to upsert users")
		return fmt.Errorf("failed to upsert users: %w", err)
	}

	return nil
}

// MigrateUsers upserts users by username and lets the table assign ids.
// It returns the number of rows written.
func (s *PostgresStore) MigrateUsers(ctx context.Context, users []model.User) (int, error) {
	if s.pool == nil {
		return 0, ErrUnavailable
	}

	query := `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password
	`

	migrated := 0
	for _, u := range users {
		if _, err := s.pool.Exec(ctx, query, u.Username, u.Password); err != nil {
			s.logger.Error().Err(err).Str("username", u.Username).Msg("failed to migrate user")
			return migrated, fmt.Errorf("failed to migrate user %s: %w", u.Username, err)
		}
		s.logger.Info().Str("username", u.Username).Msg("user migrated")
		migrated++
	}

	return migrated, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
