package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
)

// Chain implements Store over an ordered list of backends. Reads and writes
// go to the first tier that succeeds.
//
// Writes are not reconciled between tiers: while an earlier tier fails
// intermittently, some writes land in it and others in a later tier, and the
// tiers drift apart. Each write carries the whole collection, so concurrent
// writers lose updates to whichever finishes last.
type Chain struct {
	tiers  []Backend
	logger zerolog.Logger
}

// NewChain creates a data access layer trying tiers in the given order.
func NewChain(logger zerolog.Logger, tiers ...Backend) *Chain {
	return &Chain{
		tiers:  tiers,
		logger: logger.With().Str("repository", "chain").Logger(),
	}
}

// Products loads the product collection from the first tier that answers.
func (c *Chain) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := c.do(ctx, "load products", func(b Backend) error {
		var err error
		products, err = b.LoadProducts(ctx)
		return err
	})
	return products, err
}

// SaveProducts upserts the product collection into the first tier that accepts it.
func (c *Chain) SaveProducts(ctx context.Context, products []model.Product) error {
	return c.do(ctx, "save products", func(b Backend) error {
		return b.StoreProducts(ctx, products)
	})
}

// ReplaceProducts replaces the product collection in the first tier that accepts it.
func (c *Chain) ReplaceProducts(ctx context.Context, products []model.Product) error {
	return c.do(ctx, "replace products", func(b Backend) error {
		return b.ReplaceProducts(ctx, products)
	})
}

// Users loads the credential collection from the first tier that answers.
func (c *Chain) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, "load users", func(b Backend) error {
		var err error
		users, err = b.LoadUsers(ctx)
		return err
	})
	return users, err
}

// SaveUsers upserts the credential collection into the first tier that accepts it.
func (c *Chain) SaveUsers(ctx context.Context, users []model.User) error {
	return c.do(ctx, "save users", func(b Backend) error {
		return b.StoreUsers(ctx, users)
	})
}

func (c *Chain) do(ctx context.Context, op string, fn func(Backend) error) error {
	var errs []error

	for _, tier := range c.tiers {
		err := fn(tier)
		if err == nil {
			c.logger.Debug().Str("op", op).Str("tier", tier.Name()).Msg("served")
			return nil
		}

		if errors.Is(err, ErrUnavailable) {
			c.logger.Debug().Str("op", op).Str("tier", tier.Name()).Msg("tier unavailable, falling back")
		} else {
			c.logger.Warn().Err(err).Str("op", op).Str("tier", tier.Name()).Msg("tier failed, falling back")
		}
		errs = append(errs, fmt.Errorf("%s: %w", tier.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		return fmt.Errorf("%s: no storage tiers configured", op)
	}

	c.logger.Error().Err(errors.Join(errs...)).Str("op", op).Msg("all storage tiers failed")
	return fmt.Errorf("%s: %w", op, errors.Join(errs...))
}
