package repository

import (
	"context"
	"errors"

	"catalog-api/internal/model"
)

// ErrUnavailable is returned by a Backend that cannot serve a call and wants
// the caller to move on to the next tier.
var ErrUnavailable = errors.New("backend unavailable")

// Backend is one storage tier holding both collections.
// Every write replaces or upserts the whole collection passed in.
type Backend interface {
	// Name identifies the tier in logs.
	Name() string

	// LoadProducts returns the full product collection.
	LoadProducts(ctx context.Context) ([]model.Product, error)

	// StoreProducts upserts every product by id.
	StoreProducts(ctx context.Context, products []model.Product) error

	// ReplaceProducts makes products the entire collection.
	ReplaceProducts(ctx context.Context, products []model.Product) error

	// LoadUsers returns the full credential collection.
	LoadUsers(ctx context.Context) ([]model.User, error)

	// StoreUsers upserts every user by id.
	StoreUsers(ctx context.Context, users []model.User) error
}

// Store is the data access layer used by the services. It owns both
// collections; nothing else mutates them.
type Store interface {
	Products(ctx context.Context) ([]model.Product, error)
	SaveProducts(ctx context.Context, products []model.Product) error
	ReplaceProducts(ctx context.Context, products []model.Product) error
	Users(ctx context.Context) ([]model.User, error)
	SaveUsers(ctx context.Context, users []model.User) error
}
