package service

import (
	"context"

	"catalog-api/internal/model"
)

// CatalogService defines operations for product management.
type CatalogService interface {
	// List returns the catalogue, newest first. Unless includeHidden is set,
	// only products that are both active and available are returned.
	List(ctx context.Context, includeHidden bool) ([]model.Product, error)

	// Get retrieves a single product by id regardless of its visibility.
	Get(ctx context.Context, id int64) (*model.Product, error)

	// Create adds a product, assigning an id and creation time.
	Create(ctx context.Context, input *model.ProductInput) (*model.Product, error)

	// Update merges patch into an existing product.
	Update(ctx context.Context, id int64, patch *model.ProductPatch) (*model.Product, error)

	// Delete soft-deletes a product by marking it inactive.
	Delete(ctx context.Context, id int64) (*model.Product, error)

	// Import replaces the whole catalogue and returns the number of products stored.
	Import(ctx context.Context, products []model.Product) (int, error)
}

// CredentialService defines operations on administrative accounts.
type CredentialService interface {
	// Bootstrap creates the default administrator when no account exists.
	Bootstrap(ctx context.Context) error

	// VerifyCredentials checks a username and password pair.
	VerifyCredentials(ctx context.Context, username, password string) (*model.Identity, error)

	// Login verifies credentials and issues a bearer token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)

	// ChangePassword replaces the password of userID after verifying the old one.
	ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error
}
