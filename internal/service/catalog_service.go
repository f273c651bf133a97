package service

import (
	"context"
	"sort"
	"time"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService on top of the data access layer.
//
// Every mutation reads the whole collection, changes it in memory and writes
// it back. There is no locking, so concurrent mutations can overwrite each
// other. When every storage tier rejects a write the failure is logged and
// the caller still receives the changed record; the change is then lost.
type catalogService struct {
	store  repository.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store repository.Store, logger zerolog.Logger) CatalogService {
	return &catalogService{
		store:  store,
		logger: logger.With().Str("service", "catalog").Logger(),
		now:    time.Now,
	}
}

// List returns the catalogue filtered by visibility.
func (s *catalogService) List(ctx context.Context, includeHidden bool) ([]model.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(products)

	if includeHidden {
		return products, nil
	}

	visible := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.IsPublic() {
			visible = append(visible, p)
		}
	}

	s.logger.Debug().
		Int("total", len(products)).
		Int("visible", len(visible)).
		Msg("listed public products")

	return visible, nil
}

// Get retrieves a single product by id.
func (s *catalogService) Get(ctx context.Context, id int64) (*model.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return &products[idx], nil
}

// Create adds a new product to the catalogue.
func (s *catalogService) Create(ctx context.Context, input *model.ProductInput) (*model.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	var id int64
	if input.ID != nil && *input.ID != 0 {
		id = *input.ID
		if indexOf(products, id) >= 0 {
			s.logger.Warn().Int64("product_id", id).Msg("rejected duplicate product id")
			return nil, model.ErrDuplicateID
		}
	} else {
		id = nextID(products, now)
	}

	product := model.Product{
		ID:        id,
		Name:      input.Name,
		Price:     input.Price,
		Category:  input.Category,
		Available: input.Available,
		ImageURL:  input.ImageURL,
		Active:    input.Active == nil || *input.Active,
		CreatedAt: now,
	}

	products = append(products, product)
	s.persist(ctx, "create", products)

	s.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")

	return &product, nil
}

// Update merges a partial update into an existing product. The id is immutable.
func (s *catalogService) Update(ctx context.Context, id int64, patch *model.ProductPatch) (*model.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return nil, model.ErrProductNotFound
	}

	patch.Apply(&products[idx])
	s.persist(ctx, "update", products)

	s.logger.Info().Int64("product_id", id).Msg("product updated")

	updated := products[idx]
	return &updated, nil
}

// Delete marks a product inactive. The record stays in the collection.
func (s *catalogService) Delete(ctx context.Context, id int64) (*model.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return nil, model.ErrProductNotFound
	}

	products[idx].Active = false
	s.persist(ctx, "delete", products)

	s.logger.Info().Int64("product_id", id).Msg("product soft-deleted")

	deleted := products[idx]
	return &deleted, nil
}

// Import replaces the catalogue. Records without an id or creation time get one.
// Two records carrying the same id reject the whole import.
func (s *catalogService) Import(ctx context.Context, products []model.Product) (int, error) {
	seen := make(map[int64]struct{}, len(products))
	for _, p := range products {
		if p.ID == 0 {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			s.logger.Warn().Int64("product_id", p.ID).Msg("import rejected: duplicate id")
			return 0, model.ErrDuplicateID
		}
		seen[p.ID] = struct{}{}
	}

	now := s.now().UTC()

	imported := make([]model.Product, len(products))
	copy(imported, products)

	for i := range imported {
		if imported[i].CreatedAt.IsZero() {
			imported[i].CreatedAt = now
		}
	}
	for i := range imported {
		if imported[i].ID == 0 {
			imported[i].ID = nextID(imported, now)
		}
	}

	if err := s.store.ReplaceProducts(ctx, imported); err != nil {
		s.logger.Error().Err(err).Int("count", len(imported)).Msg("import was not persisted")
	}

	s.logger.Info().Int("count", len(imported)).Msg("catalogue imported")

	return len(imported), nil
}

func (s *catalogService) load(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products")
		return nil, model.NewBackendError("failed to load products", err)
	}
	return products, nil
}

func (s *catalogService) persist(ctx context.Context, op string, products []model.Product) {
	if err := s.store.SaveProducts(ctx, products); err != nil {
		s.logger.Error().Err(err).Str("op", op).Msg("product change was not persisted")
	}
}

func indexOf(products []model.Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID returns the current time in milliseconds, moved forward past any id
// already taken.
func nextID(products []model.Product, now time.Time) int64 {
	id := now.UnixMilli()
	for indexOf(products, id) >= 0 {
		id++
	}
	return id
}

// sortNewestFirst orders products by creation time, newest first, when every
// product carries one. Otherwise the store order is kept.
func sortNewestFirst(products []model.Product) {
	for i := range products {
		if products[i].CreatedAt.IsZero() {
			return
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}
