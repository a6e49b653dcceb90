package categories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/freshtide/freshtide/internal/catalog/products"
	"github.com/freshtide/freshtide/internal/shared"
)

// categoryProductsLimit caps how many products ride along on a category
// detail response.
const categoryProductsLimit = 12

// CategoryDetail is a category with a sample of its active products.
type CategoryDetail struct {
	Category *Category          `json:"category"`
	Products []products.Product `json:"products"`
}

type Service struct {
	repo    Repository
	catalog *products.Service
	cache   *products.Cache
	logger  *slog.Logger
}

func NewService(repo Repository, catalog *products.Service, cache *products.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, cache: cache, logger: logger}
}

// List returns all categories with their active product counts.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	key, err := s.cache.BuildKey(ctx, "categories", "list")
	if err != nil {
		return s.listUncached(ctx)
	}
	var items []Category
	err = s.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (interface{}, error) {
		return s.listUncached(ctx)
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Category{}
	}
	return items, nil
}

func (s *Service) listUncached(ctx context.Context) ([]Category, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Category{}
	}
	return items, nil
}

// Get returns a category along with up to twelve of its active products.
func (s *Service) Get(ctx context.Context, id int64) (*CategoryDetail, error) {
	key, err := s.cache.BuildKey(ctx, "categories", "id", strconv.FormatInt(id, 10))
	if err != nil {
		return s.detail(ctx, id)
	}
	var detail CategoryDetail
	err = s.cache.FetchJSON(ctx, key, &detail, func(ctx context.Context) (interface{}, error) {
		return s.detail(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *Service) detail(ctx context.Context, id int64) (*CategoryDetail, error) {
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	listing, err := s.catalog.List(ctx, products.ListRequest{
		Page:       1,
		Limit:      categoryProductsLimit,
		CategoryID: &id,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: category, Products: listing.Items}, nil
}

func (s *Service) Create(ctx context.Context, req UpsertCategoryRequest) (*Category, error) {
	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.catalog.InvalidateCache(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertCategoryRequest) (*Category, error) {
	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.catalog.InvalidateCache(ctx)
	return updated, nil
}

// Delete removes a category unless active products still reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.ActiveProductCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%d active products attached: %w", count, shared.ErrCategoryInUse)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.catalog.InvalidateCache(ctx)
	return nil
}
