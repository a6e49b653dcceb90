package products

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/freshtide/freshtide/internal/shared"
)

const featuredLimit = 8

// ListResult pairs a product page with its pagination envelope.
type ListResult struct {
	Items      []Product         `json:"products"`
	Pagination shared.Pagination `json:"pagination"`
}

type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List serves the public catalog. Inactive products are never visible on
// this path regardless of what the caller put in the request.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	req.IncludeInactive = false
	req.ActiveFilter = nil
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 12
	}

	key, err := s.cache.BuildKey(ctx, "products", "list", listCacheSuffix(req))
	if err != nil {
		s.logger.Warn("catalog cache key unavailable", slog.String("error", err.Error()))
		return s.list(ctx, req)
	}
	var result ListResult
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		return s.list(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) list(ctx context.Context, req ListRequest) (*ListResult, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Product{}
	}
	return &ListResult{
		Items:      items,
		Pagination: shared.NewPagination(req.Page, req.Limit, total),
	}, nil
}

// Get returns a single active product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	key, err := s.cache.BuildKey(ctx, "products", "id", strconv.FormatInt(id, 10))
	if err != nil {
		return s.repo.GetActive(ctx, id)
	}
	var p Product
	err = s.cache.FetchJSON(ctx, key, &p, func(ctx context.Context) (interface{}, error) {
		return s.repo.GetActive(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Featured returns up to eight featured active products, newest first.
func (s *Service) Featured(ctx context.Context) ([]Product, error) {
	key, err := s.cache.BuildKey(ctx, "products", "featured")
	if err != nil {
		return s.repo.Featured(ctx, featuredLimit)
	}
	var items []Product
	err = s.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (interface{}, error) {
		return s.repo.Featured(ctx, featuredLimit)
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Product{}
	}
	return items, nil
}

// WeekendOffers returns active products currently flagged as weekend offers.
func (s *Service) WeekendOffers(ctx context.Context, page, limit int) (*ListResult, error) {
	offer := true
	return s.List(ctx, ListRequest{Page: page, Limit: limit, WeekendOffer: &offer})
}

// AdminList serves the back office listing, including inactive products.
func (s *Service) AdminList(ctx context.Context, req ListRequest) (*ListResult, error) {
	req.IncludeInactive = true
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	return s.list(ctx, req)
}

// AdminGet returns a product regardless of its active flag.
func (s *Service) AdminGet(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := validateProductInput(req); err != nil {
		return nil, err
	}
	ok, err := s.repo.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("category %d: %w", req.CategoryID, shared.ErrNotFound)
	}
	created, err := s.repo.Create(ctx, productFromRequest(req))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	if err := validateProductInput(req); err != nil {
		return nil, err
	}
	ok, err := s.repo.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("category %d: %w", req.CategoryID, shared.ErrNotFound)
	}
	updated, err := s.repo.Update(ctx, id, productFromRequest(req))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// InvalidateCache bumps the catalog cache version. Exposed for writers that
// change product visibility outside this service, like the offer scheduler.
func (s *Service) InvalidateCache(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump failed", slog.String("error", err.Error()))
	}
}

func validateProductInput(req CreateProductRequest) error {
	if req.Price.IsNegative() {
		return fmt.Errorf("price must not be negative: %w", shared.ErrValidation)
	}
	if req.Weight != nil && req.Weight.IsNegative() {
		return fmt.Errorf("weight must not be negative: %w", shared.ErrValidation)
	}
	return nil
}

func productFromRequest(req CreateProductRequest) Product {
	return Product{
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		Stock:                req.Stock,
		CategoryID:           req.CategoryID,
		ImageURL:             req.Image,
		ImagePublicID:        req.ImagePublicID,
		Weight:               req.Weight,
		Origin:               req.Origin,
		Featured:             req.Featured,
		Active:               req.Active,
		WeekendOfferEligible: req.WeekendOfferEligible,
		Sustainable:          req.Sustainable,
	}
}

func listCacheSuffix(req ListRequest) string {
	fmtPtr := func(v interface{}) string {
		switch t := v.(type) {
		case *int64:
			if t == nil {
				return "-"
			}
			return strconv.FormatInt(*t, 10)
		case *bool:
			if t == nil {
				return "-"
			}
			return strconv.FormatBool(*t)
		case *decimal.Decimal:
			if t == nil {
				return "-"
			}
			return t.String()
		}
		return "-"
	}
	return fmt.Sprintf("p%d:l%d:c%s:q%s:min%s:max%s:f%s:w%s:s%s:%s:%s",
		req.Page, req.Limit,
		fmtPtr(req.CategoryID), req.Search,
		fmtPtr(req.MinPrice), fmtPtr(req.MaxPrice),
		fmtPtr(req.Featured), fmtPtr(req.WeekendOffer), fmtPtr(req.Sustainable),
		req.SortBy, req.SortOrder,
	)
}
