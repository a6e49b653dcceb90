package categories

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freshtide/freshtide/internal/catalog/products"
	"github.com/freshtide/freshtide/internal/shared"
)

type stubRepo struct {
	categories  map[int64]Category
	activeCount map[int64]int
	deleted     []int64
}

func (s *stubRepo) List(context.Context) ([]Category, error) {
	var items []Category
	for _, c := range s.categories {
		items = append(items, c)
	}
	return items, nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (*Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (s *stubRepo) Create(_ context.Context, req UpsertCategoryRequest) (*Category, error) {
	c := Category{ID: int64(len(s.categories) + 1), Name: req.Name}
	s.categories[c.ID] = c
	return &c, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, req UpsertCategoryRequest) (*Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c.Name = req.Name
	s.categories[id] = c
	return &c, nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.categories, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) ActiveProductCount(_ context.Context, id int64) (int, error) {
	return s.activeCount[id], nil
}

type emptyProductRepo struct{}

func (emptyProductRepo) List(context.Context, products.ListRequest) ([]products.Product, int, error) {
	return nil, 0, nil
}
func (emptyProductRepo) Get(context.Context, int64) (*products.Product, error) {
	return nil, shared.ErrNotFound
}
func (emptyProductRepo) GetActive(context.Context, int64) (*products.Product, error) {
	return nil, shared.ErrNotFound
}
func (emptyProductRepo) Featured(context.Context, int) ([]products.Product, error) { return nil, nil }
func (emptyProductRepo) Create(context.Context, products.Product) (*products.Product, error) {
	return nil, shared.ErrNotFound
}
func (emptyProductRepo) Update(context.Context, int64, products.Product) (*products.Product, error) {
	return nil, shared.ErrNotFound
}
func (emptyProductRepo) SoftDelete(context.Context, int64) error { return shared.ErrNotFound }
func (emptyProductRepo) CategoryExists(context.Context, int64) (bool, error) {
	return false, nil
}

func newTestService(repo *stubRepo) *Service {
	cache := products.NewCache(nil, 0)
	catalog := products.NewService(emptyProductRepo{}, cache, slog.Default())
	return NewService(repo, catalog, cache, slog.Default())
}

func TestDeleteBlockedWhileProductsAttached(t *testing.T) {
	repo := &stubRepo{
		categories:  map[int64]Category{1: {ID: 1, Name: "Shellfish"}},
		activeCount: map[int64]int{1: 3},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 1)
	require.True(t, errors.Is(err, shared.ErrCategoryInUse))
	require.Empty(t, repo.deleted)
}

func TestDeleteSucceedsWhenEmpty(t *testing.T) {
	repo := &stubRepo{
		categories:  map[int64]Category{2: {ID: 2, Name: "Retired"}},
		activeCount: map[int64]int{},
	}
	svc := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), 2))
	require.Equal(t, []int64{2}, repo.deleted)
}

func TestGetIncludesProductSample(t *testing.T) {
	repo := &stubRepo{
		categories: map[int64]Category{1: {ID: 1, Name: "Whitefish", ProductCount: 0}},
	}
	svc := newTestService(repo)

	detail, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Whitefish", detail.Category.Name)
	require.Empty(t, detail.Products)
}
