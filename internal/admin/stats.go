// Package admin serves the back office dashboard.
package admin

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/freshtide/freshtide/internal/orders"
)

// recentOrdersLimit caps the dashboard's recent order feed.
const recentOrdersLimit = 5

// Stats is the dashboard summary. Revenue excludes cancelled orders.
type Stats struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	RecentOrders  []orders.Order  `json:"recentOrders"`
}

type StatsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountOrders(ctx context.Context) (int, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	RecentOrders(ctx context.Context, limit int) ([]orders.Order, error)
}

type statsRepository struct {
	db     *pgxpool.Pool
	orders orders.Store
}

func NewStatsRepository(pool *pgxpool.Pool, orderStore orders.Store) StatsRepository {
	return &statsRepository{db: pool, orders: orderStore}
}

func (r *statsRepository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *statsRepository) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products WHERE active = TRUE`)
}

func (r *statsRepository) CountOrders(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders`)
}

func (r *statsRepository) count(ctx context.Context, query string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *statsRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> $1`,
		orders.StatusCancelled,
	).Scan(&revenue)
	return revenue, err
}

func (r *statsRepository) RecentOrders(ctx context.Context, limit int) ([]orders.Order, error) {
	listed, _, err := r.orders.List(ctx, orders.ListRequest{Page: 1, Limit: limit})
	return listed, err
}

type Service struct {
	repo StatsRepository
}

func NewService(repo StatsRepository) *Service {
	return &Service{repo: repo}
}

// Stats gathers the dashboard numbers concurrently.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountProducts(ctx)
		stats.TotalProducts = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountOrders(ctx)
		stats.TotalOrders = n
		return err
	})
	g.Go(func() error {
		revenue, err := s.repo.Revenue(ctx)
		stats.TotalRevenue = revenue
		return err
	})
	g.Go(func() error {
		recent, err := s.repo.RecentOrders(ctx, recentOrdersLimit)
		if recent == nil {
			recent = []orders.Order{}
		}
		stats.RecentOrders = recent
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
