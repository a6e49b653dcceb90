package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/freshtide/freshtide/internal/orders"
)

type stubStatsRepo struct {
	users      int
	products   int
	orderCount int
	revenue    decimal.Decimal
	recent     []orders.Order
	revenueErr error
}

func (s *stubStatsRepo) CountUsers(context.Context) (int, error)    { return s.users, nil }
func (s *stubStatsRepo) CountProducts(context.Context) (int, error) { return s.products, nil }
func (s *stubStatsRepo) CountOrders(context.Context) (int, error)   { return s.orderCount, nil }
func (s *stubStatsRepo) Revenue(context.Context) (decimal.Decimal, error) {
	return s.revenue, s.revenueErr
}
func (s *stubStatsRepo) RecentOrders(context.Context, int) ([]orders.Order, error) {
	return s.recent, nil
}

func TestStatsAggregatesAllSources(t *testing.T) {
	svc := NewService(&stubStatsRepo{
		users:      12,
		products:   40,
		orderCount: 7,
		revenue:    decimal.NewFromInt(1840),
		recent:     []orders.Order{{ID: 7, OrderNumber: "12345678"}},
	})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, stats.TotalUsers)
	require.Equal(t, 40, stats.TotalProducts)
	require.Equal(t, 7, stats.TotalOrders)
	require.True(t, decimal.NewFromInt(1840).Equal(stats.TotalRevenue))
	require.Len(t, stats.RecentOrders, 1)
}

func TestStatsFailsWhenAnySourceFails(t *testing.T) {
	svc := NewService(&stubStatsRepo{revenueErr: errors.New("db down")})

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
}

func TestStatsReturnsEmptyRecentSlice(t *testing.T) {
	svc := NewService(&stubStatsRepo{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stats.RecentOrders)
	require.Empty(t, stats.RecentOrders)
}
