package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/freshtide/freshtide/internal/shared"
)

// memStore is an in-memory Store. InTx takes a global lock and restores a
// snapshot when fn fails, mirroring the all-or-nothing commit of the real
// transaction.
type memStore struct {
	mu       sync.Mutex
	products map[int64]CheckoutProduct
	orders   []Order
	nextID   int64
}

func newMemStore(products ...CheckoutProduct) *memStore {
	s := &memStore{products: map[int64]CheckoutProduct{}, nextID: 1}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) InTx(_ context.Context, fn func(TxRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[int64]CheckoutProduct, len(s.products))
	for id, p := range s.products {
		snapshot[id] = p
	}
	ordersLen := len(s.orders)

	if err := fn(&memTx{store: s}); err != nil {
		s.products = snapshot
		s.orders = s.orders[:ordersLen]
		return err
	}
	return nil
}

type memTx struct {
	store *memStore
}

func (t *memTx) GetProductForUpdate(_ context.Context, productID int64) (*CheckoutProduct, error) {
	p, ok := t.store.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, shared.ErrProductUnavailable)
	}
	return &p, nil
}

func (t *memTx) DecrementStock(_ context.Context, productID int64, quantity int) error {
	p, ok := t.store.products[productID]
	if !ok || p.Stock < quantity {
		return fmt.Errorf("product %d: %w", productID, shared.ErrInsufficientStock)
	}
	p.Stock -= quantity
	t.store.products[productID] = p
	return nil
}

func (t *memTx) OrderNumberExists(_ context.Context, number string) (bool, error) {
	for _, o := range t.store.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertOrder(_ context.Context, order *Order) (int64, error) {
	id := t.store.nextID
	t.store.nextID++
	stored := *order
	stored.ID = id
	t.store.orders = append(t.store.orders, stored)
	return id, nil
}

func (t *memTx) InsertItems(_ context.Context, orderID int64, items []OrderItem) error {
	for i := range t.store.orders {
		if t.store.orders[i].ID == orderID {
			t.store.orders[i].Items = items
			return nil
		}
	}
	return errors.New("order not found")
}

func (s *memStore) GetByNumber(_ context.Context, number string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNumber == number {
			copy := o
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) GetByID(_ context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			copy := o
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) ListByUser(_ context.Context, userID int64, page, limit int) ([]Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []Order
	for _, o := range s.orders {
		if o.UserID != nil && *o.UserID == userID {
			mine = append(mine, o)
		}
	}
	return mine, len(mine), nil
}

func (s *memStore) List(_ context.Context, req ListRequest) ([]Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Order(nil), s.orders...), len(s.orders), nil
}

func (s *memStore) UpdateStatus(_ context.Context, id int64, status OrderStatus) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			copy := s.orders[i]
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) stock(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func newCheckoutService(store Store) *Service {
	return NewService(store, nil, slog.Default())
}

func checkoutRequest(items ...CreateOrderItem) CreateOrderRequest {
	return CreateOrderRequest{
		Items:           items,
		CustomerName:    "Astrid Berg",
		Email:           "astrid@example.com",
		Phone:           "004799887766",
		ShippingAddress: "Fisketorget 2, 5014 Bergen",
	}
}

func TestCreateDecrementsStockAndSnapshotsPrices(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "King Crab", Price: decimal.NewFromInt(120), Stock: 10, Active: true,
	})
	svc := newCheckoutService(store)

	order, err := svc.Create(context.Background(), checkoutRequest(
		CreateOrderItem{ProductID: 1, Quantity: 3},
	), nil)
	require.NoError(t, err)

	require.Equal(t, StatusPending, order.Status)
	require.Len(t, order.OrderNumber, 8)
	require.True(t, decimal.NewFromInt(360).Equal(order.Total))
	require.Len(t, order.Items, 1)
	require.Equal(t, "King Crab", order.Items[0].Name)
	require.True(t, decimal.NewFromInt(120).Equal(order.Items[0].Price))
	require.Equal(t, 7, store.stock(1))
}

func TestCreateFailsWholesaleOnInsufficientStock(t *testing.T) {
	store := newMemStore(
		CheckoutProduct{ID: 1, Name: "Oysters", Price: decimal.NewFromInt(4), Stock: 50, Active: true},
		CheckoutProduct{ID: 2, Name: "Langoustine", Price: decimal.NewFromInt(18), Stock: 2, Active: true},
	)
	svc := newCheckoutService(store)

	_, err := svc.Create(context.Background(), checkoutRequest(
		CreateOrderItem{ProductID: 1, Quantity: 10},
		CreateOrderItem{ProductID: 2, Quantity: 5},
	), nil)
	require.True(t, errors.Is(err, shared.ErrInsufficientStock))

	// The first line must have been rolled back with the rest.
	require.Equal(t, 50, store.stock(1))
	require.Equal(t, 2, store.stock(2))
	require.Empty(t, store.orders)
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "Retired Roe", Price: decimal.NewFromInt(30), Stock: 5, Active: false,
	})
	svc := newCheckoutService(store)

	_, err := svc.Create(context.Background(), checkoutRequest(
		CreateOrderItem{ProductID: 1, Quantity: 1},
	), nil)
	require.True(t, errors.Is(err, shared.ErrProductUnavailable))
	require.Equal(t, 5, store.stock(1))
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutService(store)

	_, err := svc.Create(context.Background(), checkoutRequest(
		CreateOrderItem{ProductID: 404, Quantity: 1},
	), nil)
	require.True(t, errors.Is(err, shared.ErrProductUnavailable))
}

func TestCreateMergesDuplicateLines(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "Mussels", Price: decimal.NewFromInt(6), Stock: 10, Active: true,
	})
	svc := newCheckoutService(store)

	order, err := svc.Create(context.Background(), checkoutRequest(
		CreateOrderItem{ProductID: 1, Quantity: 2},
		CreateOrderItem{ProductID: 1, Quantity: 3},
	), nil)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.Equal(t, 5, order.Items[0].Quantity)
	require.Equal(t, 5, store.stock(1))
}

// Two sequential orders of three against a stock of five: the first wins,
// the second fails cleanly and the two remaining units stay on the shelf.
func TestContendedStockAdmitsExactlyOneOrder(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "Halibut", Price: decimal.NewFromInt(25), Stock: 5, Active: true,
	})
	svc := newCheckoutService(store)
	ctx := context.Background()

	_, firstErr := svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 3}), nil)
	_, secondErr := svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 3}), nil)

	require.NoError(t, firstErr)
	require.True(t, errors.Is(secondErr, shared.ErrInsufficientStock))
	require.Equal(t, 2, store.stock(1))
	require.Len(t, store.orders, 1)
}

func TestOrderNumbersAreUniqueAcrossCollisions(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "Scallops", Price: decimal.NewFromInt(15), Stock: 100, Active: true,
	})
	svc := newCheckoutService(store)

	// A rigged draw that repeats numbers forces the in-tx existence check
	// to skip past collisions.
	draws := []string{"11111111", "11111111", "22222222"}
	i := 0
	svc.drawNumber = func() string {
		n := draws[i%len(draws)]
		i++
		return n
	}
	ctx := context.Background()

	first, err := svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 1}), nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 1}), nil)
	require.NoError(t, err)

	require.Equal(t, "11111111", first.OrderNumber)
	require.Equal(t, "22222222", second.OrderNumber)
}

func TestOrderNumberDrawGivesUpEventually(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "Scallops", Price: decimal.NewFromInt(15), Stock: 100, Active: true,
	})
	svc := newCheckoutService(store)
	svc.drawNumber = func() string { return "99999999" }
	ctx := context.Background()

	_, err := svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 1}), nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 1}), nil)
	require.True(t, errors.Is(err, shared.ErrOrderNumberExhausted))

	// Exhaustion rolls the decrement back too.
	require.Equal(t, 99, store.stock(1))
}

func TestGetByNumberGuardsOwnedOrders(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "Cod", Price: decimal.NewFromInt(10), Stock: 10, Active: true,
	})
	svc := newCheckoutService(store)
	ctx := context.Background()

	owner := int64(7)
	placed, err := svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 1}), &owner)
	require.NoError(t, err)

	_, err = svc.GetByNumber(ctx, placed.OrderNumber, nil)
	require.True(t, errors.Is(err, shared.ErrUnauthenticated))

	_, err = svc.GetByNumber(ctx, placed.OrderNumber, &shared.User{ID: 8, Role: shared.RoleCustomer})
	require.True(t, errors.Is(err, shared.ErrForbidden))

	got, err := svc.GetByNumber(ctx, placed.OrderNumber, &shared.User{ID: 7, Role: shared.RoleCustomer})
	require.NoError(t, err)
	require.Equal(t, placed.OrderNumber, got.OrderNumber)

	admin, err := svc.GetByNumber(ctx, placed.OrderNumber, &shared.User{ID: 99, Role: shared.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, placed.OrderNumber, admin.OrderNumber)
}

func TestGuestOrderIsPublicByNumber(t *testing.T) {
	store := newMemStore(CheckoutProduct{
		ID: 1, Name: "Cod", Price: decimal.NewFromInt(10), Stock: 10, Active: true,
	})
	svc := newCheckoutService(store)
	ctx := context.Background()

	placed, err := svc.Create(ctx, checkoutRequest(CreateOrderItem{ProductID: 1, Quantity: 1}), nil)
	require.NoError(t, err)

	got, err := svc.GetByNumber(ctx, placed.OrderNumber, nil)
	require.NoError(t, err)
	require.Equal(t, placed.OrderNumber, got.OrderNumber)
}

func TestUpdateStatusRejectsUnknownState(t *testing.T) {
	svc := newCheckoutService(newMemStore())

	_, err := svc.UpdateStatus(context.Background(), 1, OrderStatus("MISPLACED"))
	require.True(t, errors.Is(err, shared.ErrValidation))

	// CONFIRMED is not part of the fulfilment lifecycle.
	_, err = svc.UpdateStatus(context.Background(), 1, OrderStatus("CONFIRMED"))
	require.True(t, errors.Is(err, shared.ErrValidation))
}

func TestOrderStatusEnumIsClosed(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		require.True(t, s.Valid(), string(s))
	}
	require.False(t, OrderStatus("CONFIRMED").Valid())
	require.False(t, OrderStatus("pending").Valid())
}
