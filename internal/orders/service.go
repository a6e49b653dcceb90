package orders

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/freshtide/freshtide/internal/mailer"
	"github.com/freshtide/freshtide/internal/shared"
)

// orderNumberDraws caps how many random numbers checkout tries before
// giving up. Collisions are rare enough that hitting the cap means the
// number space is effectively saturated.
const orderNumberDraws = 10

// MailQueue enqueues outbound mail without blocking the request.
type MailQueue interface {
	EnqueueMessage(ctx context.Context, msg mailer.Message) error
}

type Service struct {
	store      Store
	mail       MailQueue
	logger     *slog.Logger
	drawNumber func() string
}

func NewService(store Store, mail MailQueue, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		mail:       mail,
		logger:     logger,
		drawNumber: randomOrderNumber,
	}
}

// Create places an order. The whole of checkout runs in one transaction:
// every product row is locked, checked and decremented before the order and
// its items are written, so a failure at any line leaves no partial state.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, userID *int64) (*Order, error) {
	lines := mergeLines(req.Items)

	var placed *Order
	err := s.store.InTx(ctx, func(tx TxRepository) error {
		total := decimal.Zero
		items := make([]OrderItem, 0, len(lines))

		// Lock rows in ascending product order so two concurrent
		// checkouts over the same products cannot deadlock.
		for _, line := range lines {
			product, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return fmt.Errorf("product %d: %w", line.ProductID, shared.ErrProductUnavailable)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("product %d: %w", line.ProductID, shared.ErrInsufficientStock)
			}
			if err := tx.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  line.Quantity,
			})
		}

		number, err := s.uniqueOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		order := &Order{
			OrderNumber:     number,
			UserID:          userID,
			CustomerName:    req.CustomerName,
			Email:           req.Email,
			Phone:           req.Phone,
			ShippingAddress: req.ShippingAddress,
			Status:          StatusPending,
			Total:           total,
		}
		id, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, id, items); err != nil {
			return err
		}
		order.ID = id
		order.Items = items
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, placed)
	return placed, nil
}

func (s *Service) uniqueOrderNumber(ctx context.Context, tx TxRepository) (string, error) {
	for i := 0; i < orderNumberDraws; i++ {
		number := s.drawNumber()
		exists, err := tx.OrderNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", shared.ErrOrderNumberExhausted
}

// GetByNumber returns an order for the confirmation page. Guest orders are
// public by number; orders owned by an account are only visible to that
// account or an admin.
func (s *Service) GetByNumber(ctx context.Context, number string, caller *shared.User) (*Order, error) {
	order, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order.UserID != nil {
		if caller == nil {
			return nil, shared.ErrUnauthenticated
		}
		if caller.ID != *order.UserID && !caller.IsAdmin() {
			return nil, shared.ErrForbidden
		}
	}
	return order, nil
}

// ListByUser returns the caller's order history, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64, page, limit int) ([]Order, shared.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	orders, total, err := s.store.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, shared.NewPagination(page, limit, total), nil
}

// List serves the back office order listing.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Order, shared.Pagination, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	orders, total, err := s.store.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, shared.NewPagination(req.Page, req.Limit, total), nil
}

// GetByID returns an order by primary key for the back office.
func (s *Service) GetByID(ctx context.Context, id int64) (*Order, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateStatus moves an order to a new fulfilment state.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, shared.ErrValidation)
	}
	return s.store.UpdateStatus(ctx, id, status)
}

func (s *Service) sendConfirmation(ctx context.Context, order *Order) {
	if s.mail == nil {
		return
	}
	msg := mailer.Message{
		To:      order.Email,
		Subject: fmt.Sprintf("Order confirmation #%s", order.OrderNumber),
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Thanks for your order! Your order number is <strong>%s</strong> and the total is %s.</p><p>We will let you know as soon as it ships.</p>",
			order.CustomerName, order.OrderNumber, order.Total.StringFixed(2),
		),
		Text: fmt.Sprintf(
			"Hi %s,\n\nThanks for your order! Your order number is %s and the total is %s.\n\nWe will let you know as soon as it ships.\n",
			order.CustomerName, order.OrderNumber, order.Total.StringFixed(2),
		),
	}
	if err := s.mail.EnqueueMessage(ctx, msg); err != nil {
		s.logger.Error("order confirmation mail enqueue failed",
			slog.String("order_number", order.OrderNumber),
			slog.Any("error", err),
		)
	}
}

// mergeLines folds duplicate product lines together and sorts by product id
// to give checkout a stable locking order.
func mergeLines(items []CreateOrderItem) []CreateOrderItem {
	byProduct := make(map[int64]int, len(items))
	for _, item := range items {
		byProduct[item.ProductID] += item.Quantity
	}
	merged := make([]CreateOrderItem, 0, len(byProduct))
	for id, qty := range byProduct {
		merged = append(merged, CreateOrderItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged
}

// randomOrderNumber draws an eight digit number.
func randomOrderNumber() string {
	return fmt.Sprintf("%08d", 10000000+rand.Intn(90000000))
}
