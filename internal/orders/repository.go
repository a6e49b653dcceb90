package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/freshtide/freshtide/internal/platform/db"
	"github.com/freshtide/freshtide/internal/shared"
)

// TxRepository is the slice of storage checkout uses inside a single
// transaction. All of it runs against the same tx so the product locks
// taken by GetProductForUpdate hold until commit.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (*CheckoutProduct, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	InsertOrder(ctx context.Context, order *Order) (int64, error)
	InsertItems(ctx context.Context, orderID int64, items []OrderItem) error
}

// Store runs checkout work transactionally and serves order reads.
type Store interface {
	InTx(ctx context.Context, fn func(TxRepository) error) error
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64, page, limit int) ([]Order, int, error)
	List(ctx context.Context, req ListRequest) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
}

type store struct {
	db *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &store{db: pool}
}

func (s *store) InTx(ctx context.Context, fn func(TxRepository) error) error {
	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, productID int64) (*CheckoutProduct, error) {
	var p CheckoutProduct
	err := r.tx.QueryRow(ctx,
		`SELECT id, name, price, stock, active FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", productID, shared.ErrProductUnavailable)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock only succeeds when enough stock remains at the moment of
// the update. Zero rows affected means a concurrent order drained it first.
func (r *txRepository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
		quantity, productID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", productID, shared.ErrInsufficientStock)
	}
	return nil
}

func (r *txRepository) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)`, number,
	).Scan(&exists)
	return exists, err
}

func (r *txRepository) InsertOrder(ctx context.Context, order *Order) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, customer_name, email, phone, shipping_address,
			status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`,
		order.OrderNumber, order.UserID, order.CustomerName, order.Email, order.Phone,
		order.ShippingAddress, order.Status, order.Total,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: insert: %w", err)
	}
	return id, nil
}

func (r *txRepository) InsertItems(ctx context.Context, orderID int64, items []OrderItem) error {
	for _, item := range items {
		_, err := r.tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.ProductID, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("orders: insert item: %w", err)
		}
	}
	return nil
}

const orderColumns = `o.id, o.order_number, o.user_id, o.customer_name, o.email, o.phone,
	o.shipping_address, o.status, o.total, o.created_at, o.updated_at`

func (s *store) GetByNumber(ctx context.Context, number string) (*Order, error) {
	order, err := scanOrder(s.db.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders o WHERE o.order_number = $1", number,
	))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return s.attachItems(ctx, order)
}

func (s *store) GetByID(ctx context.Context, id int64) (*Order, error) {
	order, err := scanOrder(s.db.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders o WHERE o.id = $1", id,
	))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return s.attachItems(ctx, order)
}

func (s *store) ListByUser(ctx context.Context, userID int64, page, limit int) ([]Order, int, error) {
	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx,
		"SELECT "+orderColumns+` FROM orders o WHERE o.user_id = $1
		 ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachItemsBulk(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *store) List(ctx context.Context, req ListRequest) ([]Order, int, error) {
	where := ""
	args := []interface{}{}
	argPos := 0
	next := func() string {
		argPos++
		return "$" + strconv.Itoa(argPos)
	}
	and := func(clause string, vals ...interface{}) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, vals...)
	}
	if req.Status != nil {
		and("o.status = "+next(), *req.Status)
	}
	if req.Search != "" {
		ph := next()
		and("(o.order_number ILIKE "+ph+" OR o.email ILIKE "+ph+" OR o.customer_name ILIKE "+ph+")",
			"%"+req.Search+"%")
	}

	var total int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders o"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + " FROM orders o" + where +
		" ORDER BY o.created_at DESC LIMIT " + next() + " OFFSET " + next()
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachItemsBulk(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *store) UpdateStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status,
	)
	if err != nil {
		return nil, fmt.Errorf("orders: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *store) attachItems(ctx context.Context, order *Order) (*Order, error) {
	orders := []Order{*order}
	if err := s.attachItemsBulk(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *store) attachItemsBulk(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]*Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	rows, err := s.db.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.name, i.price, i.quantity,
			p.id, p.name, p.image_url
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		var summary ProductSummary
		var imageURL pgtype.Text
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity,
			&summary.ID, &summary.Name, &imageURL,
		); err != nil {
			return err
		}
		if imageURL.Valid {
			summary.ImageURL = imageURL.String
		}
		item.Product = &summary
		if order, ok := index[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var userID pgtype.Int8
	var total decimal.Decimal
	err := row.Scan(
		&o.ID, &o.OrderNumber, &userID, &o.CustomerName, &o.Email, &o.Phone,
		&o.ShippingAddress, &o.Status, &total, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		o.UserID = &userID.Int64
	}
	o.Total = total
	return &o, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return err
}
