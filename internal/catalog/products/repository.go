package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/freshtide/freshtide/internal/shared"
)

type Repository interface {
	List(ctx context.Context, req ListRequest) ([]Product, int, error)
	Get(ctx context.Context, id int64) (*Product, error)
	GetActive(ctx context.Context, id int64) (*Product, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id int64, p Product) (*Product, error)
	SoftDelete(ctx context.Context, id int64) error
	CategoryExists(ctx context.Context, categoryID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const productColumns = `p.id, p.name, p.description, p.price, p.stock, p.category_id,
	p.image_url, p.image_public_id, p.weight, p.origin, p.featured, p.active,
	p.weekend_offer_eligible, p.weekend_offer, p.sustainable, p.created_at, p.updated_at,
	c.id, c.name`

const productFrom = ` FROM products p JOIN categories c ON p.category_id = c.id`

func (r *repository) List(ctx context.Context, req ListRequest) ([]Product, int, error) {
	where := ""
	args := []interface{}{}
	argPos := 0

	and := func(clause string, vals ...interface{}) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, vals...)
	}
	next := func() string {
		argPos++
		return "$" + strconv.Itoa(argPos)
	}

	if !req.IncludeInactive {
		and("p.active = TRUE")
	} else if req.ActiveFilter != nil {
		and("p.active = "+next(), *req.ActiveFilter)
	}
	if req.CategoryID != nil {
		and("p.category_id = "+next(), *req.CategoryID)
	}
	if req.Search != "" {
		ph := next()
		and("(p.name ILIKE "+ph+" OR p.description ILIKE "+ph+")", "%"+req.Search+"%")
	}
	if req.MinPrice != nil {
		and("p.price >= "+next(), *req.MinPrice)
	}
	if req.MaxPrice != nil {
		and("p.price <= "+next(), *req.MaxPrice)
	}
	if req.Featured != nil {
		and("p.featured = "+next(), *req.Featured)
	}
	if req.WeekendOffer != nil {
		and("p.weekend_offer = "+next(), *req.WeekendOffer)
	}
	if req.Sustainable != nil {
		and("p.sustainable = "+next(), *req.Sustainable)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 12
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	query := "SELECT " + productColumns + productFrom + where +
		" ORDER BY " + sortOrder(req.SortBy, req.SortOrder) +
		" LIMIT " + next() + " OFFSET " + next()
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRow(ctx, "SELECT "+productColumns+productFrom+" WHERE p.id = $1", id)
	return mapNoRows(scanProduct(row))
}

// GetActive is the customer-facing lookup; inactive products are invisible
// here by contract, not by call-site discipline.
func (r *repository) GetActive(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRow(ctx, "SELECT "+productColumns+productFrom+" WHERE p.id = $1 AND p.active = TRUE", id)
	return mapNoRows(scanProduct(row))
}

func (r *repository) Featured(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 8
	}
	rows, err := r.db.Query(ctx,
		"SELECT "+productColumns+productFrom+
			" WHERE p.featured = TRUE AND p.active = TRUE ORDER BY p.created_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, stock, category_id, image_url, image_public_id,
			weight, origin, featured, active, weekend_offer_eligible, weekend_offer, sustainable,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13, NOW(), NOW())
		RETURNING id`,
		p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.ImageURL, p.ImagePublicID,
		decimalPtr(p.Weight), textPtr(p.Origin), p.Featured, p.Active, p.WeekendOfferEligible, p.Sustainable,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("products: create: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int64, p Product) (*Product, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, price = $4, stock = $5, category_id = $6,
			image_url = $7, image_public_id = $8, weight = $9, origin = $10, featured = $11,
			active = $12, weekend_offer_eligible = $13, sustainable = $14, updated_at = NOW()
		WHERE id = $1`,
		id, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.ImageURL, p.ImagePublicID,
		decimalPtr(p.Weight), textPtr(p.Origin), p.Featured, p.Active, p.WeekendOfferEligible, p.Sustainable,
	)
	if err != nil {
		return nil, fmt.Errorf("products: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

// SoftDelete flags the product inactive. Rows are never removed so historic
// order items keep a valid reference.
func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("products: soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists)
	return exists, err
}

func sortOrder(sortBy, sortDir string) string {
	column := "p.created_at"
	switch sortBy {
	case "price":
		column = "p.price"
	case "name":
		column = "p.name"
	case "stock":
		column = "p.stock"
	case "createdAt", "":
	}
	dir := "DESC"
	if sortDir == "asc" {
		dir = "ASC"
	}
	return column + " " + dir
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var imageURL, imagePublicID, origin pgtype.Text
	var weight pgtype.Numeric
	var cat CategoryRef
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&imageURL, &imagePublicID, &weight, &origin, &p.Featured, &p.Active,
		&p.WeekendOfferEligible, &p.WeekendOffer, &p.Sustainable, &p.CreatedAt, &p.UpdatedAt,
		&cat.ID, &cat.Name,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		p.ImageURL = imageURL.String
	}
	if imagePublicID.Valid {
		p.ImagePublicID = imagePublicID.String
	}
	if origin.Valid {
		p.Origin = &origin.String
	}
	if weight.Valid {
		f, err := weight.Float64Value()
		if err == nil && f.Valid {
			d := decimal.NewFromFloat(f.Float64)
			p.Weight = &d
		}
	}
	p.Category = &cat
	return &p, nil
}

func mapNoRows(p *Product, err error) (*Product, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func decimalPtr(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}

func textPtr(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
