package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshtide/freshtide/internal/shared"
)

const pgUniqueViolation = "23505"

// mapDuplicateName turns the unique-index violation on categories.name into
// its domain error.
func mapDuplicateName(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return shared.ErrDuplicateCategory
	}
	return err
}

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, req UpsertCategoryRequest) (*Category, error)
	Update(ctx context.Context, id int64, req UpsertCategoryRequest) (*Category, error)
	Delete(ctx context.Context, id int64) error
	ActiveProductCount(ctx context.Context, id int64) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const categorySelect = `
	SELECT c.id, c.name, c.description, c.image_url,
		(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.active = TRUE),
		c.created_at, c.updated_at
	FROM categories c`

func (r *repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, categorySelect+" ORDER BY c.name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+" WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, req UpsertCategoryRequest) (*Category, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`,
		req.Name, req.Description, req.Image,
	).Scan(&id)
	if err != nil {
		if mapped := mapDuplicateName(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("categories: create: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int64, req UpsertCategoryRequest) (*Category, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE categories SET name = $2, description = $3, image_url = $4, updated_at = NOW()
		WHERE id = $1`,
		id, req.Name, req.Description, req.Image,
	)
	if err != nil {
		if mapped := mapDuplicateName(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("categories: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("categories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ActiveProductCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1 AND active = TRUE`, id,
	).Scan(&count)
	return count, err
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	var description, imageURL pgtype.Text
	if err := row.Scan(&c.ID, &c.Name, &description, &imageURL, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		c.Description = description.String
	}
	if imageURL.Valid {
		c.ImageURL = imageURL.String
	}
	return &c, nil
}
