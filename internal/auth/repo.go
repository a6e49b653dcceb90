package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshtide/freshtide/internal/shared"
)

const pgUniqueViolation = "23505"

// Repository defines persistence operations for the auth module.
type Repository interface {
	Create(ctx context.Context, user User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone string) (*User, error)
	SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, token string, now time.Time) (*User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	List(ctx context.Context, req ListUsersRequest) ([]UserWithOrderCount, int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, role,
	reset_token, reset_token_expires_at, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, user User) (*User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+userColumns,
		strings.ToLower(user.Email), user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.Role,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, shared.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	return created, nil
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(email),
	)
	return mapNotFound(scanUser(row))
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return mapNotFound(scanUser(row))
}

func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone string) (*User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, firstName, lastName, phone,
	)
	return mapNotFound(scanUser(row))
}

func (r *PGRepository) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1`,
		userID, token, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("auth: set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE reset_token = $1 AND reset_token_expires_at > $2`,
		token, now.UTC(),
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	return user, nil
}

// UpdatePassword stores the new hash and clears the reset token so it cannot
// be replayed.
func (r *PGRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("auth: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, req ListUsersRequest) ([]UserWithOrderCount, int, error) {
	where := ""
	args := []interface{}{}
	if req.Search != "" {
		where = ` WHERE (u.first_name ILIKE $1 OR u.last_name ILIKE $1 OR u.email ILIKE $1)`
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := 0
	if req.Page > 1 {
		offset = (req.Page - 1) * limit
	}
	args = append(args, limit, offset)
	argPos := len(args)

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.phone, u.role,
		       u.reset_token, u.reset_token_expires_at, u.created_at, u.updated_at,
		       COUNT(o.id) AS order_count
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id`+where+`
		GROUP BY u.id
		ORDER BY u.created_at DESC
		LIMIT $`+strconv.Itoa(argPos-1)+` OFFSET $`+strconv.Itoa(argPos),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []UserWithOrderCount
	for rows.Next() {
		var u UserWithOrderCount
		var phone, resetToken pgtype.Text
		var resetExpires pgtype.Timestamptz
		var orderCount int64
		err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &u.Role,
			&resetToken, &resetExpires, &u.CreatedAt, &u.UpdatedAt, &orderCount,
		)
		if err != nil {
			return nil, 0, err
		}
		if phone.Valid {
			u.Phone = phone.String
		}
		if resetToken.Valid {
			u.ResetToken = &resetToken.String
		}
		if resetExpires.Valid {
			u.ResetTokenExpiresAt = &resetExpires.Time
		}
		u.OrderCount = int(orderCount)
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var phone, resetToken pgtype.Text
	var resetExpires pgtype.Timestamptz
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &u.Role,
		&resetToken, &resetExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	if resetToken.Valid {
		u.ResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		u.ResetTokenExpiresAt = &resetExpires.Time
	}
	return &u, nil
}

func mapNotFound(u *User, err error) (*User, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

var _ Repository = (*PGRepository)(nil)
