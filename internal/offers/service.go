// Package offers runs the weekend promotion. Operators mark products as
// eligible ahead of time; the scheduler turns the live offer flag on for
// the weekend and off again without touching eligibility.
package offers

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	EnableWeekendOffers(ctx context.Context) (int64, error)
	DisableWeekendOffers(ctx context.Context) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) EnableWeekendOffers(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET weekend_offer = TRUE, updated_at = NOW()
		WHERE weekend_offer_eligible = TRUE AND active = TRUE AND weekend_offer = FALSE`,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) DisableWeekendOffers(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET weekend_offer = FALSE, updated_at = NOW()
		WHERE weekend_offer = TRUE`,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CacheInvalidator bumps the catalog cache after an offer flip.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo   Repository
	cache  CacheInvalidator
	logger *slog.Logger
}

func NewService(repo Repository, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Enable flips the live offer flag on for every eligible active product.
func (s *Service) Enable(ctx context.Context) (int64, error) {
	affected, err := s.repo.EnableWeekendOffers(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	s.logger.Info("weekend offers enabled", slog.Int64("products", affected))
	return affected, nil
}

// Disable flips the live offer flag off everywhere, leaving eligibility
// intact for the next weekend.
func (s *Service) Disable(ctx context.Context) (int64, error) {
	affected, err := s.repo.DisableWeekendOffers(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	s.logger.Info("weekend offers disabled", slog.Int64("products", affected))
	return affected, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump failed", slog.String("error", err.Error()))
	}
}
