package offers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	eligible int64
	live     int64
	err      error
}

func (s *stubRepo) EnableWeekendOffers(context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.live = s.eligible
	return s.eligible, nil
}

func (s *stubRepo) DisableWeekendOffers(context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	n := s.live
	s.live = 0
	return n, nil
}

type countingCache struct {
	bumps int
}

func (c *countingCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

func TestEnableFlipsEligibleProducts(t *testing.T) {
	repo := &stubRepo{eligible: 4}
	cache := &countingCache{}
	svc := NewService(repo, cache, slog.Default())

	affected, err := svc.Enable(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), affected)
	require.Equal(t, 1, cache.bumps)
}

func TestDisableLeavesEligibilityForNextWeekend(t *testing.T) {
	repo := &stubRepo{eligible: 4}
	cache := &countingCache{}
	svc := NewService(repo, cache, slog.Default())
	ctx := context.Background()

	_, err := svc.Enable(ctx)
	require.NoError(t, err)

	affected, err := svc.Disable(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), affected)
	require.Equal(t, int64(0), repo.live)

	// The next enable picks the same products up again.
	again, err := svc.Enable(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), again)
}

func TestEnableSkipsCacheBumpOnFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	cache := &countingCache{}
	svc := NewService(repo, cache, slog.Default())

	_, err := svc.Enable(context.Background())
	require.Error(t, err)
	require.Zero(t, cache.bumps)
}
