package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/freshtide/freshtide/internal/offers"
)

// WeekendOfferJob runs the scheduled promotion flips.
type WeekendOfferJob struct {
	Offers *offers.Service
	Logger *slog.Logger
}

// NewWeekendOfferJob initialises the weekend offer handler.
func NewWeekendOfferJob(svc *offers.Service, logger *slog.Logger) *WeekendOfferJob {
	return &WeekendOfferJob{Offers: svc, Logger: logger}
}

// HandleEnable executes the Friday afternoon flip.
func (j *WeekendOfferJob) HandleEnable(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Offers == nil {
		return errors.New("weekend offers: handler not configured")
	}
	start := time.Now()
	logger := j.logger(TaskOffersEnable)
	logger.Info("enabling weekend offers")

	affected, err := j.Offers.Enable(ctx)
	if err != nil {
		logger.Error("enable failed", slog.Any("error", err))
		return err
	}
	logger.Info("weekend offers live",
		slog.Int64("products", affected),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// HandleDisable executes the Monday morning flip.
func (j *WeekendOfferJob) HandleDisable(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Offers == nil {
		return errors.New("weekend offers: handler not configured")
	}
	start := time.Now()
	logger := j.logger(TaskOffersDisable)
	logger.Info("disabling weekend offers")

	affected, err := j.Offers.Disable(ctx)
	if err != nil {
		logger.Error("disable failed", slog.Any("error", err))
		return err
	}
	logger.Info("weekend offers ended",
		slog.Int64("products", affected),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *WeekendOfferJob) logger(task string) *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", task))
	}
	return slog.Default().With(slog.String("job", task))
}
