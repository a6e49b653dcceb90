package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/freshtide/freshtide/internal/mailer"
)

// MailJob delivers queued mail through the configured sender.
type MailJob struct {
	Sender mailer.Sender
	Logger *slog.Logger
}

// NewMailJob initialises the mail dispatch handler.
func NewMailJob(sender mailer.Sender, logger *slog.Logger) *MailJob {
	return &MailJob{Sender: sender, Logger: logger}
}

// Handle processes TaskTypeSendEmail tasks. Delivery failures bubble up so
// asynq retries them with its own backoff.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("to", payload.To), slog.String("subject", payload.Subject))
	err := j.Sender.Send(ctx, mailer.Message{
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Text:    payload.Text,
	})
	if err != nil {
		logger.Error("mail delivery failed", slog.Any("error", err))
		return err
	}
	logger.Info("mail delivered")
	return nil
}

func (j *MailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeSendEmail))
	}
	return slog.Default().With(slog.String("job", TaskTypeSendEmail))
}
