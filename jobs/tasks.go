package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/freshtide/freshtide/internal/mailer"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskOffersEnable flips the weekend offer flag on for eligible products.
	TaskOffersEnable = "offers:enable"
	// TaskOffersDisable flips the weekend offer flag off again.
	TaskOffersDisable = "offers:disable"
)

// Cron specs for the weekend promotion, evaluated in the scheduler's local
// timezone: on at five on Friday afternoon, off at nine on Monday morning.
const (
	CronOffersEnable  = "0 17 * * 5"
	CronOffersDisable = "0 9 * * 1"
)

// SendEmailPayload mirrors mailer.Message on the wire.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

// NewSendEmailTask constructs a mail dispatch task.
func NewSendEmailTask(msg mailer.Message) (*asynq.Task, error) {
	data, err := json.Marshal(SendEmailPayload{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5)), nil
}

// NewOffersEnableTask constructs the Friday offer task.
func NewOffersEnableTask() *asynq.Task {
	return asynq.NewTask(TaskOffersEnable, nil)
}

// NewOffersDisableTask constructs the Monday offer task.
func NewOffersDisableTask() *asynq.Task {
	return asynq.NewTask(TaskOffersDisable, nil)
}
