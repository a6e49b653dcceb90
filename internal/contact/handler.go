// Package contact receives storefront contact form submissions and relays
// them to the shop inbox.
package contact

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshtide/freshtide/internal/mailer"
	"github.com/freshtide/freshtide/internal/platform/httpx"
	"github.com/freshtide/freshtide/internal/shared"
)

// Message is a contact form submission.
type Message struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required,min=5"`
}

// MailQueue enqueues outbound mail without blocking the request.
type MailQueue interface {
	EnqueueMessage(ctx context.Context, msg mailer.Message) error
}

type Handler struct {
	logger   *slog.Logger
	mail     MailQueue
	inbox    string
	validate *validator.Validate
}

// NewHandler constructs the contact handler. inbox is the shop address that
// receives the relayed submissions.
func NewHandler(logger *slog.Logger, mail MailQueue, inbox string, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, mail: mail, inbox: inbox, validate: validate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Submit)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := httpx.DecodeJSON(r, &msg); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(msg); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	phone := msg.Phone
	if phone == "" {
		phone = "not provided"
	}
	relay := mailer.Message{
		To:      h.inbox,
		Subject: fmt.Sprintf("Contact form: %s", msg.Name),
		HTML: fmt.Sprintf(
			"<p><strong>From:</strong> %s &lt;%s&gt;</p><p><strong>Phone:</strong> %s</p><p>%s</p>",
			html.EscapeString(msg.Name), html.EscapeString(msg.Email),
			html.EscapeString(phone), html.EscapeString(msg.Message),
		),
		Text: fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s\n", msg.Name, msg.Email, phone, msg.Message),
	}
	if err := h.mail.EnqueueMessage(r.Context(), relay); err != nil {
		h.logger.Error("contact mail enqueue failed", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("contact relay: %w", shared.ErrUpstreamService))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Thanks for reaching out. We will get back to you shortly.",
	})
}
