package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshtide/freshtide/internal/auth"
	"github.com/freshtide/freshtide/internal/platform/httpx"
	"github.com/freshtide/freshtide/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	users   *auth.Service
}

func NewHandler(logger *slog.Logger, service *Service, users *auth.Service) *Handler {
	return &Handler{logger: logger, service: service, users: users}
}

// MountRoutes registers the dashboard routes. The caller guards the whole
// subtree with authentication and the admin role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stats", h.Stats)
	r.Get("/users", h.Users)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := auth.ListUsersRequest{
		Search: q.Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	users, total, err := h.users.ListUsers(r.Context(), req)
	if err != nil {
		h.logger.Error("user list failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users":      auth.NewUserListItems(users),
		"pagination": shared.NewPagination(req.Page, req.Limit, total),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
