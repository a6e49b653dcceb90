package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshtide/freshtide/internal/platform/httpx"
	"github.com/freshtide/freshtide/internal/shared"
)

// Handler exposes the /auth endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes registers auth routes on the router.
func (h *Handler) MountRoutes(r chi.Router, mw Middleware) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Get("/me", h.Me)
		r.Put("/profile", h.UpdateProfile)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	user, token, err := h.service.Register(r.Context(), req)
	if err != nil {
		if err != shared.ErrDuplicateEmail {
			h.logger.Error("register failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"token":   token,
		"user":    NewUserResponse(user),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    NewUserResponse(user),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller := shared.UserFromContext(r.Context())
	user, err := h.service.GetByID(r.Context(), caller.ID)
	if err != nil {
		h.logger.Error("load current user", slog.Any("error", err), slog.Int64("user_id", caller.ID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": NewUserResponse(user)})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	caller := shared.UserFromContext(r.Context())
	user, err := h.service.UpdateProfile(r.Context(), caller.ID, req)
	if err != nil {
		h.logger.Error("update profile failed", slog.Any("error", err), slog.Int64("user_id", caller.ID))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    NewUserResponse(user),
	})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	if err := h.service.RequestReset(r.Context(), req.Email); err != nil {
		h.logger.Error("request reset failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	// Same body whether or not the account exists.
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "If an account exists for that email, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	if err := h.service.CompleteReset(r.Context(), req.Token, req.Password); err != nil {
		if err != shared.ErrInvalidOrExpiredToken {
			h.logger.Error("reset password failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Password has been reset"})
}
