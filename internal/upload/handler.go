package upload

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freshtide/freshtide/internal/platform/httpx"
)

// maxImageSize caps product image uploads at 5 MiB.
const maxImageSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

type Handler struct {
	logger *slog.Logger
	client *Client
}

func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers the image routes. The caller guards them with
// authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/image", h.Upload)
	r.Delete("/image/{publicId}", h.Delete)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "image exceeds the 5MB limit or is malformed")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "image file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "only jpg, jpeg, png and gif images are accepted")
		return
	}

	result, err := h.client.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("image upload failed", slog.String("filename", header.Filename), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Image uploaded successfully",
		"image":   result,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicId")
	if publicID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "public id is required")
		return
	}
	if err := h.client.Delete(r.Context(), publicID); err != nil {
		h.logger.Error("image delete failed", slog.String("public_id", publicID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Image deleted successfully"})
}
