package httpx

import (
	"errors"
	"net/http"

	"github.com/freshtide/freshtide/internal/shared"
)

var debugMode bool

// SetDebug enables detail passthrough for unexpected errors. Call once at
// startup; never enable in production.
func SetDebug(enabled bool) {
	debugMode = enabled
}

// RespondError maps domain errors to HTTP problem responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusBadRequest, "Invalid Credentials", shared.ErrInvalidCredentials.Error())
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthenticated", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrDuplicateEmail):
		Problem(w, http.StatusConflict, "Duplicate Email", err.Error())
	case errors.Is(err, shared.ErrDuplicateCategory):
		Problem(w, http.StatusConflict, "Duplicate Category", err.Error())
	case errors.Is(err, shared.ErrProductUnavailable),
		errors.Is(err, shared.ErrInsufficientStock),
		errors.Is(err, shared.ErrInvalidOrExpiredToken),
		errors.Is(err, shared.ErrCategoryInUse),
		errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Request Failed", err.Error())
	case errors.Is(err, shared.ErrUpstreamService):
		Problem(w, http.StatusBadGateway, "Upstream Service Failure", err.Error())
	default:
		detail := ""
		if debugMode && err != nil {
			detail = err.Error()
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", detail)
	}
}
