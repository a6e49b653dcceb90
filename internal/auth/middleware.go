package auth

import (
	"log/slog"
	"net/http"

	"github.com/freshtide/freshtide/internal/platform/httpx"
	"github.com/freshtide/freshtide/internal/shared"
)

// Middleware gates protected routes behind bearer-token verification.
type Middleware struct {
	Tokens *Tokens
	Repo   Repository
	Logger *slog.Logger
}

// Authenticate resolves the bearer token to a live user record and stores it
// in the request context. The token alone is not trusted for role data; the
// record is re-read so role changes and deletions take effect immediately.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ExtractBearer(r)
		if raw == "" {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}

		claims, err := m.Tokens.Parse(raw)
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}

		user, err := m.Repo.FindByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}

		ctx := shared.ContextWithUser(r.Context(), &shared.User{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate resolves a bearer token when one is present but lets
// anonymous requests through. Checkout uses it so guests can order while
// logged-in customers get the order attached to their account.
func (m Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ExtractBearer(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.Tokens.Parse(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := m.Repo.FindByID(r.Context(), claims.UserID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := shared.ContextWithUser(r.Context(), &shared.User{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin callers. Mount after Authenticate.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := shared.UserFromContext(r.Context())
		if user == nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		if !user.IsAdmin() {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
