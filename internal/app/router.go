package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshtide/freshtide/internal/admin"
	"github.com/freshtide/freshtide/internal/auth"
	"github.com/freshtide/freshtide/internal/catalog/categories"
	"github.com/freshtide/freshtide/internal/catalog/products"
	"github.com/freshtide/freshtide/internal/contact"
	"github.com/freshtide/freshtide/internal/observability"
	"github.com/freshtide/freshtide/internal/orders"
	"github.com/freshtide/freshtide/internal/platform/httpx"
	"github.com/freshtide/freshtide/internal/upload"
)

// RouterParams collects the handlers mounted on the HTTP surface.
type RouterParams struct {
	Logger     *slog.Logger
	Config     *Config
	Metrics    *observability.Metrics
	AuthMW     auth.Middleware
	Auth       *auth.Handler
	Products   *products.Handler
	Categories *categories.Handler
	Orders     *orders.Handler
	Contact    *contact.Handler
	Upload     *upload.Handler
	Admin      *admin.Handler
}

// NewRouter assembles the API router. Public storefront routes sit at the
// top; everything under /admin requires the admin role.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  p.Logger,
		Config:  p.Config,
		Metrics: p.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			p.Auth.MountRoutes(r, p.AuthMW)
		})
		r.Route("/products", func(r chi.Router) {
			p.Products.MountRoutes(r)
		})
		r.Route("/categories", func(r chi.Router) {
			p.Categories.MountRoutes(r)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Use(p.AuthMW.OptionalAuthenticate)
			p.Orders.MountRoutes(r, p.AuthMW.Authenticate)
		})
		r.Route("/contact", func(r chi.Router) {
			p.Contact.MountRoutes(r)
		})
		r.Route("/upload", func(r chi.Router) {
			r.Use(p.AuthMW.Authenticate)
			p.Upload.MountRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(p.AuthMW.Authenticate)
			r.Use(p.AuthMW.RequireAdmin)

			p.Admin.MountRoutes(r)
			r.Route("/products", func(r chi.Router) {
				p.Products.MountAdminRoutes(r)
			})
			r.Route("/categories", func(r chi.Router) {
				p.Categories.MountAdminRoutes(r)
			})
			r.Route("/orders", func(r chi.Router) {
				p.Orders.MountAdminRoutes(r)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "route not found")
	})

	return r
}
