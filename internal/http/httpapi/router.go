package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"productstudio/internal/http/handlers"
	"productstudio/internal/middleware"
)

// NewRouter mounts the API. lookup may be nil when no GeoIP database is loaded.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	cfg := app.Config
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.I18N(cfg.DefaultLocale, lookup),
	)

	r.Get("/metrics", app.Metrics.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
		r.Get("/styles", app.Styles)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/credential", app.CredentialStatus)
			r.Put("/credential", app.CredentialUpdate)
		})

		guard := middleware.NewInFlight()
		r.Route("/images", func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
			r.Use(guard.Middleware)
			r.Post("/generate", app.ImagesGenerate)
			r.Post("/edit", app.ImagesEdit)
			r.Post("/share", app.ImagesShare)
		})
	})

	return r
}
