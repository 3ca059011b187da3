package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"imagestudio/internal/http/handlers"
	"imagestudio/internal/infra"
	"imagestudio/internal/middleware"
)

type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	// OutputDir is served read-only under /outputs/. Empty disables it.
	OutputDir string
}

func NewRouter(app *handlers.App, logger infra.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))

		r.Get("/styles", app.Styles)
		r.Get("/templates", app.ListTemplates)
		r.Post("/templates", app.RenderTemplate)
		r.Post("/templates/generate", app.GenerateTemplate)
		r.Post("/generate", app.Generate)
		r.Post("/edit", app.Edit)
		r.Post("/clean", app.Clean)
		r.Post("/style", app.Style)
		r.Post("/composition", app.Composition)
		r.Post("/batch", app.Batch)
	})

	if opts.OutputDir != "" {
		fs := http.StripPrefix("/outputs/", http.FileServer(http.Dir(opts.OutputDir)))
		r.Get("/outputs/*", fs.ServeHTTP)
	}

	return r
}
