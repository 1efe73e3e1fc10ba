// internal/api/routes.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/remaimber-it/interview-coach/internal/identity"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	SecureCookies  bool
	// UI serves everything outside /api and /swagger; nil disables it.
	UI http.Handler
}

// NewRouter wires middleware and every route onto a chi router.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(CORS(opts.AllowedOrigins))
	}

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)

		r.Route("/interview", func(r chi.Router) {
			r.Use(identity.Middleware(opts.SecureCookies))

			r.Get("/", h.getInterview)
			r.Get("/options", h.options)
			r.Get("/export", h.exportInterview)
			r.Post("/extract-skills", h.extractSkills)
			r.Post("/start", h.startInterview)
			r.Post("/answer", h.submitAnswer)
			r.Post("/skip", h.skipQuestion)
			r.Post("/report", h.generateReport)
			r.Post("/reset", h.resetInterview)
		})
	})

	if opts.UI != nil {
		r.Handle("/*", opts.UI)
	}
	return r
}
