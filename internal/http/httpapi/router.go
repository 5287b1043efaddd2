package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"rainbowrise/internal/http/handlers"
	"rainbowrise/internal/middleware"
	"rainbowrise/internal/ratelimit"
)

type Options struct {
	Logger      zerolog.Logger
	JWTSecret   string
	AILimiter   ratelimit.Limiter
	CORSOrigins []string
	// TrustProxy honors X-Forwarded-For and X-Real-IP. Enable it only behind
	// a reverse proxy that overwrites those headers.
	TrustProxy bool
	// StaticDir is served under /static when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(opts.JWTSecret))

		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", app.CampaignsList)
			r.Post("/", app.CampaignCreate)
			r.Get("/category/{category}", app.CampaignsByCategory)
			r.Get("/{id}", app.CampaignGet)
			r.Patch("/{id}", app.CampaignUpdate)
			r.Get("/{id}/locations", app.CampaignLocations)
		})

		r.Post("/donations", app.DonationsCreate)
		r.Get("/donations/{campaignId}", app.DonationsByCampaign)

		r.Post("/users", app.UsersCreate)

		r.Get("/testimonials", app.TestimonialsList)
		r.Post("/testimonials", app.TestimonialsCreate)

		r.Get("/locations", app.LocationsList)
		r.Post("/locations", app.LocationsCreate)
		r.Get("/locations/nearby", app.LocationsNearby)

		r.Group(func(r chi.Router) {
			if opts.AILimiter != nil {
				r.Use(middleware.AIRateLimit(opts.AILimiter, "assistant", opts.TrustProxy, opts.Logger))
			}
			r.Post("/assistant", app.AssistantQuery)
		})
		r.Group(func(r chi.Router) {
			if opts.AILimiter != nil {
				r.Use(middleware.AIRateLimit(opts.AILimiter, "image", opts.TrustProxy, opts.Logger))
			}
			r.Post("/generate-image", app.ImagesGenerate)
		})
	})

	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	var h http.Handler = r
	h = gorillahandlers.CompressHandler(h)
	if len(opts.CORSOrigins) > 0 {
		h = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(opts.CORSOrigins),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}),
			gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
			gorillahandlers.ExposedHeaders([]string{
				"X-Request-ID", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining",
				"X-Campaign-Raised", "X-Campaign-Backers",
			}),
		)(h)
	}
	return h
}
