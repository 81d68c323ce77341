package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrwolf/moodlog/internal/config"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/vault"
	"github.com/mrwolf/moodlog/internal/wellness"
)

// generativeLimit caps the requests per owner per minute on endpoints that
// may call the generator
const generativeLimit = 30

func NewRouter(cfg *config.Config, database *db.DB, v *vault.Vault, svc *wellness.Service) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)

	handlers := NewHandlers(cfg, database, v, svc)
	limiter := NewRateLimiter(generativeLimit, time.Minute)

	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg))
		r.Use(JSONContentType)

		r.Post("/moods", handlers.CreateMood)
		r.Get("/moods", handlers.History)
		r.Get("/streak", handlers.Streak)
		r.Get("/insights", handlers.Insights)
		r.Get("/letters", handlers.Letters)
		r.Get("/generations", handlers.Generations)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(limiter))

			r.Get("/dashboard", handlers.Dashboard)
			r.Get("/monthly", handlers.Monthly)
			r.Get("/challenges", handlers.Challenges)
			r.Get("/playlists", handlers.Playlists)
			r.Get("/playlist", handlers.Playlist)
			r.Get("/wisdom", handlers.Wisdom)
			r.Get("/suggestion", handlers.Suggestion)
		})
	})

	return r
}
