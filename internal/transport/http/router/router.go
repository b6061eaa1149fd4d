package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/votelane/reco-service/internal/config"
	"github.com/votelane/reco-service/internal/transport/http/handlers"
	"github.com/votelane/reco-service/internal/transport/http/middleware"
)

func New(
	reco *handlers.RecommendationHandler,
	track *handlers.TrackHandler,
	sync *handlers.SyncHandler,
	health *handlers.HealthHandler,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)

	r.Get("/api/health", health.Live)
	r.Get("/api/health/ready", health.Ready)
	r.Get("/api/health/platform", health.Platform)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/recommendations", func(r chi.Router) {
		r.Get("/", reco.ForYou)
		r.Get("/trending", reco.Trending)
		r.Get("/popular", reco.Popular)
		r.Get("/similar/{electionId}", reco.Similar)
		r.Get("/category/{categoryId}", reco.ByCategory)
		r.Get("/lottery", reco.Lottery)
		r.Get("/audience/{electionId}", reco.Audience)
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.RLTrackLimit > 0 {
				r.Use(httprate.LimitByIP(cfg.RLTrackLimit, cfg.RLTrackWindow))
			}
			r.Post("/track", track.Track)
			r.Post("/track/batch", track.BatchTrack)
		})
		r.Get("/buffer", track.BufferSize)
		r.Post("/flush", track.Flush)
	})

	r.Route("/api/sync", func(r chi.Router) {
		r.Post("/users", sync.Users)
		r.Post("/users/{id}", sync.User)
		r.Post("/elections", sync.Elections)
		r.Post("/elections/{id}", sync.Election)
		r.Post("/votes", sync.Votes)
		r.Post("/votes/{id}", sync.Vote)
		r.Post("/full", sync.Full)
	})

	return r
}
