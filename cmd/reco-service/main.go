package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/votelane/reco-service/internal/config"
	"github.com/votelane/reco-service/internal/events"
	"github.com/votelane/reco-service/internal/infrastructure/caching/redis"
	"github.com/votelane/reco-service/internal/infrastructure/postgres"
	"github.com/votelane/reco-service/internal/infrastructure/rabbitmq"
	"github.com/votelane/reco-service/internal/pkg/logger"
	"github.com/votelane/reco-service/internal/recommend"
	"github.com/votelane/reco-service/internal/recplatform"
	"github.com/votelane/reco-service/internal/syncer"
	"github.com/votelane/reco-service/internal/transport/http/handlers"
	"github.com/votelane/reco-service/internal/transport/http/router"
)

func main() {
	setup := flag.Bool("setup", false, "provision platform tables and engine, then continue serving")
	flag.Parse()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	cancelPing()

	platform := recplatform.NewClient(cfg.RecoAPIURL, cfg.RecoAPIKey, cfg.RecoTimeout)

	if *setup {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		if err := recplatform.EnsureProvisioned(ctx, platform, recplatform.SetupConfig{
			UsersTable:     cfg.UsersTable,
			ElectionsTable: cfg.ElectionsTable,
			EventsTable:    cfg.EventsTable,
			ElectionEngine: cfg.ElectionEngine,
		}); err != nil {
			log.Fatal().Err(err).Msg("platform provisioning failed")
		}
		cancel()
	}

	// Cache is optional; an empty REDIS_URL runs uncached.
	var cache recommend.Cache = recommend.NoopCache{}
	if cfg.RedisURL != "" {
		rc, err := redis.New(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	// Interaction mirror is optional; an empty RABBIT_URL runs silent.
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, interaction mirror disabled")
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	userRepo := postgres.NewUserRepo(db)
	electionRepo := postgres.NewElectionRepo(db)
	voteRepo := postgres.NewVoteRepo(db)

	tracker := events.NewTracker(
		events.NewPlatformUploader(platform, cfg.EventsTable),
		publisher,
		cfg.BufferFlushSize,
		cfg.BatchTrackChunkSize,
		nil,
	)

	syncSvc := syncer.New(userRepo, electionRepo, voteRepo, platform, syncer.Tables{
		Users:     cfg.UsersTable,
		Elections: cfg.ElectionsTable,
		Events:    cfg.EventsTable,
	}, cfg.SyncBatchSize, nil)

	recoSvc := recommend.New(platform, voteRepo, electionRepo, voteRepo, cache, cfg.ElectionEngine, cfg.CacheTTLTrending, nil)

	handler := router.New(
		handlers.NewRecommendationHandler(recoSvc),
		handlers.NewTrackHandler(tracker),
		handlers.NewSyncHandler(syncSvc),
		handlers.NewHealthHandler(db, platform),
		cfg,
	)

	flushDone := make(chan struct{})
	go runFlushWorker(tracker, cfg.BufferFlushInterval, flushDone)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("reco-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	close(flushDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	// Last chance for anything still buffered.
	tracker.ForceFlush(ctx)
}

// runFlushWorker drains the event buffer on a fixed interval until done
// closes.
func runFlushWorker(tracker *events.Tracker, interval time.Duration, done <-chan struct{}) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			tracker.ForceFlush(ctx)
			cancel()
		}
	}
}
