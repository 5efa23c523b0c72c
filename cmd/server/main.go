package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cohort/internal/audit"
	"cohort/internal/extraction"
	"cohort/internal/platform/config"
	"cohort/internal/platform/httpserver"
	"cohort/internal/platform/logger"
	platformmetrics "cohort/internal/platform/metrics"
	"cohort/internal/platform/middleware"
	"cohort/internal/platform/postgres"
	redisplatform "cohort/internal/platform/redis"
	"cohort/internal/similarity"
	"cohort/internal/team/category"
	"cohort/internal/team/formation"
	"cohort/internal/team/handler"
	teammetrics "cohort/internal/team/metrics"
	"cohort/internal/team/models"
	"cohort/internal/team/scoring"
	"cohort/internal/team/service"
	"cohort/internal/team/store/eventstate"
	"cohort/internal/team/store/roster"
	"cohort/internal/team/store/scorecache"
	teamstore "cohort/internal/team/store/team"
	"cohort/pkg/platform/httputil"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var (
		teams  service.TeamStore
		pool   service.RosterStore
		events service.EventStateStore
	)
	if db != nil {
		teams = teamstore.NewPostgres(db)
		pool = roster.NewPostgres(db)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		teams = teamstore.NewInMemory()
		pool = roster.NewInMemory()
	}
	if redisClient != nil {
		events = eventstate.NewRedis(redisClient.Client)
	} else {
		events = eventstate.NewInMemory()
	}

	comparer := similarity.NewLazy(func(ctx context.Context) (similarity.Comparer, error) {
		client := similarity.NewHTTPClient(cfg.Similarity, log)
		if err := client.Ready(ctx); err != nil {
			return nil, err
		}
		return client, nil
	})

	metrics := teammetrics.New()

	scoringOpts := []scoring.Option{scoring.WithLogger(log)}
	if redisClient != nil {
		scoringOpts = append(scoringOpts, scoring.WithScoreCache(scorecache.NewRedis(redisClient.Client)))
	}
	scorer := scoring.NewEngine(comparer, category.NewMatcher(), cfg.Formation, scoringOpts...)
	engine := formation.New(scorer, cfg.Formation,
		formation.WithLogger(log),
		formation.WithMetrics(metrics))

	var publisher audit.Publisher = audit.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := audit.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic,
			audit.WithKafkaLogger(log))
		if err != nil {
			log.Error("kafka audit publisher failed", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPublisher
	}

	var extractor extraction.Extractor
	if cfg.Extraction.URL != "" {
		extractor = extraction.NewHTTP(cfg.Extraction, extraction.WithLogger(log))
	}

	teamCfg := models.DefaultTeamConfig()
	teamCfg.MaxTeamSize = cfg.Formation.MaxTeamSize
	teamCfg.MaxTeamNumber = cfg.Formation.MaxTeamNumber

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics),
		service.WithAudit(publisher),
	}
	formationSvc := service.NewFormationService(engine, pool, teams, events, teamCfg, opts...)
	teamSvc := service.NewTeamService(teams, teamCfg, opts...)
	rosterSvc := service.NewRosterService(pool, events, extractor, service.WithLogger(log))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(platformmetrics.NewHTTP()))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "postgres": err.Error()})
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": err.Error()})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(formationSvc, teamSvc, rosterSvc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if err := publisher.Close(); err != nil {
		log.Warn("audit publisher close failed", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Warn("postgres close failed", "error", err)
		}
	}
}
