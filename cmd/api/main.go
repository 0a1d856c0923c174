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

	"github.com/geocoder89/devevent/internal/auth"
	"github.com/geocoder89/devevent/internal/cache"
	"github.com/geocoder89/devevent/internal/config"
	"github.com/geocoder89/devevent/internal/db"
	httpx "github.com/geocoder89/devevent/internal/http"
	"github.com/geocoder89/devevent/internal/http/handlers"
	"github.com/geocoder89/devevent/internal/media"
	"github.com/geocoder89/devevent/internal/notifications"
	"github.com/geocoder89/devevent/internal/observability"
	"github.com/geocoder89/devevent/internal/repo/memory"
	"github.com/geocoder89/devevent/internal/repo/postgres"
	"github.com/geocoder89/devevent/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	shutdownTracer, err := observability.InitTracer(context.Background(), observability.TracingConfig{
		ServiceName: "devevent-api",
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Enabled:     cfg.TracingEnabled,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.AdminTokenTTL())
	if err != nil {
		log.Error("token service init failed", "err", err)
		os.Exit(1)
	}
	creds := auth.NewAdminCredentials(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)

	checks := map[string]handlers.ReadinessCheck{}

	// storage: the pool is opened on first use, not at boot
	var (
		eventStore   service.EventStore
		bookingStore service.BookingStore
		connector    *db.Lazy[*pgxpool.Pool]
	)

	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		eventStore = memory.NewEventsRepo()
		bookingStore = memory.NewBookingsRepo()
	default:
		connector = db.NewConnector(cfg.DBURL)
		eventStore = postgres.NewEventsRepo(connector, prom)
		bookingStore = postgres.NewBookingsRepo(connector, prom)
		checks["postgres"] = func(ctx context.Context) error {
			pool, err := connector.Get(ctx)
			if err != nil {
				return err
			}
			return pool.Ping(ctx)
		}
	}

	// read cache
	var readCache cache.Store
	var redisCache *cache.Redis
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		readCache = redisCache
		checks["redis"] = redisCache.Ping
	} else {
		readCache = cache.New(cfg.CacheTTL)
	}

	// media
	var (
		uploader media.Uploader
		localDir string
		localURL string
	)
	switch cfg.MediaDriver {
	case "s3":
		uploader = media.NewS3(media.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
		}, prom)
	default:
		uploader = media.NewLocal(cfg.MediaLocalDir, cfg.MediaPublicBaseURL, prom)
		localDir, localURL = cfg.MediaLocalDir, cfg.MediaPublicBaseURL
	}

	// notifications
	var notifier notifications.Notifier
	switch cfg.MailProvider {
	case "ses":
		notifier = notifications.NewSESNotifier(notifications.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
			FromAddress:     cfg.MailFromAddress,
			FromName:        cfg.MailFromName,
		}, log)
	default:
		notifier = notifications.NewLogNotifier(log)
	}
	notifier = notifications.NewProtectedNotifier(notifier, notifications.ProtectedNotifierConfig{})

	eventsSvc := service.NewEventsService(eventStore, tokens, uploader, readCache, log, prom, service.EventsConfig{
		MediaFolder: cfg.MediaFolder,
	})
	bookingsSvc := service.NewBookingsService(bookingStore, eventsSvc, notifier, log, prom)

	router := httpx.NewRouter(httpx.RouterDeps{
		Env:            cfg.Env,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		LocalMediaDir:  localDir,
		LocalMediaURL:  localURL,
		Log:            log,
		Prom:           prom,
		Gatherer:       reg,
		Tokens:         tokens,
		Credentials:    creds,
		Events:         eventsSvc,
		Bookings:       bookingsSvc,
		Checks:         checks,
	})

	// server set up
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "media", cfg.MediaDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	if connector != nil {
		if pool, ok := connector.Peek(); ok {
			pool.Close()
		}
	}
	if redisCache != nil {
		_ = redisCache.Close()
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}
