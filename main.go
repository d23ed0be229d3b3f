package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"science-ecosystem/api"
	"science-ecosystem/config"
	"science-ecosystem/database"
	"science-ecosystem/httpx"
	"science-ecosystem/logging"
	"science-ecosystem/providers/openalex"
	"science-ecosystem/providers/orcid"
	"science-ecosystem/providers/unpaywall"
	"science-ecosystem/services"
	"science-ecosystem/session"
	"science-ecosystem/storage"
	"science-ecosystem/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("production", "info")
		boot.Fatal("Config load error", zap.Error(err))
	}

	log := logging.New(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database migration completed.")

	ctx := context.Background()

	sessionStore, closeStore, err := newSessionStore(ctx, cfg, db)
	if err != nil {
		log.Fatal("Failed to set up session store", zap.String("store", cfg.SessionStore), zap.Error(err))
	}
	defer closeStore()
	sessions := session.NewManager(sessionStore, log)

	policy := httpx.DefaultPolicy()
	policy.MaxAttempts = cfg.UpstreamMaxAttempts
	policy.BaseDelay = cfg.UpstreamBaseDelay
	policy.MaxDelay = cfg.UpstreamMaxDelay
	upstream := httpx.New(policy, log)

	users := store.NewUsers(db)
	orcidClient := orcid.NewClient(cfg, upstream, log)

	deps := api.Deps{
		Config:       cfg,
		DB:           db,
		Sessions:     sessions,
		Cookies:      session.NewCookieCodec(session.CookieName, cfg.SessionSecret, cfg.Production(), cfg.CookieDomain, session.DefaultTTL),
		LoginCookies: session.NewCookieCodec(api.LoginCookieName, cfg.SessionSecret, cfg.Production(), cfg.CookieDomain, services.LoginAttemptTTL),
		Auth:         services.NewAuthService(sessions, users, orcidClient, log),
		Users:        users,
		OpenAlex:     openalex.NewClient(cfg, upstream, log),
		Logger:       log,
	}

	if fetcher := unpaywall.NewFetcher(cfg, upstream, log); fetcher.Enabled() {
		deps.Unpaywall = fetcher
	} else {
		log.Info("UNPAYWALL_EMAIL not set, open access enrichment disabled.")
	}

	if cfg.UploadsEnabled() {
		objects, err := storage.NewS3Store(ctx, storage.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			log.Fatal("Failed to set up object storage", zap.Error(err))
		}
		deps.Objects = objects
	} else {
		log.Info("S3_BUCKET not set, material uploads disabled.")
	}

	sweeper, err := session.StartSweeper(sessions, cfg.SessionSweepSchedule, log)
	if err != nil {
		log.Fatal("Failed to schedule session sweeper", zap.Error(err))
	}
	// Einmal beim Start aufräumen, dann nach Zeitplan.
	go sessions.SweepOnce(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("Shutting down server...")

	<-sweeper.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped.")
}

// newSessionStore wählt das Sitzungs-Backend nach SESSION_STORE.
func newSessionStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case "memory":
		return session.NewMemoryStore(), func() {}, nil
	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rs := session.NewRedisStore(client, "")
		return rs, func() { _ = rs.Close() }, nil
	case "postgres":
		return session.NewGormStore(db), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
}
