package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/geocoder89/userhub/internal/auth"
	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/db"
	httpx "github.com/geocoder89/userhub/internal/http"
	"github.com/geocoder89/userhub/internal/notifications"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/redisclient"
	"github.com/geocoder89/userhub/internal/repo/metered"
	"github.com/geocoder89/userhub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Error("token service unavailable", "err", err)
		os.Exit(1)
	}

	rawStore, closeStore, err := openStore(startCtx, cfg, log)
	if err != nil {
		log.Error("store unavailable", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	store := metered.NewUsersRepo(rawStore, prom)
	hasher := security.NewHasher(cfg.BcryptCost)

	// error events always reach the log; Redis is optional and guarded
	notifier := notifications.Multi{notifications.NewLogNotifier(log)}

	var rdb *redisclient.Client
	var notifierState func() string
	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(startCtx); err != nil {
			log.Warn("redis unreachable, error events will retry through the breaker", "err", err)
		}

		protected := notifications.NewProtectedNotifier(
			notifications.NewRedisNotifier(rdb, cfg.ErrorChannel),
			notifications.ProtectedNotifierConfig{},
		)
		notifier = append(notifier, protected)
		notifierState = protected.State
	}

	created, err := db.EnsureSeedUser(startCtx, store, hasher, cfg)
	if err != nil {
		log.Error("seed user failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("seed user created", "email", cfg.SeedEmail)
	}

	policy := apperr.NewStatusPolicy(cfg.StatusMode)

	var draining atomic.Bool

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Log:           log,
		Env:           cfg.Env,
		Store:         store,
		Ping:          rawStore.Ping,
		Draining:      draining.Load,
		NotifierState: notifierState,
		Hasher:        hasher,
		Tokens:        tokens,
		Policy:        policy,
		StoreTimeout:  cfg.StoreTimeout,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Notifier:      notifier,
		Prom:          prom,
		Gatherer:      reg,
	})

	var handler http.Handler = router
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         600,
		}).Handler(router)
	}

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "status_mode", string(policy.Mode))
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")
	draining.Store(true)

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}

		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
