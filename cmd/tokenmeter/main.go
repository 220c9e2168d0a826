package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tokenmeter/internal/config"
	dbRedis "github.com/kailas-cloud/tokenmeter/internal/db/redis"
	"github.com/kailas-cloud/tokenmeter/internal/domain"
	logpkg "github.com/kailas-cloud/tokenmeter/internal/logger"
	"github.com/kailas-cloud/tokenmeter/internal/metrics"
	usagerepo "github.com/kailas-cloud/tokenmeter/internal/repository/usage"
	chiTransport "github.com/kailas-cloud/tokenmeter/internal/transport/chi"
	providercli "github.com/kailas-cloud/tokenmeter/internal/transport/openai"
	healthuc "github.com/kailas-cloud/tokenmeter/internal/usecase/health"
	refreshuc "github.com/kailas-cloud/tokenmeter/internal/usecase/refresh"
	usageuc "github.com/kailas-cloud/tokenmeter/internal/usecase/usage"
	"github.com/kailas-cloud/tokenmeter/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tokenmeter API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("provider", cfg.Provider.Name),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	// Snapshot store is optional: without database addresses the service
	// keeps counters in memory only and loses them on restart.
	var store *dbRedis.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create snapshot store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Snapshot store not ready", zap.Error(err))
		}
		logger.Info("Connected to snapshot store", zap.String("driver", cfg.Database.Driver))
	} else {
		logger.Warn("No database configured, usage counters are in-memory only")
	}

	// Register usage metrics explicitly (no init())
	metrics.RegisterUsageMetrics()

	// Validate the provider credential before serving traffic.
	validator := providercli.NewValidator(&providercli.Config{
		APIKey:   cfg.Provider.APIKey,
		BaseURL:  cfg.Provider.BaseURL,
		Provider: cfg.Provider.Name,
		Logger:   logger,
	})
	validateCtx, cancelValidate := context.WithTimeout(ctx, 15*time.Second)
	err = validator.Validate(validateCtx)
	cancelValidate()
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		logger.Fatal("Provider rejected the API key", zap.Error(err))
	case err != nil:
		// Unreachable provider is not fatal: tracking works without it.
		logger.Warn("Provider validation failed, continuing", zap.Error(err))
	}

	// Usage tracker plus restored state from the snapshot store.
	tracker := usageuc.NewTracker(logger)

	var snapRepo *usagerepo.Store
	if store != nil {
		snapRepo = usagerepo.New(store, cfg.Tracking.KeyPrefix)
		snap, found, err := snapRepo.Load(ctx)
		if err != nil {
			logger.Error("Failed to load persisted usage snapshot", zap.Error(err))
		} else if found {
			tracker.Restore(snap)
			logger.Info("Restored usage snapshot",
				zap.Int64("total_requests", snap.TotalRequests),
				zap.Int("models", len(snap.Models)),
			)
		}
	}

	// Background refresher: publishes gauges and persists the snapshot.
	refresher := refreshuc.New(tracker, time.Duration(cfg.Tracking.PollIntervalSec)*time.Second, logger)
	if snapRepo != nil {
		refresher = refresher.WithStore(snapRepo)
	}
	refreshCtx, stopRefresher := context.WithCancel(ctx)
	go refresher.Run(refreshCtx)

	// Health service
	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}
	healthSvc := healthuc.New(dbPinger, validator)

	// Create chi server
	server := chiTransport.NewServer(tracker, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	stopRefresher()

	// Persist one final snapshot so restart picks up from the latest counts.
	if snapRepo != nil {
		saveCtx, cancelSave := context.WithTimeout(context.Background(), 5*time.Second)
		if err := snapRepo.Save(saveCtx, tracker.Snapshot()); err != nil {
			logger.Error("Failed to persist final snapshot", zap.Error(err))
		}
		cancelSave()
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
