package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pulsehub/internal/core/ports"
	"pulsehub/internal/core/services"
	httphandlers "pulsehub/internal/handlers/http"
	"pulsehub/internal/infrastructure/middleware"
	"pulsehub/internal/infrastructure/monitoring"
	"pulsehub/internal/infrastructure/repositories/memory"
	redisrepo "pulsehub/internal/infrastructure/repositories/redis"
	signalsrv "pulsehub/internal/infrastructure/signal"
	"pulsehub/pkg/config"
	"pulsehub/pkg/logger"
	"pulsehub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/pulsehub/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Optional presence mirror for sibling backend services
	mirror := ports.NopMirror()
	if cfg.Redis.Enabled {
		redisClient, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			log,
		)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer redisrepo.CloseRedisClient(redisClient)

		mirror = redisrepo.NewPresenceMirror(redisClient, log)
	}

	// State tables
	presenceRepo := memory.NewPresenceRepository()
	callRepo := memory.NewCallRepository()
	streamRepo := memory.NewStreamRepository()

	authService := services.NewAuthService(cfg.Auth.JWTSecret)

	var metrics ports.Metrics = ports.NopMetrics()
	if cfg.Monitoring.PrometheusEnabled {
		metrics = monitoring.NewPrometheusCollector(
			func() int { n, _ := presenceRepo.Count(context.Background()); return n },
			func() int { n, _ := callRepo.Count(context.Background()); return n },
			func() int { n, _ := streamRepo.Count(context.Background()); return n },
		)
	}

	// The hub delivers for the services and the services handle the
	// hub's events, so wiring happens in two steps.
	hub := signalsrv.NewWebSocketServer(authService, presenceRepo, mirror, metrics, log)
	hub.SetPingInterval(cfg.Signal.PingInterval)
	hub.SetPongTimeout(cfg.Signal.PongTimeout)
	hub.SetWriteTimeout(cfg.Signal.WriteTimeout)
	if cfg.RateLimiting.Enabled {
		hub.SetMessageLimit(cfg.RateLimiting.WebSocket.MessagesPerSecond, cfg.RateLimiting.WebSocket.Burst)
		hub.SetMaxMessageSize(cfg.RateLimiting.WebSocket.MaxMessageSizeBytes)
	}

	notificationService := services.NewNotificationService(hub, metrics, log)
	callService := services.NewCallService(callRepo, presenceRepo, hub, log)
	streamService := services.NewStreamService(streamRepo, hub, log)
	hub.Bind(notificationService, callService, streamService)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.NewCORSMiddleware(cfg.Auth.AllowedOrigins))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	statusHandler := httphandlers.NewStatusHandler(presenceRepo, callService, streamService)
	statusHandler.SetupRoutes(router)

	router.GET("/ws", gin.WrapF(hub.HandleWebSocket))

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting PulseHub coordinator on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down PulseHub coordinator...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer provider", "error", err)
	}

	log.Info("PulseHub coordinator stopped")
}
