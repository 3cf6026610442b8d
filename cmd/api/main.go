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

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/adapters/cache"
	"github.com/corpcare/agentbooking/internal/adapters/database"
	"github.com/corpcare/agentbooking/internal/adapters/events"
	"github.com/corpcare/agentbooking/internal/api/handlers"
	"github.com/corpcare/agentbooking/internal/api/middleware"
	"github.com/corpcare/agentbooking/internal/api/routes"
	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/redis"
	"github.com/corpcare/agentbooking/internal/infrastructure/notifications"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	"github.com/corpcare/agentbooking/internal/infrastructure/realtime"
	"github.com/corpcare/agentbooking/migrations"
	"github.com/corpcare/agentbooking/pkg/config"
)

const (
	cacheWarmInterval = 15 * time.Minute
	loginInterval     = 12 * time.Second
	loginBurst        = 5
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env, cfg.Server.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to shut down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	pending, err := migrations.All()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load migrations")
	}
	if _, err := pgClient.Migrate(ctx, pending); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	healthChecks := map[string]routes.HealthCheck{"postgres": pgClient.Ping}

	// Redis backs the caches and the event bus; without it the process runs
	// uncached with an in-memory bus
	var (
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		healthChecks["redis"] = redisClient.Ping
	}

	// Initialize repositories
	userRepo := database.NewUserAdapter(pgClient)
	tokenRepo := database.NewRefreshTokenAdapter(pgClient)
	agentRepo := database.NewAgentAdapter(pgClient)
	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	paymentRepo := database.NewPaymentAdapter(pgClient)
	reportRepo := database.NewReportAdapter(pgClient)
	notificationRepo := database.NewNotificationAdapter(pgClient)

	var doctorRepo repositories.DoctorRepository = database.NewDoctorAdapter(pgClient)
	if cacheProvider != nil {
		doctorRepo = database.NewCachedDoctorAdapter(doctorRepo, cacheProvider)
	}

	// Initialize notification channels
	var emailSender providers.EmailSender
	if cfg.SMTP.Enabled {
		emailSender = notifications.NewSMTPSender(cfg.SMTP)
	}
	renderer, err := notifications.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse email templates")
	}

	// Initialize services
	notificationService := services.NewNotificationService(
		notificationRepo, agentRepo, userRepo, emailSender, renderer, eventBus, metrics,
	)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWT)
	authService := services.NewAuthService(
		pgClient, userRepo, agentRepo, tokenRepo, tokenIssuer, auth.NewBcryptHasher(0), cfg.JWT.RefreshTTL,
	)
	appointmentService := services.NewAppointmentService(
		pgClient, appointmentRepo, doctorRepo, paymentRepo, notificationService, metrics, cfg.Booking.MaxBulkSize,
	)
	doctorService := services.NewDoctorService(doctorRepo, appointmentRepo, cacheProvider)
	agentService := services.NewAgentService(agentRepo, userRepo)
	dashboardService := services.NewDashboardService(appointmentRepo, paymentRepo, cacheProvider, cfg.Booking.DashboardWindowDays)
	paymentService := services.NewPaymentService(paymentRepo)
	reportService := services.NewReportService(reportRepo, appointmentRepo, paymentRepo)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation service")
			cacheInvalidationService = nil
		}

		warmer := services.NewCacheWarmingService(doctorRepo, doctorService)
		go warmer.StartPeriodicWarming(ctx, cacheWarmInterval)
	}

	hub := realtime.NewHub()
	go func() {
		if err := hub.Run(ctx, eventBus); err != nil {
			log.Error().Err(err).Msg("Realtime hub stopped")
		}
	}()

	// Initialize handlers
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Agents:        handlers.NewAgentHandler(agentService, dashboardService),
		Doctors:       handlers.NewDoctorHandler(doctorService),
		Appointments:  handlers.NewAppointmentHandler(appointmentService),
		Payments:      handlers.NewPaymentHandler(paymentService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Reports:       handlers.NewReportHandler(reportService),
		Stream:        handlers.NewSSEHandler(eventBus),
		WebSocket:     handlers.NewWebSocketHandler(realtime.NewUpgrader(hub, cfg.Server.AllowedOrigins)),
	}

	router := routes.NewRouter(h, middleware.NewAuthenticator(tokenIssuer), routes.Options{
		LoginLimiter:    middleware.NewRateLimiter(loginInterval, loginBurst),
		CacheMiddleware: middleware.NewCacheMiddleware(cacheProvider),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		HealthChecks:    healthChecks,
		Metrics:         metrics,
	})

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// No WriteTimeout: event streams stay open for the life of the client
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	cancel()

	if err := notificationService.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Pending notifications abandoned")
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
