package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/infra/config"
	"github.com/aidosk/gameverse/internal/infra/database"
	kafkainfra "github.com/aidosk/gameverse/internal/infra/kafka"
	"github.com/aidosk/gameverse/internal/infra/logger"
	redisinfra "github.com/aidosk/gameverse/internal/infra/redis"
	"github.com/aidosk/gameverse/internal/infra/security"
	"github.com/aidosk/gameverse/internal/infra/telemetry"
	postgresrepo "github.com/aidosk/gameverse/internal/repository/postgres"
	redisrepo "github.com/aidosk/gameverse/internal/repository/redis"
	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/transport/http/routes"
	"github.com/aidosk/gameverse/internal/usecase"
)

type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	telemetry *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracing, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	sessions, err := security.NewSessionManager(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	signupBalance, err := decimal.NewFromString(cfg.Store.SignupBalance)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("parse signup balance: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	purchases := postgresrepo.NewPurchaseStore(pool)

	cartStore := redisrepo.NewCartRepository(redisClient.Client(), cfg.Redis.CartPrefix, cfg.Redis.CartTTL)

	verifiedTTL := cfg.Reset.VerifiedTTL
	if verifiedTTL <= 0 {
		verifiedTTL = 15 * time.Minute
	}
	resetState := redisrepo.NewResetStateRepository(redisClient.Client(), cfg.Redis.ResetPrefix, verifiedTTL)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	passwordValidator := security.DefaultPasswordValidator()

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "store:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	authService := usecase.NewAuthService(repos.Users, repos.Admins, repos.Notifications, eventPublisher, sessions, passwordValidator, signupBalance, cfg.Store.AdminSignupKey, log)
	catalogService := usecase.NewCatalogService(repos.Games, repos.Reviews)
	reviewService := usecase.NewReviewService(repos.Reviews, repos.Games, repos.Notifications, log)
	cartService := usecase.NewCartService(cartStore, repos.Games, log)
	checkoutService := usecase.NewCheckoutService(purchases, cartStore, repos.Users, repos.Games, repos.Orders, repos.Notifications, eventPublisher, log)
	profileService := usecase.NewProfileService(repos.Users, repos.Orders, eventPublisher, passwordValidator, cfg.Store.RecentOrders, log)
	notificationService := usecase.NewNotificationService(repos.Notifications)
	passwordResetService := usecase.NewPasswordResetService(repos.Users, repos.ResetTokens, resetState, eventPublisher, passwordValidator, log)
	if cfg.Reset.CodeTTL > 0 {
		passwordResetService.WithTTL(cfg.Reset.CodeTTL)
	}
	if cfg.Reset.CodeLength > 0 {
		passwordResetService.WithCodeLength(cfg.Reset.CodeLength)
	}
	adminService := usecase.NewAdminService(repos.Users, repos.Games, repos.Orders, repos.ActivityLogs, checkoutService, profileService, eventPublisher, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Sessions:    sessions,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Catalog:       catalogService,
			Reviews:       reviewService,
			Cart:          cartService,
			Checkout:      checkoutService,
			Profile:       profileService,
			Notifications: notificationService,
			PasswordReset: passwordResetService,
			Admin:         adminService,
		},
	})

	return &Application{
		cfg:       cfg,
		engine:    engine,
		logger:    log,
		pool:      pool,
		redis:     redisClient,
		telemetry: tracing,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.telemetry != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.telemetry.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting storefront API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
