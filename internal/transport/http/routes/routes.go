package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/infra/config"
	"github.com/aidosk/gameverse/internal/infra/security"
	"github.com/aidosk/gameverse/internal/transport/http/handlers"
	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Catalog       *usecase.CatalogService
	Reviews       *usecase.ReviewService
	Cart          *usecase.CartService
	Checkout      *usecase.CheckoutService
	Profile       *usecase.ProfileService
	Notifications *usecase.NotificationService
	PasswordReset *usecase.PasswordResetService
	Admin         *usecase.AdminService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Sessions    *security.SessionManager
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	userAuth := middleware.RequireAuth(deps.Sessions, security.RoleUser)
	adminAuth := middleware.RequireAuth(deps.Sessions, security.RoleAdmin)
	// Carts accept anonymous sessions, so authentication stays optional there.
	optionalAuth := optionalAuthMiddleware(deps.Sessions)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		isDev := deps.Config.App.Env == "development"
		dispatcher := handlers.NewLoggingNotificationDispatcher(deps.Logger)

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(api.Group("/auth"), buildLoginMiddlewares(deps)...)

		catalogHandler := handlers.NewCatalogHandler(deps.Services.Catalog, deps.Services.Reviews)
		catalogHandler.RegisterRoutes(api.Group("/games"), userAuth)

		cartHandler := handlers.NewCartHandler(deps.Services.Cart)
		cartGroup := api.Group("/cart")
		cartGroup.Use(optionalAuth)
		cartHandler.RegisterRoutes(cartGroup)

		checkoutHandler := handlers.NewCheckoutHandler(deps.Services.Checkout)
		checkoutGroup := api.Group("")
		checkoutGroup.Use(userAuth)
		checkoutHandler.RegisterRoutes(checkoutGroup)

		profileHandler := handlers.NewProfileHandler(deps.Services.Profile)
		profileGroup := api.Group("/profile")
		profileGroup.Use(userAuth)
		profileHandler.RegisterRoutes(profileGroup)

		notificationHandler := handlers.NewNotificationHandler(deps.Services.Notifications)
		notificationGroup := api.Group("/notifications")
		notificationGroup.Use(userAuth)
		notificationHandler.RegisterRoutes(notificationGroup)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, dispatcher, isDev)
		passwordHandler.RegisterRoutes(api.Group("/password/reset"), buildPasswordResetMiddlewares(deps)...)

		adminHandler := handlers.NewAdminHandler(deps.Services.Admin)
		adminGroup := api.Group("/admin")
		adminGroup.Use(adminAuth)
		adminHandler.RegisterRoutes(adminGroup)
	}

	return r
}

// optionalAuthMiddleware runs the auth chain only when an Authorization
// header is present, so anonymous cart sessions pass through untouched.
func optionalAuthMiddleware(sessions *security.SessionManager) gin.HandlerFunc {
	required := middleware.RequireAuth(sessions, security.RoleUser)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		required(c)
	}
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "auth_login_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}

func buildPasswordResetMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.PasswordResetMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Hour
	}

	rule := middleware.RateLimitRule{
		Name:       "password_reset_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
