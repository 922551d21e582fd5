package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tourbooking/auth-service/internal/api/handler"
	"github.com/tourbooking/auth-service/internal/api/middleware"
	"github.com/tourbooking/auth-service/internal/core/domain"
	"github.com/tourbooking/auth-service/internal/core/ports"
	"github.com/tourbooking/auth-service/internal/core/service"
	"github.com/tourbooking/auth-service/internal/core/token"
	"github.com/tourbooking/auth-service/internal/infrastructure/config"
	mongodb "github.com/tourbooking/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/tourbooking/auth-service/internal/infrastructure/db/redis"
)

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditPublisher, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	codec, err := token.NewCodec(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	if err != nil {
		return nil, err
	}

	store := mongodb.NewCredentialStore(db, cfg.Lockout.MaxFailedAttempts, cfg.Lockout.Window())

	authService, err := service.NewAuthService(store, codec, service.TokenSettings{
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL(),
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL(),
		StrictRefresh:   cfg.JWT.StrictRefresh,
	}, audit, log)
	if err != nil {
		return nil, err
	}
	userService := service.NewUserService(store, audit, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	requireAuth := middleware.Auth(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	requireAdmin := middleware.RBAC(domain.RoleAdmin)
	throttle := middleware.Throttle(
		redisdb.NewRegistrationLimiter(rdb, cfg.Throttle.RegistrationMaxAttempts, cfg.Throttle.RegistrationCooldown()),
		log,
	)

	// --- Auth routes ---
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/refresh-token", authHandler.Refresh)

	// --- Registration routes ---
	e.POST("/api/user/register-booker", userHandler.RegisterBooker, throttle)
	e.POST("/api/user/register-employee", userHandler.RegisterEmployee, requireAuth, requireAdmin)
	e.POST("/api/user/register-admin", userHandler.RegisterAdmin, requireAuth, requireAdmin)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
