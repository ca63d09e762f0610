package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkwell/content-api/internal/api/handler"
	"github.com/inkwell/content-api/internal/api/middleware"
	"github.com/inkwell/content-api/internal/core/ports"
	"github.com/inkwell/content-api/internal/core/service"
	"github.com/inkwell/content-api/internal/infrastructure/config"
	mongodb "github.com/inkwell/content-api/internal/infrastructure/db/mongo"
	redisdb "github.com/inkwell/content-api/internal/infrastructure/db/redis"
)

// maxBodySize caps request payloads; posts are text, nothing legitimate
// comes close to this.
const maxBodySize = "1M"

// routerDeps bundles the services and stores the routes are built from,
// so route wiring can be exercised without live Mongo/Redis.
type routerDeps struct {
	auth      ports.AuthService
	posts     ports.PostService
	limiter   middleware.Limiter
	health    *handler.HealthHandler
	readiness *handler.ReadinessHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	userRepo := mongodb.NewUserRepository(db)
	postRepo := mongodb.NewPostRepository(db)

	deps := routerDeps{
		auth:      service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL),
		posts:     service.NewPostService(postRepo, userRepo, log),
		limiter:   redisdb.NewRateLimiter(rdb, cfg.RateLimit.Window, cfg.RateLimit.Max),
		health:    handler.NewHealthHandler(),
		readiness: handler.NewReadinessHandler(db, rdb),
	}

	return buildRouter(deps, log)
}

func buildRouter(deps routerDeps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(maxBodySize))

	authHandler := handler.NewAuthHandler(deps.auth)
	postHandler := handler.NewPostHandler(deps.posts)

	requireAuth := middleware.Auth(deps.auth)
	optionalAuth := middleware.OptionalAuth(deps.auth)
	rateLimit := middleware.RateLimit(deps.limiter, log)

	// --- Auth routes ---
	auth := e.Group("/api/v1/auth")
	auth.POST("/register", authHandler.Register, rateLimit)
	auth.POST("/login", authHandler.Login, rateLimit)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- Post routes ---
	// /public and /:id are registered on the same group; Echo prefers the
	// static segment, so "public" never resolves as a post id.
	// Write routes all carry the rate limiter; reads do not.
	posts := e.Group("/api/v1/posts")
	posts.GET("/public", postHandler.ListPublic)
	posts.GET("/:id", postHandler.Get, optionalAuth)
	posts.GET("", postHandler.ListMine, requireAuth)
	posts.POST("", postHandler.Create, requireAuth, rateLimit)
	posts.PUT("/:id", postHandler.Update, requireAuth, rateLimit)
	posts.DELETE("/:id", postHandler.Delete, requireAuth, rateLimit)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", deps.health.Liveness)
	e.GET("/health/ready", deps.readiness.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
