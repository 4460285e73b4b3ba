package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/dinewise/internal/config"
	"github.com/iliyamo/dinewise/internal/handler"
	"github.com/iliyamo/dinewise/internal/middleware"
	"github.com/iliyamo/dinewise/internal/utils"
)

// Deps carries everything the routes need.  Redis may be nil, in which case
// caching and rate limiting are skipped.
type Deps struct {
	Auth      *handler.AuthHandler
	Public    *handler.PublicHandler
	Member    *handler.MemberHandler
	Tokens    *utils.TokenIssuer
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// Use installs the middleware shared by every route: panic recovery, the
// request logger, security headers, CORS for the browser frontend and the
// request body limit.
func Use(e *echo.Echo, log *logrus.Logger, h config.HTTPConfig) {
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: h.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
		},
		ExposeHeaders: []string{echo.HeaderXRequestID, "X-Cache", "Retry-After"},
	}))
	e.Use(echomw.BodyLimit(h.BodyLimit))
}

// RegisterRoutes registers the health check, which sits outside /api so
// that it is never rate limited.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers every /api route.  Registration, login and the
// restaurant reads are public; everything else runs JWTAuth first.
func RegisterAPI(e *echo.Echo, d Deps) {
	api := e.Group("/api", middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Tokens))

	// Unauthenticated operations.
	api.POST("/users", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)

	// Public reads go through the response cache.
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	api.GET("/restaurants", d.Public.ListRestaurants, cache)
	api.GET("/restaurants/:id", d.Public.GetRestaurant, cache)

	// Protected endpoints.
	auth := middleware.JWTAuth(d.Tokens)
	api.GET("/me", d.Auth.Me, auth)
	api.POST("/restaurants", d.Member.CreateRestaurant, auth)
	api.POST("/ratings", d.Member.CreateRating, auth)
	api.POST("/reviews", d.Member.CreateReview, auth)
}
