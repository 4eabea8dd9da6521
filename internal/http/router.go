// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS, and
// security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Per-route validation before authentication, so malformed requests are
//     reported as such regardless of credentials
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/auth"
	"github.com/velotrack/go-ride-backend/internal/config"
	"github.com/velotrack/go-ride-backend/internal/domain"
	"github.com/velotrack/go-ride-backend/internal/http/handlers"
	"github.com/velotrack/go-ride-backend/internal/http/middleware"
	"github.com/velotrack/go-ride-backend/internal/repo"
	"github.com/velotrack/go-ride-backend/internal/services"
)

// rideRepoShim adapts the repository free functions to the services.RideRepo
// interface expected by the RideService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type rideRepoShim struct{}

// CreateRide proxies repo.CreateRide.
func (rideRepoShim) CreateRide(ctx context.Context, db *gorm.DB, ride *domain.Ride) (*domain.Ride, error) {
	return repo.CreateRide(ctx, db, ride)
}

// ListRides proxies repo.ListRides.
func (rideRepoShim) ListRides(ctx context.Context, db *gorm.DB, ownerID *uint) ([]domain.Ride, error) {
	return repo.ListRides(ctx, db, ownerID)
}

// GetRide proxies repo.GetRide.
func (rideRepoShim) GetRide(ctx context.Context, db *gorm.DB, id uint) (*domain.Ride, error) {
	return repo.GetRide(ctx, db, id)
}

// UpdateRideFields proxies repo.UpdateRideFields.
func (rideRepoShim) UpdateRideFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) (*domain.Ride, error) {
	return repo.UpdateRideFields(ctx, db, id, fields)
}

// DeleteRide proxies repo.DeleteRide.
func (rideRepoShim) DeleteRide(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteRide(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, and then mounts
// the public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter and response compression
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. CORS and security headers
//
// Route-level chains then run validation first and authentication second.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, authn *auth.Authenticator, cfg config.Config) {
	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to the JSON error envelope
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and gzip responses
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Fallback: unknown routes and methods share the not-found shape
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, apierr.NotFound("Endpoint", nil))
	})

	// Dependency injection: services ← repo/db/authenticator
	rideSvc := services.NewRideService(db, rideRepoShim{})
	accountSvc := services.NewAccountService(db, authn, cfg.Auth.BcryptCost)
	h := handlers.New(rideSvc, accountSvc, handlers.NewHealthChecker(db))

	// Liveness/health (rich payload: db probe, memory, uptime)
	r.GET("/health", h.Health)

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))
	}

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Accounts (unauthenticated)
		api.POST("/auth/register", handlers.ValidateBody[handlers.CredentialsRequest](), h.Register)
		api.POST("/auth/login", handlers.ValidateBody[handlers.CredentialsRequest](), h.Login)

		// Rides (validation, then bearer auth, then handler)
		rides := api.Group("/rides")
		rides.GET("", middleware.RequireAuth(authn), h.ListRides)
		rides.POST("", handlers.ValidateBody[handlers.CreateRideRequest](), middleware.RequireAuth(authn), h.CreateRide)
		rides.GET("/:id", handlers.ValidateIDParam(), middleware.RequireAuth(authn), h.GetRide)
		rides.PUT("/:id", handlers.ValidateIDParam(), handlers.ValidateBody[handlers.UpdateRideRequest](), middleware.RequireAuth(authn), h.UpdateRide)
		rides.DELETE("/:id", handlers.ValidateIDParam(), middleware.RequireAuth(authn), h.DeleteRide)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
