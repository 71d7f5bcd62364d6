package handler

import (
	"context"
	"net/http"
	"time"

	"visa_referral/internal/middleware"
	"visa_referral/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services are the domain services the HTTP layer exposes.
type Services struct {
	Auth          service.AuthService
	Referrals     service.ReferralService
	Notifications service.NotificationService
	Dashboard     service.DashboardService
}

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	Origins []string
	Metrics *middleware.HTTPMetrics
	// Health reports whether the storage backend is reachable.
	Health func(ctx context.Context) error
	Log    *zap.Logger
}

// NewRouter builds the gin engine serving the API under /api.
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log), opts.Metrics.Handler())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = opts.Origins
	if len(opts.Origins) == 0 || opts.Origins[0] == "*" {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	authHandler := NewAuthHandler(svc.Auth, svc.Dashboard, log)
	referralHandler := NewReferralHandler(svc.Referrals, log)
	notificationHandler := NewNotificationHandler(svc.Notifications, log)

	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup)

	protected := apiGroup.Group("", middleware.JWTAuthMiddleware(svc.Auth))
	users := protected.Group("/users/:id", middleware.OwnerMiddleware("id"))
	authHandler.RegisterProtectedRoutes(protected, users)
	referralHandler.RegisterReferralRoutes(protected, users)
	notificationHandler.RegisterNotificationRoutes(protected, users)

	router.GET("/health", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return router
}
