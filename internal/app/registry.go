package app

import (
	"net/http"
	"time"

	"digiwave-dashboard/internal/attendance"
	"digiwave-dashboard/internal/config"
	"digiwave-dashboard/internal/middleware"
	"digiwave-dashboard/internal/notification"
	"digiwave-dashboard/internal/rbac"
	"digiwave-dashboard/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const idempotencyTTL = 10 * time.Minute

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	manager *attendance.Manager,
	inbox *notification.Inbox,
	rbacService rbac.Service,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	router.Use(middleware.RequestID())
	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"sessions": manager.Len()})
	})

	limiter := middleware.NewKeyedRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	manager.OnUnmount(func(id attendance.Identity) { limiter.Forget(id.UserID) })

	actionGuards := []gin.HandlerFunc{middleware.RateLimitByUser(limiter)}
	if rdb != nil {
		actionGuards = append(actionGuards, middleware.Idempotency(rdb, idempotencyTTL, logger))
	}

	attendanceHandler := attendance.NewHandler(manager, inbox, logger)

	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, attendance.RouteMiddleware{
			Auth: []gin.HandlerFunc{
				middleware.AuthMiddleware(cfg.JWTSecret),
				middleware.ContextLogger(logger),
			},
			Actions: actionGuards,
			Details: []gin.HandlerFunc{
				middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionViewDetails),
			},
		})
	}
}
