package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/notice-suspension-api/internal/handler"
	"github.com/noah-isme/notice-suspension-api/internal/middleware"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/pkg/config"
	"github.com/noah-isme/notice-suspension-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/notice-suspension-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/notice-suspension-api/pkg/middleware/requestid"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// NewRouter mounts every HTTP route.
func NewRouter(a *App) *gin.Engine {
	cfg := a.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.Metrics))

	deps := map[string]handler.Pinger{"database": a.DB}
	if a.MirrorDB != nil {
		deps["mirror_database"] = a.MirrorDB
	}
	if a.Redis != nil {
		deps["redis"] = redisPinger{client: a.Redis}
	}
	metricsHandler := handler.NewMetricsHandler(a.Metrics, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	suspensions := handler.NewSuspensionHandler(a.Suspensions, a.Revivals, a.Reasons)
	autoRevival := handler.NewAutoRevivalHandler(a.AutoRevival)
	notices := handler.NewNoticeHandler(a.History)

	api := r.Group(cfg.APIPrefix)
	if cfg.Env != config.EnvProduction {
		api.POST("/auth/token", handler.NewAuthHandler(a.Auth).Token)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(a.Auth))

	secured.GET("/suspension-codes", suspensions.Codes)
	secured.GET("/notices/:noticeNo/suspensions", notices.History)
	secured.GET("/notices/:noticeNo/suspensions/export", notices.Export)

	staff := secured.Group("/staff/suspensions", middleware.RequireRoles(models.RoleStaff))
	staff.POST("/apply", middleware.Audit(a.Audit, a.Logger, models.AuditActionSuspensionApply, "suspension_batch", ""), suspensions.StaffApply)
	staff.POST("/revive", middleware.Audit(a.Audit, a.Logger, models.AuditActionSuspensionRevive, "suspension_batch", ""), suspensions.Revive)

	plus := secured.Group("/plus/suspensions", middleware.RequireRoles(models.RolePlus))
	plus.POST("/apply", suspensions.PlusApply)
	plus.POST("/revive", middleware.Audit(a.Audit, a.Logger, models.AuditActionSuspensionRevive, "suspension_batch", ""), suspensions.Revive)

	internal := secured.Group("/internal", middleware.RequireRoles(models.RoleSystem))
	internal.POST("/suspensions/apply", suspensions.InternalApply)
	internal.POST("/payments/:noticeNo", middleware.Audit(a.Audit, a.Logger, models.AuditActionPaymentRevival, "notice", "noticeNo"), autoRevival.Payment)
	internal.POST("/auto-revival/expired", middleware.Audit(a.Audit, a.Logger, models.AuditActionExpiredRevival, "auto_revival", ""), autoRevival.Expired)

	return r
}
