package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/middleware"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/service"
)

// Routes bundles everything RegisterRoutes mounts.
type Routes struct {
	Prefix      string
	AuthEnabled bool
	Tokens      *service.TokenService
	IngestLimit *middleware.RateLimiter
	AuditLog    *zap.Logger

	Auth       *AuthHandler
	Broadcasts *BroadcastHandler
	Alerts     *AlertHandler
	Settings   *SettingHandler
	Channels   *ChannelHandler
	Carrier    *CarrierHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts the ops endpoints at the root and the API under the prefix.
func RegisterRoutes(r *gin.Engine, rt Routes) {
	r.GET("/health", rt.Metrics.Health)
	r.GET("/ready", rt.Metrics.Ready)
	r.GET("/metrics", rt.Metrics.Prometheus)

	base := r.Group(rt.Prefix)
	var tokens *service.TokenService
	if rt.AuthEnabled {
		tokens = rt.Tokens
		if rt.Auth != nil {
			base.POST("/auth/token", rt.Auth.Token)
		}
	}
	api := base.Group("", middleware.JWT(tokens))

	radio := middleware.RequireRoles(rt.AuthEnabled, models.RoleRadio)
	settings := middleware.RequireRoles(rt.AuthEnabled, models.RoleSettings)
	viewer := middleware.RequireRoles(rt.AuthEnabled, models.RoleViewer, models.RoleSettings, models.RoleRadio)

	audit := func(action string) gin.HandlerFunc { return middleware.Audit(rt.AuditLog, action) }

	ingest := []gin.HandlerFunc{radio}
	if rt.IngestLimit != nil {
		ingest = append(ingest, rt.IngestLimit.Handler())
	}

	broadcasts := api.Group("/broadcasts")
	broadcasts.POST("", append(ingest, rt.Broadcasts.Ingest)...)
	broadcasts.GET("", viewer, rt.Broadcasts.List)
	broadcasts.GET("/unread-count", viewer, rt.Broadcasts.UnreadCount)
	broadcasts.GET("/export", viewer, rt.Broadcasts.Export)
	broadcasts.POST("/read-by-time", viewer, rt.Broadcasts.MarkReadByTime)
	broadcasts.POST("/purge", settings, audit("broadcasts.purge"), rt.Broadcasts.Purge)
	broadcasts.DELETE("", settings, audit("broadcasts.delete_all"), rt.Broadcasts.DeleteAll)
	broadcasts.GET("/:id", viewer, rt.Broadcasts.Get)
	broadcasts.POST("/:id/read", viewer, rt.Broadcasts.MarkRead)
	broadcasts.DELETE("/:id", viewer, rt.Broadcasts.Delete)

	alerts := api.Group("/alerts", viewer)
	alerts.GET("/reminder", rt.Alerts.Reminder)
	alerts.POST("/dismiss", rt.Alerts.Dismiss)

	settingsGroup := api.Group("/settings")
	settingsGroup.GET("", viewer, rt.Settings.List)
	settingsGroup.PUT("", settings, audit("settings.bulk_update"), rt.Settings.BulkUpdate)
	settingsGroup.GET("/:name", viewer, rt.Settings.Get)
	settingsGroup.PUT("/:name", settings, audit("settings.update"), rt.Settings.Update)

	channels := api.Group("/channels")
	channels.GET("", viewer, rt.Channels.List)
	channels.POST("", settings, audit("channels.create"), rt.Channels.Create)
	channels.POST("/cdma-program", radio, audit("channels.cdma_program"), rt.Channels.CdmaProgram)
	channels.PUT("/:id", settings, audit("channels.update"), rt.Channels.Update)
	channels.DELETE("/:id", settings, audit("channels.delete"), rt.Channels.Delete)

	carrier := api.Group("/carrier")
	carrier.GET("/channel-ranges", viewer, rt.Carrier.Ranges)
	carrier.PUT("/channel-ranges", settings, audit("carrier.apply_ranges"), rt.Carrier.ApplyRanges)
}
