package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"or-schedule-backend/config"
	"or-schedule-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router around the handler.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		r.Use(cors.New(corsCfg))
	}

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	caching := mw.Cache(h.cache, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rooms", caching, h.GetRooms)
		api.GET("/surgeons", caching, h.GetSurgeons)
		api.GET("/cases", caching, h.GetCases)
		api.GET("/schedule/grid", caching, h.GetScheduleGrid)
		api.GET("/analytics", caching, h.GetAnalytics)
		api.GET("/summary", caching, h.GetSummary)

		api.POST("/cases", h.PostCase)
		api.POST("/cases/move", h.MoveCase)
		api.POST("/schedule/compact", h.CompactSchedule)
		api.POST("/schedule/optimize", h.OptimizeSchedule)
		api.POST("/schedule/import", h.ImportSchedule)

		api.POST("/chat", h.PostChat)
		api.DELETE("/chat/:session_id", h.CloseChat)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}

// NewCache builds the response cache used by the GET middleware.
func NewCache(ttlSeconds int) *cache.Cache {
	ttl := time.Duration(ttlSeconds) * time.Second
	return cache.New(ttl, 2*ttl)
}
