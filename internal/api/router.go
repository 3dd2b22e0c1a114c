package api

import (
	"github.com/gin-gonic/gin"

	"github.com/luminakb/lumina/internal/api/admin"
	"github.com/luminakb/lumina/internal/api/chat"
	"github.com/luminakb/lumina/internal/api/middleware"
	"github.com/luminakb/lumina/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey           string
	AllowOrigins     []string
	RateLimitEnabled bool
	RequestsPerHour  int
}

// SetupRouter sets up the Gin router
func SetupRouter(
	adminService *service.AdminService,
	ingestService *service.IngestService,
	chatService *service.ChatService,
	seekService *service.SeekService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Chat API (public, rate limited)
	chatHandler := chat.NewHandler(chatService, seekService)
	chatGroup := r.Group("/api")
	if cfg.RateLimitEnabled {
		chatGroup.Use(middleware.RateLimit(cfg.RequestsPerHour))
	}
	chatHandler.RegisterRoutes(chatGroup)

	// Admin API (requires API key)
	adminHandler := admin.NewHandler(adminService, ingestService)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.Auth(cfg.APIKey))
	adminHandler.RegisterRoutes(adminGroup)

	return r
}
