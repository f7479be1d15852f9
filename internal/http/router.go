// Package httpapi wires the HTTP transport (Gin) to the command dispatcher,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/command"
	"github.com/tbourn/go-messenger-backend/internal/config"
	"github.com/tbourn/go-messenger-backend/internal/http/handlers"
	"github.com/tbourn/go-messenger-backend/internal/http/middleware"
	"github.com/tbourn/go-messenger-backend/internal/notify"
	"github.com/tbourn/go-messenger-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. The hub doubles as the Notifier handed to the services, so every
// state change fans out to live websocket sessions.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip (skipping the websocket path)
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *notify.Hub, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Global body size limit (1 MiB).
	r.Use(limitBody(1 << 20))

	// Compression. The websocket endpoint must stay uncompressed or the
	// upgrade handshake breaks.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	registerCORS(r, cfg)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(handlers.NotFound)
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed,
			command.Fail[command.Unit](command.CodeValidationFailed, "method not allowed"))
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: dispatcher ← services ← db/hub
	moderation := services.NewModerationService(db)
	chats := services.NewChatService(db, moderation, hub)
	messages := services.NewMessageService(db, moderation, hub)
	messages.MaxTextRunes = cfg.MaxTextRunes

	dispatcher := &command.Dispatcher{
		Chats:      chats,
		Messages:   messages,
		Moderation: moderation,
	}
	users := &services.UserService{
		DB:          db,
		TokenSecret: cfg.TokenSecret,
		TokenTTL:    cfg.TokenTTL,
	}

	h := handlers.New(dispatcher)
	authH := handlers.NewAuth(users)
	ws := handlers.NewWS(hub, cfg.TokenSecret)

	// Realtime delivery; does its own token check (query param or header).
	r.GET("/ws", ws.Serve)

	api := groupWithPrefix(r, cfg.APIBasePath)

	// Account endpoints, reachable without a token.
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	// Everything below requires an authenticated identity: the dispatcher
	// panics on commands without one, so the auth gate is not optional.
	protected := api.Group("", middleware.RequireAuth(cfg.TokenSecret))
	{
		// Channels
		protected.POST("/channels", h.CreateChannel)
		protected.GET("/channels", h.SearchChannels)
		protected.POST("/channels/:id/join", h.JoinChannel)
		protected.POST("/channels/:id/leave", h.LeaveChannel)

		// Messages
		protected.POST("/chats/:id/messages", h.SendMessage)
		protected.GET("/chats/:id/messages", h.ListMessages)
		protected.GET("/chats/:id/messages/search", h.SearchMessages)
		protected.PUT("/chats/:id/messages/:messageID", h.EditMessage)
		protected.DELETE("/chats/:id/messages/:messageID", h.DeleteMessage)

		// Moderation
		protected.POST("/chats/:id/restrictions", h.ImposeRestriction)
	}
}

// registerCORS installs the CORS posture: allow-all when no origins are
// configured, strict allowlist otherwise.
func registerCORS(r *gin.Engine, cfg config.Config) {
	common := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		common.AllowAllOrigins = true
		r.Use(cors.New(common))
		return
	}
	common.AllowOrigins = cfg.CORS.AllowedOrigins
	r.Use(cors.New(common))
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Requests exceeding the cap cause downstream body
// reads to error.
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
