package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mindmate-chat/backend/internal/api"
	"mindmate-chat/backend/pkg/config"
	"mindmate-chat/backend/pkg/errors"
	"mindmate-chat/backend/pkg/health"
	"mindmate-chat/backend/pkg/logger"
	"mindmate-chat/backend/pkg/middleware"
)

// Router is the main HTTP surface of the application
type Router struct {
	Engine *gin.Engine
	Logger *logger.Logger
	Config *config.Config

	sessions *api.SessionController
	chat     *api.ChatController
	checker  *health.Checker
	metrics  http.Handler
}

// New creates a router with the shared middleware chain installed
func New(
	cfg *config.Config,
	log *logger.Logger,
	sessions *api.SessionController,
	chat *api.ChatController,
	checker *health.Checker,
	metrics http.Handler,
) *Router {
	logger.SetGlobal(log)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger first so every request gets an ID and a request log line
	engine.Use(logger.Middleware(log))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiter := middleware.NewRateLimiter(log)
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:   engine,
		Logger:   log,
		Config:   cfg,
		sessions: sessions,
		chat:     chat,
		checker:  checker,
		metrics:  metrics,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	v1 := r.Engine.Group("/api/v1")
	r.sessions.RegisterRoutesV1(v1)
	r.chat.RegisterRoutesV1(v1)

	if r.checker != nil {
		r.Engine.GET("/health", gin.WrapF(r.checker.HTTPHandler()))
	} else {
		r.Engine.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
	}

	if r.metrics != nil {
		r.Engine.GET("/metrics", gin.WrapH(r.metrics))
	}

	r.Engine.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 5 && c.Request.URL.Path[:5] == "/api/" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "API endpoint not found",
				},
				"path": c.Request.URL.Path,
			})
		}
	})
}

// corsMiddleware reflects allowed origins and answers preflight requests
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowAll && origin == "" {
			origin = "*"
		}
		if allowAll || allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
