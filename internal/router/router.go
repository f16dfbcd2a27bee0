package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/handler"
	"github.com/stemsi/school-directory/internal/middleware"
	"github.com/stemsi/school-directory/internal/response"
)

// mediaMaxAge is one year; stored image names never change content.
const mediaMaxAge = 31536000

// Handlers groups all handler instances for route setup.
type Handlers struct {
	School *handler.SchoolHandler
	Health *handler.HealthHandler
}

// SetupRouter configures the API routes, static media and global middlewares.
// createLimiter may be nil to leave POST /add-school unlimited.
func SetupRouter(handlers *Handlers, cfg *config.Config, createLimiter *middleware.RateLimiter, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*).
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS", "DELETE"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", handler.HeaderIdempotencyKey, "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.Brotli())

	// ─── Media Store ───────────────────────────────────────────────────
	// Uploaded images are served from MEDIA_DIR under /schoolImages.
	router.Use(
		middleware.CacheControl(config.MediaURLPrefix, mediaMaxAge),
		static.Serve(config.MediaURLPrefix, static.LocalFile(cfg.MediaDir, false)),
	)

	// ─── API ───────────────────────────────────────────────────────────
	router.GET("/health", handlers.Health.Health)

	createChain := []gin.HandlerFunc{handlers.School.AddSchool}
	if createLimiter != nil {
		createChain = append([]gin.HandlerFunc{createLimiter.Middleware()}, createChain...)
	}
	router.POST("/add-school", createChain...)
	router.GET("/get-schools", handlers.School.GetSchools)
	router.DELETE("/delete-school/:id", handlers.School.DeleteSchool)

	return router
}
