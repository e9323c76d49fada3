package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/handler"
	"github.com/stemsi/qbank-backend/internal/middleware"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/response"
	"github.com/stemsi/qbank-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Library    *handler.LibraryHandler
	Question   *handler.QuestionHandler
	Import     *handler.ImportHandler
	Paper      *handler.PaperHandler
	Statistics *handler.StatisticsHandler
	System     *handler.SystemHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	rdb *redis.Client,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// Multipart bodies beyond this are spooled to temp files.
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response carries a request ID in its metadata.
	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.Brotli())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// 30 auth attempts per minute per IP.
	authLimiter := middleware.NewRateLimiter(rdb, "auth", 30, time.Minute, log)
	// 20 uploads per minute per IP.
	importLimiter := middleware.NewRateLimiter(rdb, "import", 20, time.Minute, log)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Public documents ───────────────────────────────────────────
	router.GET("/api/v1/upload-template", middleware.CacheControl(3600), handlers.Import.UploadTemplate)

	// ─── 3. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService))
	{
		// Libraries
		api.GET("/libraries", handlers.Library.ListLibraries)
		api.POST("/libraries", handlers.Library.CreateLibrary)
		api.GET("/libraries/:id", handlers.Library.GetLibrary)
		api.PUT("/libraries/:id", handlers.Library.UpdateLibrary)
		api.DELETE("/libraries/:id",
			middleware.RequireRole(model.RoleAdmin),
			handlers.Library.DeleteLibrary,
		)

		// Questions
		api.GET("/libraries/:id/questions", handlers.Question.ListQuestions)
		api.POST("/libraries/:id/questions", handlers.Question.AddQuestion)
		api.POST("/libraries/:id/questions/batch-delete", handlers.Question.BatchDeleteQuestions)
		api.GET("/questions/:id", handlers.Question.GetQuestion)
		api.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		api.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Imports
		api.POST("/libraries/:id/imports", importLimiter.Middleware(), handlers.Import.ImportDocument)
		api.GET("/imports/:job_id", middleware.NoStore(), handlers.Import.GetImportJob)

		// Papers
		api.POST("/libraries/:id/papers", handlers.Paper.GeneratePaper)
		api.GET("/papers", handlers.Paper.ListPapers)
		api.GET("/papers/:id", handlers.Paper.GetPaper)
		api.DELETE("/papers/:id", handlers.Paper.DeletePaper)
		api.GET("/papers/:id/export", middleware.NoStore(), handlers.Paper.ExportPaper)

		// Statistics
		api.GET("/statistics", handlers.Statistics.GetStatistics)
	}

	// ─── 4. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireJWT(authService), middleware.RequireRole(model.RoleAdmin))
	{
		adminAPI.GET("/system/metrics", handlers.System.SystemMetrics)
		adminAPI.GET("/system/metrics/stream", handlers.System.SystemMetricsSSE)
	}

	// ─── 5. WebSocket Group (token via query) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireJWT(authService))
	{
		ws.GET("/imports/:job_id", handlers.WS.ImportJobStream)
	}

	return router
}
