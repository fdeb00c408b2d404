package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizbd/exam-portal/internal/config"
	"github.com/quizbd/exam-portal/internal/handler"
	"github.com/quizbd/exam-portal/internal/middleware"
	"github.com/quizbd/exam-portal/internal/response"
	"github.com/quizbd/exam-portal/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Portal   *handler.PortalHandler
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	Result   *handler.ResultHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

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
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Student Portal Group (Public, anonymous sessions) ──────────
	portal := router.Group("/api/v1/portal")
	{
		portal.GET("/exams", handlers.Portal.ListExams)
		portal.POST("/sessions", handlers.Portal.StartSession)
		portal.GET("/sessions/:session_id", handlers.Portal.GetSession)
		portal.POST("/sessions/:session_id/info", handlers.Portal.SubmitInfo)
		portal.POST("/sessions/:session_id/answer", handlers.Portal.SelectAnswer)
		portal.POST("/sessions/:session_id/next", handlers.Portal.NextQuestion)
		portal.POST("/sessions/:session_id/home", handlers.Portal.ReturnHome)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Exam management
		adminAPI.GET("/exams", handlers.Exam.ListExams)
		adminAPI.POST("/exams", handlers.Exam.CreateExam)
		adminAPI.GET("/exams/:exam_id", handlers.Exam.GetExam)
		adminAPI.PUT("/exams/:exam_id", handlers.Exam.UpdateExam)
		adminAPI.DELETE("/exams/:exam_id", handlers.Exam.DeleteExam)

		// Question management (scoped to one exam)
		adminAPI.POST("/exams/:exam_id/questions", handlers.Question.AddQuestion)
		adminAPI.PUT("/exams/:exam_id/questions/:question_id", handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/exams/:exam_id/questions/:question_id", handlers.Question.DeleteQuestion)

		// Aggregated results
		adminAPI.GET("/results", handlers.Result.GetPivot)
		adminAPI.GET("/results/raw", handlers.Result.GetRaw)
		adminAPI.GET("/results/export", handlers.Result.ExportCSV)
	}

	// ─── 4. WebSocket Group (Admin token via query param) ──────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminJWT(authService))
	{
		ws.GET("/admin/results/stream", handlers.WS.ResultsStream)
	}

	return router
}
