package handlers

import (
	"net/http"
	"time"

	"careermate/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Course      *CourseHandler
	Certificate *CertificateHandler
	Review      *ReviewHandler
	AI          *AIHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	// UploadDir is served as /uploads when set.
	UploadDir string
}

// NewRouter wires every endpoint. limiter may be nil, in which case nothing is throttled.
func NewRouter(h Handlers, tokens middleware.TokenValidator, limiter *middleware.RateLimiter, cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	// handlers pass *gin.Context down as their context.Context
	r.ContextWithFallback = true

	config := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		config.AllowOrigins = cfg.AllowedOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowCredentials = !config.AllowAllOrigins
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	limit := func(key string, n int, window time.Duration) gin.HandlerFunc {
		if limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return limiter.Limit(key, n, window)
	}
	requireAuth := middleware.AuthMiddleware(tokens)

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", limit("login", 5, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.OptionalAuth(tokens), h.Auth.Me)
		}

		profile := api.Group("/profile")
		profile.Use(requireAuth)
		{
			profile.POST("/avatar", h.Profile.SetAvatar)
			profile.POST("/update-email", h.Profile.UpdateEmail)
			profile.POST("/update-password", h.Profile.UpdatePassword)
		}

		courses := api.Group("/courses")
		courses.Use(requireAuth)
		{
			courses.POST("/enroll", h.Course.Enroll)
			courses.POST("/unenroll", h.Course.Unenroll)
			courses.GET("/enrolled", h.Course.Enrolled)
		}

		progress := api.Group("/progress")
		progress.Use(requireAuth)
		{
			progress.GET("/:courseId", h.Course.GetProgress)
			progress.POST("/save", h.Course.SaveProgress)
			progress.POST("/complete-lesson", h.Course.CompleteLesson)
			progress.POST("/uncomplete-lesson", h.Course.UncompleteLesson)
			progress.POST("/bookmark", h.Course.AddBookmark)
		}

		api.POST("/quiz/submit", requireAuth, h.Course.SubmitQuiz)

		certificates := api.Group("/certificates")
		{
			certificates.POST("/issue", requireAuth, h.Certificate.Issue)
			certificates.GET("/:code", h.Certificate.Lookup)
		}

		reviews := api.Group("/reviews")
		{
			reviews.POST("", requireAuth, h.Review.Create)
			reviews.GET("/:courseId", h.Review.List)
			reviews.GET("/:courseId/summary", h.Review.Summary)
		}

		api.POST("/ai/chat", requireAuth, limit("ai_chat", 20, time.Minute), h.AI.Chat)
	}

	return r
}
