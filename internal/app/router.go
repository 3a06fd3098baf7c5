package app

import (
	"certgo_backend/docs"
	"certgo_backend/internal/middleware"
	"certgo_backend/internal/model"
	"certgo_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	v1 := router.Group("/api/v1")
	auth := middleware.AuthMiddleware(a.services.auth)
	admin := middleware.RoleMiddleware(model.Admin)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(v1, c)

	// 2. 需要登录的路由
	authGroup := v1.Group("")
	authGroup.Use(auth)
	a.registerUserRoutes(authGroup, c)

	// 3. 管理员路由
	adminGroup := v1.Group("")
	adminGroup.Use(auth, admin)
	{
		adminGroup.POST("/certificates", c.certificate.CreateCertificate)
		adminGroup.DELETE("/learning-content/:id", c.content.DeleteContent)
		adminGroup.GET("/learning-content/:id/raw", c.content.GetRawSource)
		adminGroup.POST("/quizzes", c.quiz.CreateQuiz)
		adminGroup.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		adminGroup.POST("/plans", c.subscription.CreatePlan)
	}
}

func (a *App) registerPublicRoutes(v1 *gin.RouterGroup, c *controllers) {
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", c.auth.Register)
		authRoutes.POST("/login", c.auth.Login)
	}

	certs := v1.Group("/certificates")
	{
		certs.GET("", c.certificate.ListCertificates)
		certs.GET("/:id", c.certificate.GetCertificate)
		certs.GET("/:id/contents", c.certificate.ListContents)
		certs.GET("/:id/quizzes", c.certificate.ListQuizzes)
	}

	contents := v1.Group("/learning-content")
	{
		contents.GET("", c.content.ListContents)
		contents.GET("/:id", c.content.GetContent)
		contents.GET("/:id/sections", c.content.ListSections)
		contents.GET("/:id/quizzes", c.content.ListQuizzes)
	}

	v1.GET("/quizzes/:id", c.quiz.GetQuiz)
	v1.GET("/plans", c.subscription.ListPlans)
}

func (a *App) registerUserRoutes(g *gin.RouterGroup, c *controllers) {
	users := g.Group("/users/me")
	{
		users.GET("", c.user.GetMe)
		users.PUT("", c.user.UpdateProfile)
		users.DELETE("", c.user.DeleteMe)
		users.PUT("/notifications", c.user.UpdateNotifications)
		users.PUT("/password", c.user.ChangePassword)
		users.GET("/login-history", c.user.LoginHistory)
	}

	g.POST("/learning-content", c.content.CreateContent)
	g.POST("/learning-content/:id/quizzes/generate", c.content.GenerateQuizzes)

	attempts := g.Group("/attempts")
	{
		attempts.POST("", c.attempt.StartAttempt)
		attempts.GET("", c.attempt.ListAttempts)
		attempts.GET("/:id", c.attempt.GetAttempt)
		attempts.POST("/:id/answers", c.attempt.SubmitAnswer)
		attempts.POST("/:id/finish", c.attempt.FinishAttempt)
	}
	g.PUT("/answers/:id/bookmark", c.attempt.SetBookmark)

	progress := g.Group("/progress")
	{
		progress.GET("", c.progress.ListProgress)
		progress.PUT("/:contentId", c.progress.RecordProgress)
		progress.POST("/:contentId/summary", c.progress.RecordSummary)
	}

	subs := g.Group("/subscriptions")
	{
		subs.POST("", c.subscription.Subscribe)
		subs.GET("/current", c.subscription.CurrentSubscription)
		subs.DELETE("/current", c.subscription.CancelSubscription)
	}
}
