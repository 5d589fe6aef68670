package app

import (
	"study_tracker_backend/internal/config"
	"study_tracker_backend/internal/middleware"
	"study_tracker_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/stats", c.stats.GetOverview)

		a.registerCourseRoutes(authGroup, c)
	}
}

func (a *App) registerCourseRoutes(rg *gin.RouterGroup, c *controllers) {
	courses := rg.Group("/courses")
	{
		courses.GET("", c.course.ListCourses)
		courses.POST("", c.course.CreateCourse)
		courses.GET("/:id", c.course.GetCourse)
		courses.DELETE("/:id", c.course.DeleteCourse)

		courses.PUT("/:id/progress", c.courseDetail.UpdateProgress)
		courses.PUT("/:id/hours", c.courseDetail.UpdateHours)
		courses.GET("/:id/notes", c.courseDetail.ListNotes)
		courses.POST("/:id/notes", c.courseDetail.AddNote)
		courses.GET("/:id/sessions", c.courseDetail.ListSessions)
		courses.POST("/:id/sessions", c.courseDetail.AddSession)
	}
}
