package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/controllers"
	"github.com/khanhvo/lms-tracking-backend/middleware"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	// Surface cho sinh viên: tracking phiên học + tiến độ
	learning := api.Group("/learning")
	{
		learning.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))

		// Vòng đời phiên học
		learning.POST("/sessions/start", controllers.StartSession)
		learning.POST("/sessions/:session_id/heartbeat", controllers.SessionHeartbeat)
		learning.POST("/sessions/:session_id/end", controllers.EndSession)

		// Ledger tiến độ
		learning.POST("/progress/:content_id", controllers.UpdateProgress)
		learning.POST("/progress/:content_id/complete", controllers.MarkContentCompleted)

		// Truy cập & rollup
		learning.GET("/courses/:course_id/unlock-status", controllers.GetUnlockStatus)
		learning.GET("/courses/:course_id/progress", controllers.GetCourseProgress)
		learning.GET("/modules/:module_id/progress", controllers.GetModuleProgress)

		// Streaming + quiz gate
		learning.GET("/contents/:content_id/stream", controllers.GetStreamURL)
		learning.POST("/modules/:module_id/quiz-attempts", controllers.SubmitQuizAttempt)
	}

	user := api.Group("")
	{
		user.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		user.POST("/courses/:course_id/enroll", controllers.EnrollCourse)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db), middleware.RequireRoles("admin", "teacher"))

		// Quản lý catalog khóa học
		admin.POST("/courses", controllers.CreateCourse)
		admin.GET("/courses", controllers.GetCourses)
		admin.GET("/courses/:course_id", controllers.GetCourseStructure)
		admin.POST("/courses/:course_id/modules", controllers.CreateModule)
		admin.POST("/modules/:module_id/contents", controllers.CreateContent)
	}

	return r
}
