package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/khanhvo/lms-tracking-backend/config"
	"github.com/khanhvo/lms-tracking-backend/controllers"
	"github.com/khanhvo/lms-tracking-backend/logger"
	"github.com/khanhvo/lms-tracking-backend/routes"
	"github.com/khanhvo/lms-tracking-backend/services"
	"github.com/khanhvo/lms-tracking-backend/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env")
	}

	config.InitDB()
	config.InitTracking()

	appLog, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatal("Không khởi tạo được logger:", err)
	}
	defer appLog.Sync()

	controllers.Init(config.DB, config.Tracking, appLog)

	// Sweep phiên bỏ rơi chạy nền theo lịch
	sessionSvc := services.NewSessionService(config.DB, config.Tracking, appLog)
	sweepJob := utils.StartSweepJob(sessionSvc, appLog)
	defer sweepJob.Stop()

	r := gin.Default()

	// Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Gọi SetupRouter để đăng ký route
	r = routes.SetupRouter(r, config.DB)

	// Lấy PORT từ env
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server running at Port:" + port)
	r.Run(":" + port)
}
