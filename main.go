package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"push_API/config"
	"push_API/controllers"
	"push_API/database"
	"push_API/routes"
	"push_API/services"
	"push_API/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	config.Load()
	utils.InitLogger()
}

func main() {
	if err := database.Initialize(); err != nil {
		utils.ErrorLogger.Fatalf("資料庫初始化失敗: %v", err)
	}

	expo := services.NewExpoService(config.AppConfig.Expo.AccessToken)
	notifications := services.NewNotificationService(database.DB)
	scheduler := services.NewWelcomeScheduler(expo, notifications, services.WelcomeDelay)
	defer scheduler.Close()

	controllers.SetupDeviceController(database.DB, scheduler)
	controllers.SetupNotificationController(expo)

	gin.SetMode(config.AppConfig.Server.GinMode)
	router := gin.Default()
	routes.SetupRouter(router)

	utils.InfoLogger.Infof("伺服器啟動於 :%s", config.AppConfig.Server.Port)
	if err := router.Run(":" + config.AppConfig.Server.Port); err != nil {
		utils.ErrorLogger.Fatalf("伺服器啟動失敗: %v", err)
	}
}
