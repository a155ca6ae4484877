package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"push_API/auth"
	"push_API/controllers"
)

func SetupRouter(Router *gin.Engine) {
	Router.Use(cors.Default())

	Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message":   "Push Notification Relay API",
			"health":    "/health",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	Router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// 使用者清單刻意不設認證
	public := Router.Group("/api")
	{
		public.GET("/users", controllers.GetUsers)
	}

	protected := Router.Group("/api")
	protected.Use(auth.BearerMiddleware())
	{
		protected.POST("/register", controllers.RegisterDevice)
		protected.POST("/verify-token", controllers.VerifyToken)
		protected.GET("/token-info", controllers.GetTokenInfo)
		protected.DELETE("/unregister", controllers.UnregisterDevice)
		protected.GET("/me", controllers.Me)

		protected.POST("/send", controllers.SendToSelf)
		protected.POST("/test-token", controllers.TestToken)
	}

	adminProtected := Router.Group("/api")
	adminProtected.Use(auth.BearerMiddleware(), auth.AdminMiddleware())
	{
		adminProtected.POST("/broadcast", controllers.Broadcast)
		adminProtected.GET("/history", controllers.History)
	}
}
