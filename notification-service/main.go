package main

import (
	"log"
	"net/http"
	"strings"

	"approvalflow-backend/notification-service/handlers"
	"approvalflow-backend/notification-service/services"
	"approvalflow-backend/shared/config"

	"github.com/gin-gonic/gin"
)

// @title Notification Service API
// @version 1.0
// @description Real-time approval event push over WebSocket
// @host localhost:8004
// @BasePath /

func main() {
	// Load configuration
	config.LoadConfig()

	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "notification-service",
			"status":      "healthy",
			"connections": services.GetWebSocketManager().GetConnectionCount(),
		})
	})

	// WebSocket endpoint
	router.GET("/ws/approvals/:user_id", handlers.HandleWebSocket)

	// WebSocket message sending endpoint (for the approval service)
	router.POST("/ws/send", handlers.SendWebSocketMessage)

	port := strings.Split(config.GetConfig().NotificationServiceURL, ":")[2]
	log.Printf("🔔 Notification Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}
