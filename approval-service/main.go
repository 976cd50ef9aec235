package main

import (
	"log"
	"net/http"
	"strings"

	"approvalflow-backend/approval-service/handlers"
	"approvalflow-backend/approval-service/middleware"
	"approvalflow-backend/shared/config"
	"approvalflow-backend/shared/database"
	"approvalflow-backend/shared/utils/cache"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ApprovalFlow API
// @version 1.0
// @description Maker-checker approval workflow over the organizational unit hierarchy
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()
	defer cache.GetCacheManager().Close()

	router := gin.Default()

	// Add CORS middleware
	router.Use(cors.Default())

	// All API routes require an authenticated user
	api := router.Group("/api", middleware.AuthMiddleware())

	// Approval routes
	api.POST("/approvals", handlers.CreateApproval)
	api.GET("/approvals", handlers.ListApprovals)
	api.GET("/approvals/my-requests", handlers.MyRequests)
	api.GET("/approvals/pending-queue", handlers.PendingQueue)
	api.GET("/approvals/broad-queue", handlers.BroadQueue)
	api.GET("/approvals/statistics", handlers.ApprovalStatistics)
	api.GET("/approvals/:id", handlers.GetApproval)
	api.POST("/approvals/:id/approve", handlers.ApproveApproval)
	api.POST("/approvals/:id/reject", handlers.RejectApproval)

	// Unit routes
	api.GET("/units", handlers.GetUnits)
	api.GET("/units/tree", handlers.GetUnitTree)
	api.POST("/units", handlers.CreateUnit)
	api.PUT("/units/:id/parent", handlers.UpdateUnitParent)
	api.GET("/units/:id/eligible-checkers", handlers.GetEligibleCheckers)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "approval",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().ApprovalServiceURL, ":")[2]
	log.Printf("Approval Service starting on port %s...", port)
	router.Run(":" + port)
}
