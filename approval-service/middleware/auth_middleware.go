package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"approvalflow-backend/shared/database"
	"approvalflow-backend/shared/database/models"
	utils "approvalflow-backend/shared/utils/auth"
)

// AuthMiddleware extracts user information from JWT token and sets it in context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "Invalid authorization format. Expected Bearer {token}"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(tokenParts[1])
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid user ID in token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("userEmail", claims.Email)

		c.Next()
	}
}

// CurrentUser loads the authenticated user with unit and roles preloaded.
// Returns false after writing the error response when the account is missing
// or inactive.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	rawID, exists := c.Get("userID")
	if !exists {
		c.JSON(401, gin.H{"error": "Authentication required"})
		return nil, false
	}
	userID := rawID.(uuid.UUID)

	var user models.User
	err := database.DB.
		Preload("Unit").
		Preload("Roles").
		First(&user, "id = ?", userID).Error
	if err != nil {
		c.JSON(401, gin.H{"error": "User account not found"})
		return nil, false
	}

	if !user.IsActive() {
		c.JSON(403, gin.H{"error": "User account is inactive"})
		return nil, false
	}

	return &user, true
}
