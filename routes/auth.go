package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/auth"
	userControllers "github.com/javiersgm/bistro-api/controllers/user"
	"github.com/javiersgm/bistro-api/middleware"
)

// SetupAuthRoutes registers registration, token issuance and the profile
// endpoint.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.RegisterHandler(db))
		authGroup.POST("/token", auth.TokenHandler(db))
	}

	r.GET("/me", middleware.ValidateToken(db), userControllers.Me())
}
