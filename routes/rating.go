package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	ratingControllers "github.com/javiersgm/bistro-api/controllers/rating"
	"github.com/javiersgm/bistro-api/middleware"
)

// SetupRatingRoutes registers menu item ratings. Reading is public;
// submitting requires any authenticated user.
func SetupRatingRoutes(r *gin.Engine, db *gorm.DB) {
	ratings := r.Group("/ratings")
	{
		ratings.GET("", ratingControllers.ListRatings(db))
		ratings.POST("", middleware.ValidateToken(db), ratingControllers.CreateRating(db))
	}
}
