package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Menu browsing is public; menu writes are manager-only
	SetupMenuRoutes(r, db)

	// Ratings are publicly readable; submitting one needs a token
	SetupRatingRoutes(r, db)

	// Cart routes (JWT-protected, customers only)
	SetupCartRoutes(r, db)

	// Order routes (JWT-protected, role-scoped inside handlers)
	SetupOrderRoutes(r, db)

	// Group membership management (JWT-protected, manager-only)
	SetupGroupRoutes(r, db)
}
