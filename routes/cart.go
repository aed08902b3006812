package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/javiersgm/bistro-api/controllers/cart"
	"github.com/javiersgm/bistro-api/middleware"
)

// SetupCartRoutes registers the cart endpoints. Every cart operation is
// customer-only: managers and delivery crew have no cart.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cart := r.Group("/cart/menu-items")
	cart.Use(middleware.ValidateToken(db), middleware.RequireCustomer())
	{
		cart.GET("", cartControllers.GetCartItems(db))
		cart.POST("", cartControllers.AddCartItem(db))
		cart.PUT("/:id", cartControllers.UpdateCartItem(db))
		cart.PATCH("/:id", cartControllers.UpdateCartItem(db))
		cart.DELETE("/:id", cartControllers.DeleteCartItem(db))
		cart.DELETE("", cartControllers.ClearCart(db))
	}
}
