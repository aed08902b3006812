package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/javiersgm/bistro-api/controllers/order"
	"github.com/javiersgm/bistro-api/middleware"
)

// SetupOrderRoutes registers the order endpoints. Any authenticated user may
// call them; visibility and mutation rights are decided per role inside the
// handlers.
func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken(db))
	{
		orders.POST("", orderControllers.PlaceOrderHandler(db))
		orders.GET("", orderControllers.ListOrdersHandler(db))
		orders.GET("/:id", orderControllers.GetOrderHandler(db))
		orders.PATCH("/:id", orderControllers.UpdateOrderHandler(db))
		orders.PUT("/:id", orderControllers.UpdateOrderHandler(db))
		orders.DELETE("/:id", orderControllers.DeleteOrderHandler(db))
	}
}
