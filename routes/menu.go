package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	menuControllers "github.com/javiersgm/bistro-api/controllers/menu"
	"github.com/javiersgm/bistro-api/middleware"
)

// SetupMenuRoutes registers the menu catalog. Reads are public; writes
// require a manager token.
func SetupMenuRoutes(r *gin.Engine, db *gorm.DB) {
	manager := []gin.HandlerFunc{middleware.ValidateToken(db), middleware.RequireManager()}

	menu := r.Group("/menu-items")
	{
		menu.GET("", menuControllers.GetMenuItems(db))
		menu.GET("/item-of-the-day", menuControllers.GetItemOfTheDay(db))
		menu.POST("/item-of-the-day/set", append(manager, menuControllers.SetItemOfTheDay(db))...)
		menu.GET("/:id", menuControllers.GetMenuItem(db))
		menu.POST("", append(manager, menuControllers.CreateMenuItem(db))...)
		menu.PUT("/:id", append(manager, menuControllers.UpdateMenuItem(db))...)
		menu.DELETE("/:id", append(manager, menuControllers.DeleteMenuItem(db))...)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", menuControllers.GetCategories(db))
		categories.GET("/:id", menuControllers.GetCategory(db))
		categories.POST("", append(manager, menuControllers.CreateCategory(db))...)
		categories.PUT("/:id", append(manager, menuControllers.UpdateCategory(db))...)
		categories.DELETE("/:id", append(manager, menuControllers.DeleteCategory(db))...)
	}
}
