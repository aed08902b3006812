package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	groupControllers "github.com/javiersgm/bistro-api/controllers/group"
	"github.com/javiersgm/bistro-api/middleware"
	"github.com/javiersgm/bistro-api/models"
)

// SetupGroupRoutes registers manager-only group membership management for
// the Manager and Delivery Crew groups.
func SetupGroupRoutes(r *gin.Engine, db *gorm.DB) {
	groups := r.Group("/groups")
	groups.Use(middleware.ValidateToken(db), middleware.RequireManager())
	{
		groups.GET("/manager/users", groupControllers.ListMembers(db, models.GroupManager))
		groups.POST("/manager/users", groupControllers.AddMember(db, models.GroupManager))
		groups.DELETE("/manager/users/:user_id", groupControllers.RemoveMember(db, models.GroupManager))

		groups.GET("/delivery-crew/users", groupControllers.ListMembers(db, models.GroupDeliveryCrew))
		groups.POST("/delivery-crew/users", groupControllers.AddMember(db, models.GroupDeliveryCrew))
		groups.DELETE("/delivery-crew/users/:user_id", groupControllers.RemoveMember(db, models.GroupDeliveryCrew))
	}
}
