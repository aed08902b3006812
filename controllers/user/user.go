package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javiersgm/bistro-api/middleware"
)

// GET /me
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		role := middleware.CurrentRole(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     role.String(),
		})
	}
}
