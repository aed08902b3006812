package groupControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/models"
)

type AddMemberInput struct {
	Username string `json:"username" binding:"required"`
}

func getOrCreateGroup(db *gorm.DB, name string) (*models.Group, error) {
	var group models.Group
	err := db.Where("name = ?", name).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		group = models.Group{Name: name}
		err = db.Create(&group).Error
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListMembers returns a GET handler listing the users of the named group.
func ListMembers(db *gorm.DB, groupName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		group, err := getOrCreateGroup(db, groupName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
			return
		}

		// Group declares no reverse association, so membership is read
		// through the join table.
		var users []models.User
		if err := db.
			Joins("JOIN user_groups ON user_groups.user_id = users.id").
			Where("user_groups.group_id = ?", group.ID).
			Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
			return
		}

		out := make([]gin.H, 0, len(users))
		for _, u := range users {
			out = append(out, gin.H{"id": u.ID, "username": u.Username, "email": u.Email})
		}
		c.JSON(http.StatusOK, out)
	}
}

// AddMember returns a POST handler adding a user (by username) to the group.
func AddMember(db *gorm.DB, groupName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddMemberInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "username is required"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", input.Username).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}

		group, err := getOrCreateGroup(db, groupName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
			return
		}

		if err := db.Model(&user).Association("Groups").Append(group); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Created",
			"user":    gin.H{"id": user.ID, "username": user.Username},
		})
	}
}

// RemoveMember returns a DELETE handler removing a user (by id) from the group.
func RemoveMember(db *gorm.DB, groupName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, "id = ?", c.Param("user_id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}

		group, err := getOrCreateGroup(db, groupName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
			return
		}

		if err := db.Model(&user).Association("Groups").Delete(group); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Success"})
	}
}
