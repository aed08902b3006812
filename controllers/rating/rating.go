package ratingControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/middleware"
	"github.com/javiersgm/bistro-api/models"
)

type RatingInput struct {
	MenuItemID uint   `json:"menu_item_id" binding:"required"`
	Score      int    `json:"score" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

type ratingView struct {
	ID         uint    `json:"id"`
	MenuItemID uint    `json:"menu_item_id"`
	User       userRef `json:"user"`
	Score      int     `json:"score"`
	Comment    string  `json:"comment"`
}

type userRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func viewOf(rating *models.Rating) ratingView {
	return ratingView{
		ID:         rating.ID,
		MenuItemID: rating.MenuItemID,
		User:       userRef{ID: rating.User.ID, Username: rating.User.Username},
		Score:      rating.Score,
		Comment:    rating.Comment,
	}
}

// GET /ratings
//
// Public: ratings are readable without a token, optionally filtered by
// menu item.
func ListRatings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Preload("User")
		if v := c.Query("menu_item"); v != "" {
			q = q.Where("menu_item_id = ?", v)
		}

		var ratings []models.Rating
		if err := q.Find(&ratings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ratings"})
			return
		}

		views := make([]ratingView, 0, len(ratings))
		for i := range ratings {
			views = append(views, viewOf(&ratings[i]))
		}
		c.JSON(http.StatusOK, views)
	}
}

// POST /ratings
//
// Any authenticated user may rate; the author comes from the token, never
// the payload.
func CreateRating(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input RatingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var menuItem models.MenuItem
		if err := db.First(&menuItem, input.MenuItemID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Menu item does not exist"})
			return
		}

		rating := models.Rating{
			MenuItemID: menuItem.ID,
			UserID:     user.ID,
			Score:      input.Score,
			Comment:    input.Comment,
		}
		if err := db.Create(&rating).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rating"})
			return
		}

		rating.User = *user
		c.JSON(http.StatusCreated, viewOf(&rating))
	}
}
