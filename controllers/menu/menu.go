package menuControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/models"
)

type MenuItemInput struct {
	Name       string          `json:"name" binding:"required"`
	Price      decimal.Decimal `json:"price" binding:"required"`
	Inventory  int             `json:"inventory"`
	CategoryID uint            `json:"category_id" binding:"required"`
}

type SetItemOfTheDayInput struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
}

// GET /menu-items
func GetMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&models.MenuItem{})

		if v := c.Query("category"); v != "" {
			q = q.Where("category_id = ?", v)
		}
		if v := c.Query("price_min"); v != "" {
			q = q.Where("price >= ?", v)
		}
		if v := c.Query("price_max"); v != "" {
			q = q.Where("price <= ?", v)
		}
		if v := c.Query("inventory_min"); v != "" {
			q = q.Where("inventory >= ?", v)
		}
		if v := c.Query("inventory_max"); v != "" {
			q = q.Where("inventory <= ?", v)
		}
		if v := c.Query("search"); v != "" {
			q = q.Where("name LIKE ?", "%"+v+"%")
		}

		ordering := c.Query("ordering")
		desc := ""
		if len(ordering) > 0 && ordering[0] == '-' {
			desc = " DESC"
			ordering = ordering[1:]
		}
		switch ordering {
		case "price", "inventory", "id":
			q = q.Order(ordering + desc)
		default:
			q = q.Order("id")
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
		if perPage < 1 {
			perPage = 10
		}
		if perPage > 100 {
			perPage = 100
		}

		var items []models.MenuItem
		if err := q.Limit(perPage).Offset((page - 1) * perPage).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu items"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /menu-items/:id
func GetMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item models.MenuItem
		if err := db.First(&item, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Menu item not found"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// POST /menu-items (manager)
func CreateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Price.Sign() <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be greater than 0"})
			return
		}

		var category models.Category
		if err := db.First(&category, input.CategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not exist"})
			return
		}

		item := models.MenuItem{
			Name:       input.Name,
			Price:      input.Price,
			Inventory:  input.Inventory,
			CategoryID: input.CategoryID,
		}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// PUT /menu-items/:id (manager)
func UpdateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item models.MenuItem
		if err := db.First(&item, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Menu item not found"})
			return
		}

		var input MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Price.Sign() <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be greater than 0"})
			return
		}

		item.Name = input.Name
		item.Price = input.Price
		item.Inventory = input.Inventory
		item.CategoryID = input.CategoryID
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /menu-items/:id (manager)
func DeleteMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.MenuItem{}, "id = ?", c.Param("id"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Menu item not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /menu-items/item-of-the-day
func GetItemOfTheDay(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item models.MenuItem
		err := db.Where("is_item_of_the_day = ?", true).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"detail": "No item of the day set."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item of the day"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// POST /menu-items/item-of-the-day/set (manager)
//
// Clearing the old flag and setting the new one happen in a single
// transaction so at most one item carries the flag at any time.
func SetItemOfTheDay(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SetItemOfTheDayInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "menu_item_id is required"})
			return
		}

		var item models.MenuItem
		if err := db.First(&item, input.MenuItemID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Menu item not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.MenuItem{}).
				Where("is_item_of_the_day = ?", true).
				Update("is_item_of_the_day", false).Error; err != nil {
				return err
			}
			return tx.Model(&item).Update("is_item_of_the_day", true).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set item of the day"})
			return
		}

		item.IsItemOfTheDay = true
		c.JSON(http.StatusOK, item)
	}
}
