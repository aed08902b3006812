package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/middleware"
	"github.com/javiersgm/bistro-api/models"
)

type AddCartItemInput struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity"`
}

type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type cartItemView struct {
	ID         uint            `json:"id"`
	MenuItemID uint            `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	AddedAt    time.Time       `json:"added_at"`
}

func viewOf(item *models.CartItem) cartItemView {
	return cartItemView{
		ID:         item.ID,
		MenuItemID: item.MenuItemID,
		Name:       item.MenuItem.Name,
		Quantity:   item.Quantity,
		UnitPrice:  item.UnitPrice,
		TotalPrice: item.TotalPrice(),
		AddedAt:    item.AddedAt,
	}
}

// GET /cart/menu-items
func GetCartItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var items []models.CartItem
		if err := db.Preload("MenuItem").Where("user_id = ?", user.ID).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		views := make([]cartItemView, 0, len(items))
		for i := range items {
			views = append(views, viewOf(&items[i]))
		}
		c.JSON(http.StatusOK, views)
	}
}

// POST /cart/menu-items
//
// A repeat add of the same menu item increments the existing row's quantity
// under a row lock; the unit price stays the snapshot taken on the first
// add, even if the catalog price changed in between.
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input AddCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}
		if input.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive integer"})
			return
		}

		var menuItem models.MenuItem
		if err := db.First(&menuItem, input.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate menu item"})
			return
		}

		var item models.CartItem
		err := db.Transaction(func(tx *gorm.DB) error {
			err := models.LockForUpdate(tx).
				Where("user_id = ? AND menu_item_id = ?", user.ID, menuItem.ID).
				First(&item).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				item = models.CartItem{
					UserID:     user.ID,
					MenuItemID: menuItem.ID,
					Quantity:   input.Quantity,
					UnitPrice:  menuItem.Price,
					AddedAt:    time.Now(),
				}
				return tx.Create(&item).Error
			}
			if err != nil {
				return err
			}
			item.Quantity += input.Quantity
			return tx.Save(&item).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}

		item.MenuItem = menuItem
		c.JSON(http.StatusCreated, viewOf(&item))
	}
}

// PUT /cart/menu-items/:id
//
// The lookup is pre-filtered to the requesting user, so a foreign cart row
// is indistinguishable from a missing one.
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input UpdateCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var item models.CartItem
		if err := db.Preload("MenuItem").
			Where("user_id = ?", user.ID).
			First(&item, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}

		item.Quantity = input.Quantity
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		c.JSON(http.StatusOK, viewOf(&item))
	}
}

// DELETE /cart/menu-items/:id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		result := db.Where("user_id = ? AND id = ?", user.ID, c.Param("id")).Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cart item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DELETE /cart/menu-items
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		result := db.Where("user_id = ?", user.ID).Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "deleted_items": result.RowsAffected})
	}
}
