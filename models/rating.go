package models

import "time"

// Rating is one user's score for a menu item, with an optional comment.
// Every submitted rating is kept; there is no one-rating-per-user rule.
type Rating struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MenuItemID uint      `gorm:"not null;index" json:"menu_item_id"`
	MenuItem   MenuItem  `gorm:"foreignKey:MenuItemID" json:"-"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Score      int       `gorm:"not null" json:"score"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
