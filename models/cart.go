package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one row of a user's cart. There is no Cart table: the cart is
// the set of a user's rows, and the (user, menu_item) pair is unique so a
// repeat add increments quantity instead of duplicating the row.
//
// UnitPrice is snapshotted from the menu item when the row is first created
// and never refreshed, even if the catalog price changes afterwards.
type CartItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"user_id"`
	MenuItemID uint            `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"menu_item_id"`
	MenuItem   MenuItem        `gorm:"foreignKey:MenuItemID" json:"-"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"unit_price"`
	AddedAt    time.Time       `json:"added_at"`
}

// TotalPrice is derived, never stored.
func (ci *CartItem) TotalPrice() decimal.Decimal {
	return ci.UnitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
