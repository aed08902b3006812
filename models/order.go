package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	OrderStatusOutForDelivery OrderStatus = 0
	OrderStatusDelivered      OrderStatus = 1
)

func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusOutForDelivery:
		return "Out for delivery"
	case OrderStatusDelivered:
		return "Delivered"
	default:
		return "Unknown"
	}
}

func (s OrderStatus) Valid() bool {
	return s == OrderStatusOutForDelivery || s == OrderStatusDelivered
}

// Order is created once from a cart at checkout and its line items are
// immutable afterwards. Total is computed at creation from the snapshotted
// item prices and never recomputed from the live catalog.
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	User           User            `gorm:"foreignKey:UserID" json:"-"`
	DeliveryCrewID *uint           `gorm:"index" json:"delivery_crew_id"`
	DeliveryCrew   *User           `gorm:"foreignKey:DeliveryCrewID" json:"-"`
	Status         OrderStatus     `gorm:"not null;default:0" json:"status"`
	Total          decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"total"`
	Date           time.Time       `gorm:"index" json:"date"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;uniqueIndex:idx_order_menu_item" json:"order_id"`
	MenuItemID uint            `gorm:"not null;uniqueIndex:idx_order_menu_item" json:"menu_item_id"`
	MenuItem   MenuItem        `gorm:"foreignKey:MenuItemID" json:"-"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"unit_price"`
}

func (oi *OrderItem) TotalPrice() decimal.Decimal {
	return oi.UnitPrice.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
