package models

import "github.com/shopspring/decimal"

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
	Title string `gorm:"not null" json:"title"`
}

type MenuItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	Price          decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"price"`
	Inventory      int             `json:"inventory"`
	CategoryID     uint            `gorm:"not null" json:"category_id"`
	Category       Category        `gorm:"foreignKey:CategoryID" json:"-"`
	IsItemOfTheDay bool            `gorm:"default:false" json:"is_item_of_the_day"`
}
