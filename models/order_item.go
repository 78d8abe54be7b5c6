package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots the price at order time; MenuItem is informational only.
type OrderItem struct {
	ID             uint                     `gorm:"primaryKey" json:"id"`
	OrderID        uint                     `gorm:"not null;index" json:"order_id"`
	MenuItemID     uint                     `gorm:"not null;index" json:"menu_item_id"`
	MenuItem       *MenuItem                `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"item"`
	Quantity       int                      `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal          `gorm:"type:decimal(10,2);not null" json:"price"`
	Notes          string                   `gorm:"type:text" json:"notes"`
	Customizations []OrderItemCustomization `gorm:"foreignKey:OrderItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customizations"`
	CreatedAt      time.Time                `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time                `gorm:"not null" json:"updated_at"`
}

type OrderItemCustomization struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderItemID   uint            `gorm:"not null;index" json:"order_item_id"`
	OptionName    string          `gorm:"type:varchar(100);not null;default:''" json:"option_name"`
	Selection     string          `gorm:"type:varchar(100);not null;default:''" json:"selection"`
	PriceAddition decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_addition"`
}
