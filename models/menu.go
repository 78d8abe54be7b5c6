package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	Name                string               `gorm:"type:varchar(255);not null" json:"name"`
	Description         string               `gorm:"type:text" json:"description"`
	Price               decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID          uint                 `gorm:"not null;index" json:"category_id"`
	Category            *Category            `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	ImageURL            string               `gorm:"type:varchar(255)" json:"image_url"`
	ImagePublicID       string               `gorm:"type:varchar(255)" json:"-"`
	IsAvailable         bool                 `gorm:"not null" json:"is_available"`
	CustomizationGroups []CustomizationGroup `gorm:"foreignKey:MenuItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customization_groups,omitempty"`
	CreatedAt           time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time            `gorm:"not null" json:"updated_at"`
}

type CustomizationGroup struct {
	ID         uint                  `gorm:"primaryKey" json:"id"`
	MenuItemID uint                  `gorm:"not null;index" json:"menu_item_id"`
	Name       string                `gorm:"type:varchar(100);not null" json:"name"`
	Options    []CustomizationOption `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options"`
}

type CustomizationOption struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	GroupID       uint            `gorm:"not null;index" json:"group_id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	PriceAddition decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_addition"`
}
