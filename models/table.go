package models

import "time"

// Table is a dining table. CurrentOrderID is a plain column without a foreign
// key: it is cleared by the order lifecycle, never by a cascade.
type Table struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TableNumber    string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"table_number"`
	Capacity       int       `gorm:"not null" json:"capacity"`
	Status         string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CurrentOrderID *uint     `gorm:"index" json:"current_order_id"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
