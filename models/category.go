package models

import "time"

type Category struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description       string    `gorm:"type:text" json:"description"`
	DisplayOrder      int       `gorm:"not null;default:0" json:"display_order"`
	ThumbnailURL      string    `gorm:"type:varchar(255)" json:"thumbnail_url"`
	ThumbnailPublicID string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}
