package models

import "time"

// QRCode is the QR image shown to customers. At most one row is active.
type QRCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageURL  string    `gorm:"type:varchar(255);not null" json:"image_url"`
	PublicID  string    `gorm:"type:varchar(255);not null" json:"-"`
	IsActive  bool      `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}
