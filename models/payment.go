package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one payment attempt for an order. Several rows may exist per order.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method        string          `gorm:"type:varchar(20);not null" json:"method"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TransactionID string          `gorm:"type:varchar(100);index" json:"transaction_id"`
	RefID         string          `gorm:"type:varchar(100)" json:"ref_id"`
	PaymentData   string          `gorm:"type:text" json:"payment_data,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}
