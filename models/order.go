package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	OrderNumber          string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_number"`
	TableID              uint            `gorm:"not null;index" json:"table_id"`
	Table                *Table          `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	Status               string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	PaymentStatus        string          `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentMethod        string          `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	PaymentTransactionID *string         `gorm:"type:varchar(100)" json:"payment_transaction_id"`
	PaymentDate          *time.Time      `json:"payment_date"`
	Items                []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt            time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null" json:"updated_at"`
}

// IsActive reports whether the order still holds its table.
func (o *Order) IsActive() bool {
	return IsActiveOrderStatus(o.Status)
}

// IsTerminal reports whether the order is complete or cancelled.
func (o *Order) IsTerminal() bool {
	return IsTerminalOrderStatus(o.Status)
}
