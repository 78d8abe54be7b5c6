package models

import "github.com/shopspring/decimal"

func init() {
	// prices and totals go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Order status
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusServed    = "served"
	OrderStatusComplete  = "complete"
	OrderStatusCancelled = "cancelled"
)

// Payment status, shared by orders and payments
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Payment method recorded on an order
const (
	OrderPaymentCash   = "cash"
	OrderPaymentOnline = "online_payment"
)

// Payment method recorded on a payment row
const (
	PaymentMethodCash  = "cash"
	PaymentMethodEsewa = "esewa"
)

// Table status
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
)

func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed, OrderStatusComplete, OrderStatusCancelled:
		return true
	}
	return false
}

// IsActiveOrderStatus reports whether an order in this status still holds its table.
func IsActiveOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed:
		return true
	}
	return false
}

func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusComplete || status == OrderStatusCancelled
}

func IsValidPaymentStatus(status string) bool {
	return status == PaymentStatusPending || status == PaymentStatusPaid
}

func IsValidOrderPaymentMethod(method string) bool {
	return method == OrderPaymentCash || method == OrderPaymentOnline
}

func IsValidTableStatus(status string) bool {
	return status == TableStatusAvailable || status == TableStatusOccupied
}
