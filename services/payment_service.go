package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/models"
	"github.com/yeremiapane/digital-menu/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentService records payment attempts and mirrors confirmed payments onto
// their order.
type PaymentService struct {
	db       *gorm.DB
	verifier PaymentVerifier
}

func NewPaymentService(db *gorm.DB, verifier PaymentVerifier) *PaymentService {
	return &PaymentService{
		db:       db,
		verifier: verifier,
	}
}

// InitiateResult is everything the client needs to post the eSewa form.
type InitiateResult struct {
	Amount                decimal.Decimal `json:"amount"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	ProductServiceCharge  decimal.Decimal `json:"product_service_charge"`
	ProductDeliveryCharge decimal.Decimal `json:"product_delivery_charge"`
	TransactionUUID       string          `json:"transaction_uuid"`
	SignedPayload
}

type PaymentStatusResult struct {
	OrderID       uint       `json:"orderId"`
	PaymentStatus string     `json:"paymentStatus"`
	PaymentMethod string     `json:"paymentMethod"`
	PaymentID     string     `json:"paymentId,omitempty"`
	PaymentDate   *time.Time `json:"paymentDate"`
}

// VerifyResult is the outcome of a confirmed online payment.
type VerifyResult struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
}

// Initiate signs a payment request for the order total and records a pending
// eSewa attempt. Every call records a new attempt.
func (s *PaymentService) Initiate(ctx context.Context, orderID uint) (*InitiateResult, error) {
	db := s.db.WithContext(ctx)
	order, err := findOrder(db, orderID)
	if err != nil {
		return nil, err
	}

	txUUID := strconv.FormatUint(uint64(order.ID), 10)
	payload, err := s.verifier.BuildSignedPayload(order.TotalAmount, txUUID)
	if err != nil {
		return nil, Validationf("cannot initiate payment: %v", err)
	}

	payment := models.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Method:        models.PaymentMethodEsewa,
		Status:        models.PaymentStatusPending,
		TransactionID: txUUID,
	}
	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}

	return &InitiateResult{
		Amount:                order.TotalAmount,
		TaxAmount:             decimal.Zero,
		ProductServiceCharge:  decimal.Zero,
		ProductDeliveryCharge: decimal.Zero,
		TransactionUUID:       txUUID,
		SignedPayload:         payload,
	}, nil
}

// Verify confirms a gateway callback and marks both the payment and its order
// as paid. Repeating it for the same callback leaves the same state.
func (s *PaymentService) Verify(ctx context.Context, data string) (*VerifyResult, error) {
	if data == "" {
		return nil, Validationf("missing payment data")
	}

	verified, err := s.verifier.Verify(ctx, data)
	if err != nil {
		if KindOf(err) != 0 {
			return nil, err
		}
		return nil, External("payment verification failed", err)
	}

	txUUID := verified.DecodedData.TransactionUUID
	orderID, err := strconv.ParseUint(txUUID, 10, 64)
	if err != nil {
		return nil, Validationf("invalid transaction_uuid: %s", txUUID)
	}

	paymentData, err := json.Marshal(verified)
	if err != nil {
		return nil, err
	}
	code := verified.DecodedData.TransactionCode
	if code == "" && verified.Response.RefID != nil {
		code = *verified.Response.RefID
	}

	var payment models.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, uint(orderID))
		if err != nil {
			return err
		}
		// the order total may have changed since the payment was initiated
		if paid := verified.DecodedData.TotalAmount; !paid.Equal(order.TotalAmount) {
			utils.ErrorLogger.Printf("eSewa payment %s for order %d paid %s but the order total is %s",
				code, order.ID, paid, order.TotalAmount)
			return Conflictf("paid amount %s does not match order total %s", paid, order.TotalAmount)
		}

		err = tx.Where("order_id = ? AND method = ?", order.ID, models.PaymentMethodEsewa).
			Order("id DESC").First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			payment = models.Payment{
				OrderID:       order.ID,
				Amount:        verified.DecodedData.TotalAmount,
				Method:        models.PaymentMethodEsewa,
				Status:        models.PaymentStatusPending,
				TransactionID: txUUID,
			}
			err = tx.Create(&payment).Error
		}
		if err != nil {
			return err
		}

		now := time.Now()
		payment.Status = models.PaymentStatusPaid
		payment.RefID = code
		payment.PaymentData = string(paymentData)
		payment.PaymentDate = &now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"payment_status":         models.PaymentStatusPaid,
			"payment_method":         models.OrderPaymentOnline,
			"payment_transaction_id": code,
			"payment_date":           now,
			"updated_at":             now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := loadOrder(ctx, s.db, uint(orderID))
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Order: order, Payment: &payment}, nil
}

// Status reports the latest paid attempt, the latest attempt of any kind, or
// the order's own payment fields, in that order of preference.
func (s *PaymentService) Status(ctx context.Context, orderID uint) (*PaymentStatusResult, error) {
	db := s.db.WithContext(ctx)
	order, err := findOrder(db, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := latestPayment(db.Where("status = ?", models.PaymentStatusPaid), orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		if payment, err = latestPayment(db, orderID); err != nil {
			return nil, err
		}
	}

	if payment == nil {
		return &PaymentStatusResult{
			OrderID:       order.ID,
			PaymentStatus: order.PaymentStatus,
			PaymentMethod: order.PaymentMethod,
			PaymentDate:   order.PaymentDate,
		}, nil
	}

	result := &PaymentStatusResult{
		OrderID:       order.ID,
		PaymentStatus: payment.Status,
		PaymentMethod: payment.Method,
		PaymentID:     payment.RefID,
		PaymentDate:   payment.PaymentDate,
	}
	if result.PaymentID == "" {
		result.PaymentID = payment.TransactionID
	}
	return result, nil
}

// Cash records a pending cash attempt and switches the order to cash.
func (s *PaymentService) Cash(ctx context.Context, orderID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}

		payment = models.Payment{
			OrderID: order.ID,
			Amount:  order.TotalAmount,
			Method:  models.PaymentMethodCash,
			Status:  models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"payment_method": models.OrderPaymentCash,
			"updated_at":     time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ConfirmCash marks a cash attempt as collected and the order as paid.
// Confirming an already paid attempt changes nothing.
func (s *PaymentService) ConfirmCash(ctx context.Context, paymentID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("payment %d not found", paymentID)
			}
			return err
		}
		if payment.Method != models.PaymentMethodCash {
			return Validationf("payment %d is not a cash payment", paymentID)
		}
		if payment.Status == models.PaymentStatusPaid {
			return nil
		}

		now := time.Now()
		payment.Status = models.PaymentStatusPaid
		payment.PaymentDate = &now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"payment_method": models.OrderPaymentCash,
			"payment_date":   now,
			"updated_at":     now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// latestPayment returns nil when the order has no matching payment.
func latestPayment(db *gorm.DB, orderID uint) (*models.Payment, error) {
	var payment models.Payment
	err := db.Where("order_id = ?", orderID).Order("id DESC").First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
