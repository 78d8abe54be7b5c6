package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/hub"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
	Stats    *services.StatisticsService
	Hub      *hub.Hub
}

func NewPaymentController(payments *services.PaymentService, stats *services.StatisticsService, h *hub.Hub) *PaymentController {
	return &PaymentController{Payments: payments, Stats: stats, Hub: h}
}

type orderPaymentRequest struct {
	OrderID uint `json:"orderId" binding:"required"`
}

// InitiatePayment -> signed eSewa form fields for the order total
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	var req orderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, "orderId is required")
		return
	}

	result, err := pc.Payments.Initiate(c.Request.Context(), req.OrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("eSewa payment initiated for order %d", req.OrderID)
	utils.RespondJSON(c, http.StatusOK, "Payment initiated", gin.H{"payment": result, "orderId": req.OrderID})
}

// VerifyPayment -> eSewa success redirect carrying base64 data
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		utils.RespondMessage(c, http.StatusBadRequest, "missing payment data")
		return
	}

	result, err := pc.Payments.Verify(c.Request.Context(), data)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pc.Stats.Invalidate(c.Request.Context())
	pc.Hub.BroadcastPaymentUpdate(*result.Payment, result.Order)
	utils.InfoLogger.Printf("Payment verified for order %d", result.Order.ID)
	utils.RespondJSON(c, http.StatusOK, "Payment verified successfully", gin.H{
		"order":   result.Order,
		"payment": result.Payment,
	})
}

func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	orderID, ok := parseID(c, "orderId")
	if !ok {
		return
	}
	status, err := pc.Payments.Status(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment status", gin.H{
		"paymentStatus": status.PaymentStatus,
		"paymentMethod": status.PaymentMethod,
		"paymentId":     status.PaymentID,
		"paymentDate":   status.PaymentDate,
	})
}

// CashPayment -> record that the customer will pay at the counter
func (pc *PaymentController) CashPayment(c *gin.Context) {
	var req orderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, "orderId is required")
		return
	}

	payment, err := pc.Payments.Cash(c.Request.Context(), req.OrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pc.Hub.BroadcastPaymentUpdate(*payment, gin.H{"id": req.OrderID})
	utils.RespondJSON(c, http.StatusCreated, "Cash payment recorded", gin.H{"payment": payment})
}

// ConfirmCashPayment -> staff confirms the cash was collected
func (pc *PaymentController) ConfirmCashPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	payment, err := pc.Payments.ConfirmCash(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pc.Stats.Invalidate(c.Request.Context())
	pc.Hub.BroadcastPaymentUpdate(*payment, gin.H{"id": payment.OrderID})
	utils.InfoLogger.Printf("Cash payment %d confirmed for order %d", payment.ID, payment.OrderID)
	utils.RespondJSON(c, http.StatusOK, "Cash payment confirmed", gin.H{"payment": payment})
}
