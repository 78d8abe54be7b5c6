package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/hub"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Stats  *services.StatisticsService
	Hub    *hub.Hub
}

func NewOrderController(orders *services.OrderService, stats *services.StatisticsService, h *hub.Hub) *OrderController {
	return &OrderController{Orders: orders, Stats: stats, Hub: h}
}

// GetAllOrders -> every order, newest first
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", gin.H{"count": len(orders), "orders": orders})
}

// CreateOrder -> place an order and occupy its table
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	oc.Stats.Invalidate(c.Request.Context())
	oc.Hub.BroadcastOrderUpdate(*order)
	if order.Table != nil {
		oc.Hub.BroadcastTableUpdate(order.Table)
	}
	utils.InfoLogger.Printf("Order %s created for table %d", order.OrderNumber, order.TableID)
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", gin.H{"order": order})
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := oc.Orders.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", gin.H{"order": order})
}

// UpdateOrder -> replace items, total or payment status
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	oc.Stats.Invalidate(c.Request.Context())
	oc.Hub.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order updated successfully", gin.H{"order": order})
}

// UpdateOrderStatus -> move the order through its lifecycle
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	oc.Stats.Invalidate(c.Request.Context())
	oc.Hub.BroadcastOrderUpdate(*order)
	if order.Table != nil {
		oc.Hub.BroadcastTableUpdate(order.Table)
	}
	utils.InfoLogger.Printf("Order %d status changed to %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", gin.H{"order": order})
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	table, err := oc.Orders.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	oc.Stats.Invalidate(c.Request.Context())
	oc.Hub.BroadcastOrderDelete(id)
	oc.Hub.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Order %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Order deleted successfully", nil)
}

func (oc *OrderController) GetOrdersByTable(c *gin.Context) {
	tableID, ok := parseID(c, "tableId")
	if !ok {
		return
	}
	orders, err := oc.Orders.GetByTable(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", gin.H{"count": len(orders), "orders": orders})
}

func (oc *OrderController) GetOrdersByStatus(c *gin.Context) {
	orders, err := oc.Orders.GetByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", gin.H{"count": len(orders), "orders": orders})
}
