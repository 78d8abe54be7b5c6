package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService owns the order lifecycle and keeps each order's table in step
// with it. Every write runs in a single transaction.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// CustomizationInput is a customization as sent by the client. Missing fields
// default to "", "" and 0.
type CustomizationInput struct {
	OptionName    *string          `json:"option_name"`
	Selection     *string          `json:"selection"`
	PriceAddition *decimal.Decimal `json:"price_addition"`
}

type OrderItemInput struct {
	MenuItemID     uint                 `json:"menu_item_id"`
	Quantity       int                  `json:"quantity"`
	Price          *decimal.Decimal     `json:"price"`
	Notes          string               `json:"notes"`
	Customizations []CustomizationInput `json:"customizations"`
}

type CreateOrderInput struct {
	TableID       uint             `json:"table_id"`
	Items         []OrderItemInput `json:"items"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	PaymentMethod string           `json:"payment_method"`
}

// UpdateOrderInput replaces only what is present. A non-nil Items, even empty,
// replaces every item of the order.
type UpdateOrderInput struct {
	Items         []OrderItemInput `json:"items"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	PaymentStatus *string          `json:"payment_status"`
}

type itemDraft struct {
	item           models.OrderItem
	customizations []models.OrderItemCustomization
}

// Create places a new order and occupies its table.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.TableID == 0 {
		return nil, Validationf("table_id is required")
	}
	if len(in.Items) == 0 {
		return nil, Validationf("order must contain at least one item")
	}
	if in.TotalAmount == nil {
		return nil, Validationf("total_amount is required")
	}
	if in.TotalAmount.IsNegative() {
		return nil, Validationf("total_amount cannot be negative")
	}
	drafts, err := draftItems(in.Items)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := findTable(db, in.TableID); err != nil {
		return nil, err
	}
	if err := ensureMenuItemsExist(db, in.Items); err != nil {
		return nil, err
	}

	method := in.PaymentMethod
	if !models.IsValidOrderPaymentMethod(method) {
		method = models.OrderPaymentCash
	}

	order := models.Order{
		OrderNumber:   newOrderNumber(time.Now()),
		TableID:       in.TableID,
		Status:        models.OrderStatusPending,
		TotalAmount:   *in.TotalAmount,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: method,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		if err := insertItems(tx, order.ID, drafts); err != nil {
			return err
		}
		return occupyTable(tx, order.TableID, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, order.ID)
}

// Update changes the total, the payment status and/or the item set of an order.
func (s *OrderService) Update(ctx context.Context, id uint, in UpdateOrderInput) (*models.Order, error) {
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		return nil, Validationf("total_amount cannot be negative")
	}
	if in.PaymentStatus != nil && !models.IsValidPaymentStatus(*in.PaymentStatus) {
		return nil, Validationf("invalid payment status: %s", *in.PaymentStatus)
	}

	var drafts []itemDraft
	if in.Items != nil {
		var err error
		if drafts, err = draftItems(in.Items); err != nil {
			return nil, err
		}
	}

	db := s.db.WithContext(ctx)
	if _, err := findOrder(db, id); err != nil {
		return nil, err
	}
	if err := ensureMenuItemsExist(db, in.Items); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockOrder(tx, id); err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_at": time.Now()}
		if in.TotalAmount != nil {
			updates["total_amount"] = *in.TotalAmount
		}
		if in.PaymentStatus != nil {
			updates["payment_status"] = *in.PaymentStatus
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if in.Items == nil {
			return nil
		}
		if err := deleteItems(tx, id); err != nil {
			return err
		}
		return insertItems(tx, id, drafts)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpdateStatus moves an order through its lifecycle. Completing or cancelling
// an order frees its table if the table still points at it. complete and
// cancelled are final.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	if status == "" {
		return nil, Validationf("please provide order status")
	}
	if !models.IsValidOrderStatus(status) {
		return nil, Validationf("invalid order status: %s", status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		if order.IsTerminal() && order.Status != status {
			return Validationf("order %d is already %s", id, order.Status)
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return err
		}

		if models.IsTerminalOrderStatus(status) {
			return releaseTable(tx, order.TableID, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes an order with its items and customizations and frees its
// table if the table still points at it. The order's table is returned as it
// stands after the delete.
func (s *OrderService) Delete(ctx context.Context, id uint) (*models.Table, error) {
	var tableID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		tableID = order.TableID
		if err := releaseTable(tx, order.TableID, order.ID); err != nil {
			return err
		}
		if err := deleteItems(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return findTable(s.db.WithContext(ctx), tableID)
}

func (s *OrderService) GetAll(ctx context.Context) ([]models.Order, error) {
	rows, err := fetchOrderRows(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	return AssembleOrders(rows), nil
}

func (s *OrderService) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	return loadOrder(ctx, s.db, id)
}

func (s *OrderService) GetByTable(ctx context.Context, tableID uint) ([]models.Order, error) {
	rows, err := fetchOrderRows(ctx, s.db, "o.table_id = ?", tableID)
	if err != nil {
		return nil, err
	}
	return AssembleOrders(rows), nil
}

func (s *OrderService) GetByStatus(ctx context.Context, status string) ([]models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, Validationf("invalid order status: %s", status)
	}
	rows, err := fetchOrderRows(ctx, s.db, "o.status = ?", status)
	if err != nil {
		return nil, err
	}
	return AssembleOrders(rows), nil
}

// draftItems validates client items and fills in customization defaults.
// Item prices are taken as sent; they are a snapshot, not a catalog lookup.
func draftItems(items []OrderItemInput) ([]itemDraft, error) {
	drafts := make([]itemDraft, 0, len(items))
	for i, in := range items {
		if in.MenuItemID == 0 {
			return nil, Validationf("item %d: menu_item_id is required", i+1)
		}
		if in.Quantity <= 0 {
			return nil, Validationf("item %d: quantity must be greater than zero", i+1)
		}
		if in.Price == nil || !in.Price.IsPositive() {
			return nil, Validationf("item %d: price must be greater than zero", i+1)
		}

		draft := itemDraft{
			item: models.OrderItem{
				MenuItemID: in.MenuItemID,
				Quantity:   in.Quantity,
				Price:      *in.Price,
				Notes:      strings.TrimSpace(in.Notes),
			},
		}
		for _, c := range in.Customizations {
			cust := models.OrderItemCustomization{PriceAddition: decimal.Zero}
			if c.OptionName != nil {
				cust.OptionName = *c.OptionName
			}
			if c.Selection != nil {
				cust.Selection = *c.Selection
			}
			if c.PriceAddition != nil {
				if c.PriceAddition.IsNegative() {
					return nil, Validationf("item %d: price_addition cannot be negative", i+1)
				}
				cust.PriceAddition = *c.PriceAddition
			}
			draft.customizations = append(draft.customizations, cust)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func insertItems(tx *gorm.DB, orderID uint, drafts []itemDraft) error {
	for _, d := range drafts {
		item := d.item
		item.OrderID = orderID
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		if len(d.customizations) == 0 {
			continue
		}
		custs := make([]models.OrderItemCustomization, len(d.customizations))
		for i, c := range d.customizations {
			c.OrderItemID = item.ID
			custs[i] = c
		}
		if err := tx.Create(&custs).Error; err != nil {
			return fmt.Errorf("failed to create item customizations: %w", err)
		}
	}
	return nil
}

// deleteItems removes customizations first, then items.
func deleteItems(tx *gorm.DB, orderID uint) error {
	itemIDs := tx.Model(&models.OrderItem{}).Select("id").Where("order_id = ?", orderID)
	if err := tx.Where("order_item_id IN (?)", itemIDs).Delete(&models.OrderItemCustomization{}).Error; err != nil {
		return err
	}
	return tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
}

func ensureMenuItemsExist(db *gorm.DB, items []OrderItemInput) error {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(items))
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.MenuItemID]; ok {
			continue
		}
		seen[it.MenuItemID] = struct{}{}
		ids = append(ids, it.MenuItemID)
	}

	var found []uint
	if err := db.Model(&models.MenuItem{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	have := make(map[uint]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			return NotFoundf("menu item %d not found", id)
		}
	}
	return nil
}

// loadOrder reads one fully nested order.
func loadOrder(ctx context.Context, db *gorm.DB, id uint) (*models.Order, error) {
	rows, err := fetchOrderRows(ctx, db, "o.id = ?", id)
	if err != nil {
		return nil, err
	}
	order, ok := AssembleOrder(rows)
	if !ok {
		return nil, NotFoundf("order %d not found", id)
	}
	return order, nil
}

func findOrder(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("order %d not found", id)
		}
		return nil, err
	}
	return &order, nil
}

func lockOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	return findOrder(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// newOrderNumber is a millisecond timestamp plus a random suffix, so two
// orders placed in the same millisecond still get distinct numbers.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
