package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableService manages dining tables and their occupancy.
type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

// CurrentOrderSummary is the short form of the order a table is holding.
type CurrentOrderSummary struct {
	ID            uint            `json:"id"`
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableView is a table together with its current order, if any.
type TableView struct {
	models.Table
	CurrentOrder *CurrentOrderSummary `json:"current_order"`
}

type CreateTableInput struct {
	TableNumber string `json:"table_number"`
	Capacity    int    `json:"capacity"`
}

type UpdateTableInput struct {
	TableNumber *string `json:"table_number"`
	Capacity    *int    `json:"capacity"`
}

type SetTableStatusInput struct {
	Status       string `json:"status"`
	CurrentOrder *uint  `json:"current_order"`
}

// occupyTable points the table at orderID and marks it occupied. The new order
// id always differs from the stored one, so zero affected rows means the table
// is gone.
func occupyTable(tx *gorm.DB, tableID, orderID uint) error {
	res := tx.Model(&models.Table{}).
		Where("id = ?", tableID).
		Updates(map[string]interface{}{
			"status":           models.TableStatusOccupied,
			"current_order_id": orderID,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("table %d not found", tableID)
	}
	return nil
}

// releaseTable frees the table only while it still points at orderID. A table
// that has moved on to another order is left alone.
func releaseTable(tx *gorm.DB, tableID, orderID uint) error {
	return tx.Model(&models.Table{}).
		Where("id = ? AND current_order_id = ?", tableID, orderID).
		Updates(map[string]interface{}{
			"status":           models.TableStatusAvailable,
			"current_order_id": nil,
			"updated_at":       time.Now(),
		}).Error
}

func (s *TableService) List(ctx context.Context) ([]TableView, error) {
	var tables []models.Table
	if err := s.db.WithContext(ctx).Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return s.withCurrentOrders(ctx, tables)
}

func (s *TableService) Get(ctx context.Context, id uint) (*TableView, error) {
	table, err := findTable(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	views, err := s.withCurrentOrders(ctx, []models.Table{*table})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TableService) Create(ctx context.Context, in CreateTableInput) (*TableView, error) {
	number := strings.TrimSpace(in.TableNumber)
	if number == "" {
		return nil, Validationf("table_number is required")
	}
	if in.Capacity <= 0 {
		return nil, Validationf("capacity must be greater than zero")
	}

	db := s.db.WithContext(ctx)
	if err := ensureTableNumberFree(db, number, 0); err != nil {
		return nil, err
	}

	table := models.Table{
		TableNumber: number,
		Capacity:    in.Capacity,
		Status:      models.TableStatusAvailable,
	}
	if err := db.Create(&table).Error; err != nil {
		return nil, err
	}
	return &TableView{Table: table}, nil
}

func (s *TableService) Update(ctx context.Context, id uint, in UpdateTableInput) (*TableView, error) {
	db := s.db.WithContext(ctx)
	if _, err := findTable(db, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if in.TableNumber != nil {
		number := strings.TrimSpace(*in.TableNumber)
		if number == "" {
			return nil, Validationf("table_number cannot be empty")
		}
		if err := ensureTableNumberFree(db, number, id); err != nil {
			return nil, err
		}
		updates["table_number"] = number
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return nil, Validationf("capacity must be greater than zero")
		}
		updates["capacity"] = *in.Capacity
	}

	if err := db.Model(&models.Table{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a table that no order has ever referenced.
func (s *TableService) Delete(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	if _, err := findTable(db, id); err != nil {
		return err
	}

	var orders int64
	if err := db.Model(&models.Order{}).Where("table_id = ?", id).Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return Conflictf("table %d has orders and cannot be deleted", id)
	}
	return db.Delete(&models.Table{}, id).Error
}

// SetStatus is the admin override for a table's occupancy. An available table
// never keeps an order; an occupied table may only point at an active order
// placed on that same table.
func (s *TableService) SetStatus(ctx context.Context, id uint, in SetTableStatusInput) (*TableView, error) {
	if in.Status == "" {
		return nil, Validationf("please provide table status")
	}
	if !models.IsValidTableStatus(in.Status) {
		return nil, Validationf("invalid table status: %s", in.Status)
	}
	if in.Status == models.TableStatusAvailable && in.CurrentOrder != nil {
		return nil, Validationf("an available table cannot hold an order")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("table %d not found", id)
			}
			return err
		}

		if in.CurrentOrder != nil {
			var order models.Order
			if err := tx.Select("id", "table_id", "status").First(&order, *in.CurrentOrder).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return Validationf("invalid order id for current_order: %d", *in.CurrentOrder)
				}
				return err
			}
			if order.TableID != id {
				return Validationf("order %d belongs to table %d", order.ID, order.TableID)
			}
			if !order.IsActive() {
				return Validationf("order %d is %s and cannot hold a table", order.ID, order.Status)
			}
		}

		return tx.Model(&models.Table{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":           in.Status,
			"current_order_id": in.CurrentOrder,
			"updated_at":       time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TableService) withCurrentOrders(ctx context.Context, tables []models.Table) ([]TableView, error) {
	views := make([]TableView, len(tables))
	var orderIDs []uint
	for i, t := range tables {
		views[i] = TableView{Table: t}
		if t.CurrentOrderID != nil {
			orderIDs = append(orderIDs, *t.CurrentOrderID)
		}
	}
	if len(orderIDs) == 0 {
		return views, nil
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]*CurrentOrderSummary, len(orders))
	for _, o := range orders {
		byID[o.ID] = &CurrentOrderSummary{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			Status:        o.Status,
			TotalAmount:   o.TotalAmount,
			PaymentStatus: o.PaymentStatus,
			PaymentMethod: o.PaymentMethod,
			CreatedAt:     o.CreatedAt,
		}
	}
	for i := range views {
		if id := views[i].CurrentOrderID; id != nil {
			views[i].CurrentOrder = byID[*id]
		}
	}
	return views, nil
}

func findTable(db *gorm.DB, id uint) (*models.Table, error) {
	var table models.Table
	if err := db.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("table %d not found", id)
		}
		return nil, err
	}
	return &table, nil
}

func ensureTableNumberFree(db *gorm.DB, number string, exceptID uint) error {
	var count int64
	q := db.Model(&models.Table{}).Where("table_number = ?", number)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return Conflictf("table number %s already exists", number)
	}
	return nil
}
