package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/digital-menu/database/dbtest"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	ctx    context.Context
	orders *OrderService
	tables *TableService
	burger models.MenuItem
	fries  models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	category := models.Category{Name: "Mains"}
	require.NoError(t, db.Create(&category).Error)

	burger := models.MenuItem{Name: "Burger", Price: decimal.RequireFromString("12.50"), CategoryID: category.ID, IsAvailable: true}
	fries := models.MenuItem{Name: "Fries", Price: decimal.RequireFromString("4.00"), CategoryID: category.ID, IsAvailable: true}
	require.NoError(t, db.Create(&burger).Error)
	require.NoError(t, db.Create(&fries).Error)

	return &fixture{
		db:     db,
		ctx:    context.Background(),
		orders: NewOrderService(db),
		tables: NewTableService(db),
		burger: burger,
		fries:  fries,
	}
}

func (f *fixture) table(t *testing.T, number string) models.Table {
	t.Helper()
	table := models.Table{TableNumber: number, Capacity: 4, Status: models.TableStatusAvailable}
	require.NoError(t, f.db.Create(&table).Error)
	return table
}

func (f *fixture) reloadTable(t *testing.T, id uint) models.Table {
	t.Helper()
	var table models.Table
	require.NoError(t, f.db.First(&table, id).Error)
	return table
}

func (f *fixture) placeOrder(t *testing.T, tableID uint) *models.Order {
	t.Helper()
	order, err := f.orders.Create(f.ctx, CreateOrderInput{
		TableID:     tableID,
		Items:       []OrderItemInput{f.item(f.burger, 1)},
		TotalAmount: dec("12.50"),
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) item(menu models.MenuItem, qty int) OrderItemInput {
	price := menu.Price
	return OrderItemInput{MenuItemID: menu.ID, Quantity: qty, Price: &price}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
