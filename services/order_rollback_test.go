package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected write failure")

// failWrites makes every create or update against table fail inside the
// statement, after any earlier writes of the same transaction went through.
func failWrites(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	}
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_create_"+table, fail))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_update_"+table, fail))
}

func TestCreateOrderRollsBackWhenTableUpdateFails(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "T1")
	failWrites(t, f.db, "tables")

	_, err := f.orders.Create(f.ctx, CreateOrderInput{
		TableID:     table.ID,
		Items:       []OrderItemInput{f.item(f.burger, 1)},
		TotalAmount: dec("12.50"),
	})
	require.ErrorIs(t, err, errInjected)

	assert.Zero(t, count(t, f.db, &models.Order{}))
	assert.Zero(t, count(t, f.db, &models.OrderItem{}))

	reloaded := f.reloadTable(t, table.ID)
	assert.Equal(t, models.TableStatusAvailable, reloaded.Status)
	assert.Nil(t, reloaded.CurrentOrderID)
}

func TestUpdateOrderRollsBackWhenItemInsertFails(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.table(t, "T1").ID)
	failWrites(t, f.db, "order_items")

	_, err := f.orders.Update(f.ctx, order.ID, UpdateOrderInput{
		Items:       []OrderItemInput{f.item(f.fries, 2), f.item(f.burger, 1)},
		TotalAmount: dec("20.50"),
	})
	require.ErrorIs(t, err, errInjected)

	got, err := f.orders.GetByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("12.50")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, f.burger.ID, got.Items[0].MenuItemID)
	assert.Equal(t, 1, got.Items[0].Quantity)
}
