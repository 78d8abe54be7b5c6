package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(n uint) *uint { return &n }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func orderRow(orderID uint) OrderRow {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	return OrderRow{
		OrderID:        orderID,
		OrderNumber:    "ORD-1",
		OrderTableID:   7,
		OrderStatus:    "pending",
		TotalAmount:    decimal.RequireFromString("20"),
		PaymentStatus:  "pending",
		PaymentMethod:  "cash",
		OrderCreatedAt: now,
		OrderUpdatedAt: now,
		TableID:        uintPtr(7),
		TableNumber:    strPtr("T7"),
		TableStatus:    strPtr("occupied"),
	}
}

func withItem(row OrderRow, itemID, menuItemID uint) OrderRow {
	row.ItemID = uintPtr(itemID)
	row.ItemMenuItemID = uintPtr(menuItemID)
	qty := 1
	row.ItemQuantity = &qty
	row.ItemPrice = nullDec("10")
	row.MenuItemID = uintPtr(menuItemID)
	row.MenuItemName = strPtr("Burger")
	return row
}

func withCustomization(row OrderRow, id uint, name string) OrderRow {
	row.CustomizationID = uintPtr(id)
	row.CustomizationOptionName = strPtr(name)
	row.CustomizationPriceAddition = nullDec("0.5")
	return row
}

func TestAssembleOrdersGroupsRows(t *testing.T) {
	rows := []OrderRow{
		withCustomization(withItem(orderRow(2), 10, 1), 100, "Size"),
		withCustomization(withItem(orderRow(2), 10, 1), 101, "Sauce"),
		withItem(orderRow(2), 11, 3),
		orderRow(1),
	}

	orders := AssembleOrders(rows)
	require.Len(t, orders, 2)

	o := orders[0]
	assert.Equal(t, uint(2), o.ID)
	require.NotNil(t, o.Table)
	assert.Equal(t, "T7", o.Table.TableNumber)
	require.Len(t, o.Items, 2)
	assert.Equal(t, uint(10), o.Items[0].ID)
	require.Len(t, o.Items[0].Customizations, 2)
	assert.Equal(t, "Size", o.Items[0].Customizations[0].OptionName)
	assert.Equal(t, "Sauce", o.Items[0].Customizations[1].OptionName)
	assert.Equal(t, uint(10), o.Items[0].Customizations[1].OrderItemID)
	assert.True(t, o.Items[0].Customizations[0].PriceAddition.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, uint(11), o.Items[1].ID)
	assert.Empty(t, o.Items[1].Customizations)
	require.NotNil(t, o.Items[1].MenuItem)
	assert.Equal(t, uint(3), o.Items[1].MenuItem.ID)

	empty := orders[1]
	assert.Equal(t, uint(1), empty.ID)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestAssembleOrdersKeepsFirstSeenOrder(t *testing.T) {
	// rows of different orders may interleave
	rows := []OrderRow{
		withItem(orderRow(5), 50, 1),
		withItem(orderRow(3), 30, 1),
		withItem(orderRow(5), 51, 1),
	}

	ids, byID := AssembleOrderIndex(rows)
	assert.Equal(t, []uint{5, 3}, ids)
	require.Len(t, byID[5].Items, 2)
	assert.Equal(t, uint(51), byID[5].Items[1].ID)
	require.Len(t, byID[3].Items, 1)

	assert.Equal(t, AssembleOrders(rows), AssembleOrders(rows))
}

func TestAssembleOrderWithoutTableOrMenuItem(t *testing.T) {
	row := withItem(orderRow(9), 90, 4)
	row.TableID = nil
	row.MenuItemID = nil

	order, ok := AssembleOrder([]OrderRow{row})
	require.True(t, ok)
	assert.Nil(t, order.Table)
	require.Len(t, order.Items, 1)
	assert.Nil(t, order.Items[0].MenuItem)
	assert.Equal(t, uint(4), order.Items[0].MenuItemID)

	_, ok = AssembleOrder(nil)
	assert.False(t, ok)
}
