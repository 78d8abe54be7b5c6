package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
)

// OrderRow is one row of the order read query: order × table × item × menu
// item × customization. Table, item and customization columns are nullable
// because every join after orders is a LEFT JOIN.
type OrderRow struct {
	OrderID              uint            `gorm:"column:order_id"`
	OrderNumber          string          `gorm:"column:order_number"`
	OrderTableID         uint            `gorm:"column:order_table_id"`
	OrderStatus          string          `gorm:"column:order_status"`
	TotalAmount          decimal.Decimal `gorm:"column:total_amount"`
	PaymentStatus        string          `gorm:"column:payment_status"`
	PaymentMethod        string          `gorm:"column:payment_method"`
	PaymentTransactionID *string         `gorm:"column:payment_transaction_id"`
	PaymentDate          *time.Time      `gorm:"column:payment_date"`
	OrderCreatedAt       time.Time       `gorm:"column:order_created_at"`
	OrderUpdatedAt       time.Time       `gorm:"column:order_updated_at"`

	TableID             *uint      `gorm:"column:table_id"`
	TableNumber         *string    `gorm:"column:table_number"`
	TableCapacity       *int       `gorm:"column:table_capacity"`
	TableStatus         *string    `gorm:"column:table_status"`
	TableCurrentOrderID *uint      `gorm:"column:table_current_order_id"`
	TableCreatedAt      *time.Time `gorm:"column:table_created_at"`
	TableUpdatedAt      *time.Time `gorm:"column:table_updated_at"`

	ItemID         *uint               `gorm:"column:item_id"`
	ItemMenuItemID *uint               `gorm:"column:item_menu_item_id"`
	ItemQuantity   *int                `gorm:"column:item_quantity"`
	ItemPrice      decimal.NullDecimal `gorm:"column:item_price"`
	ItemNotes      *string             `gorm:"column:item_notes"`
	ItemCreatedAt  *time.Time          `gorm:"column:item_created_at"`
	ItemUpdatedAt  *time.Time          `gorm:"column:item_updated_at"`

	MenuItemID          *uint               `gorm:"column:menu_item_id"`
	MenuItemName        *string             `gorm:"column:menu_item_name"`
	MenuItemDescription *string             `gorm:"column:menu_item_description"`
	MenuItemPrice       decimal.NullDecimal `gorm:"column:menu_item_price"`
	MenuItemCategoryID  *uint               `gorm:"column:menu_item_category_id"`
	MenuItemImageURL    *string             `gorm:"column:menu_item_image_url"`
	MenuItemIsAvailable *bool               `gorm:"column:menu_item_is_available"`

	CustomizationID            *uint               `gorm:"column:customization_id"`
	CustomizationOptionName    *string             `gorm:"column:customization_option_name"`
	CustomizationSelection     *string             `gorm:"column:customization_selection"`
	CustomizationPriceAddition decimal.NullDecimal `gorm:"column:customization_price_addition"`
}

const orderRowsQuery = `
SELECT
	o.id                     AS order_id,
	o.order_number           AS order_number,
	o.table_id               AS order_table_id,
	o.status                 AS order_status,
	o.total_amount           AS total_amount,
	o.payment_status         AS payment_status,
	o.payment_method         AS payment_method,
	o.payment_transaction_id AS payment_transaction_id,
	o.payment_date           AS payment_date,
	o.created_at             AS order_created_at,
	o.updated_at             AS order_updated_at,

	t.id               AS table_id,
	t.table_number     AS table_number,
	t.capacity         AS table_capacity,
	t.status           AS table_status,
	t.current_order_id AS table_current_order_id,
	t.created_at       AS table_created_at,
	t.updated_at       AS table_updated_at,

	oi.id           AS item_id,
	oi.menu_item_id AS item_menu_item_id,
	oi.quantity     AS item_quantity,
	oi.price        AS item_price,
	oi.notes        AS item_notes,
	oi.created_at   AS item_created_at,
	oi.updated_at   AS item_updated_at,

	mi.id           AS menu_item_id,
	mi.name         AS menu_item_name,
	mi.description  AS menu_item_description,
	mi.price        AS menu_item_price,
	mi.category_id  AS menu_item_category_id,
	mi.image_url    AS menu_item_image_url,
	mi.is_available AS menu_item_is_available,

	oic.id             AS customization_id,
	oic.option_name    AS customization_option_name,
	oic.selection      AS customization_selection,
	oic.price_addition AS customization_price_addition
FROM orders o
LEFT JOIN tables t ON t.id = o.table_id
LEFT JOIN order_items oi ON oi.order_id = o.id
LEFT JOIN menu_items mi ON mi.id = oi.menu_item_id
LEFT JOIN order_item_customizations oic ON oic.order_item_id = oi.id
`

// fetchOrderRows runs the order read query. where may be empty; rows come back
// newest order first, then by item id and customization id.
func fetchOrderRows(ctx context.Context, db *gorm.DB, where string, args ...interface{}) ([]OrderRow, error) {
	query := orderRowsQuery
	if where != "" {
		query += "WHERE " + where + "\n"
	}
	query += "ORDER BY o.created_at DESC, o.id DESC, oi.id ASC, oic.id ASC"

	var rows []OrderRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AssembleOrders groups flat order rows into nested orders. Orders, items and
// customizations keep the order in which their ids are first seen, so the same
// rows always produce the same result.
func AssembleOrders(rows []OrderRow) []models.Order {
	orders := make([]models.Order, 0)
	orderPos := make(map[uint]int)
	// item ids are unique across orders, so one index is enough
	itemPos := make(map[uint]int)

	for i := range rows {
		row := &rows[i]

		pos, seen := orderPos[row.OrderID]
		if !seen {
			orders = append(orders, orderFromRow(row))
			pos = len(orders) - 1
			orderPos[row.OrderID] = pos
		}
		order := &orders[pos]

		// order without items
		if row.ItemID == nil {
			continue
		}

		ip, seen := itemPos[*row.ItemID]
		if !seen {
			order.Items = append(order.Items, itemFromRow(row))
			ip = len(order.Items) - 1
			itemPos[*row.ItemID] = ip
		}

		if row.CustomizationID != nil {
			item := &order.Items[ip]
			item.Customizations = append(item.Customizations, customizationFromRow(row))
		}
	}
	return orders
}

// AssembleOrder returns the first order found in rows.
func AssembleOrder(rows []OrderRow) (*models.Order, bool) {
	orders := AssembleOrders(rows)
	if len(orders) == 0 {
		return nil, false
	}
	return &orders[0], true
}

// AssembleOrderIndex is AssembleOrders keyed by order id. ids keeps the
// first-seen order of the keys.
func AssembleOrderIndex(rows []OrderRow) (ids []uint, byID map[uint]*models.Order) {
	orders := AssembleOrders(rows)
	ids = make([]uint, 0, len(orders))
	byID = make(map[uint]*models.Order, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
		byID[orders[i].ID] = &orders[i]
	}
	return ids, byID
}

func orderFromRow(row *OrderRow) models.Order {
	order := models.Order{
		ID:                   row.OrderID,
		OrderNumber:          row.OrderNumber,
		TableID:              row.OrderTableID,
		Status:               row.OrderStatus,
		TotalAmount:          row.TotalAmount,
		PaymentStatus:        row.PaymentStatus,
		PaymentMethod:        row.PaymentMethod,
		PaymentTransactionID: row.PaymentTransactionID,
		PaymentDate:          row.PaymentDate,
		Items:                []models.OrderItem{},
		CreatedAt:            row.OrderCreatedAt,
		UpdatedAt:            row.OrderUpdatedAt,
	}

	if row.TableID != nil {
		order.Table = &models.Table{
			ID:             *row.TableID,
			TableNumber:    derefString(row.TableNumber),
			Capacity:       derefInt(row.TableCapacity),
			Status:         derefString(row.TableStatus),
			CurrentOrderID: row.TableCurrentOrderID,
			CreatedAt:      derefTime(row.TableCreatedAt),
			UpdatedAt:      derefTime(row.TableUpdatedAt),
		}
	}
	return order
}

func itemFromRow(row *OrderRow) models.OrderItem {
	item := models.OrderItem{
		ID:             *row.ItemID,
		OrderID:        row.OrderID,
		MenuItemID:     derefUint(row.ItemMenuItemID),
		Quantity:       derefInt(row.ItemQuantity),
		Price:          row.ItemPrice.Decimal,
		Notes:          derefString(row.ItemNotes),
		Customizations: []models.OrderItemCustomization{},
		CreatedAt:      derefTime(row.ItemCreatedAt),
		UpdatedAt:      derefTime(row.ItemUpdatedAt),
	}

	// the menu item may have been removed since the order was placed
	if row.MenuItemID != nil {
		item.MenuItem = &models.MenuItem{
			ID:          *row.MenuItemID,
			Name:        derefString(row.MenuItemName),
			Description: derefString(row.MenuItemDescription),
			Price:       row.MenuItemPrice.Decimal,
			CategoryID:  derefUint(row.MenuItemCategoryID),
			ImageURL:    derefString(row.MenuItemImageURL),
			IsAvailable: row.MenuItemIsAvailable != nil && *row.MenuItemIsAvailable,
		}
	}
	return item
}

func customizationFromRow(row *OrderRow) models.OrderItemCustomization {
	return models.OrderItemCustomization{
		ID:            *row.CustomizationID,
		OrderItemID:   *row.ItemID,
		OptionName:    derefString(row.CustomizationOptionName),
		Selection:     derefString(row.CustomizationSelection),
		PriceAddition: row.CustomizationPriceAddition.Decimal,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func derefUint(n *uint) uint {
	if n == nil {
		return 0
	}
	return *n
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
