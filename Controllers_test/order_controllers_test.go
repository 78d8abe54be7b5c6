package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/digital-menu/hub"
	"github.com/yeremiapane/digital-menu/router"
	"github.com/yeremiapane/digital-menu/services"
)

func TestCreateAndGetOrder(t *testing.T) {
	s := newTestServer(t)
	tableID := s.createTable(t, "T1")

	order := s.createOrder(t, tableID)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "pending", order["payment_status"])
	assert.Equal(t, "cash", order["payment_method"])
	assert.EqualValues(t, 20, order["total_amount"])
	assert.Regexp(t, `^ORD-\d+-[0-9A-F]{6}$`, order["order_number"])

	w := s.do(t, http.MethodGet, path("/api/v1/orders/%d", idOf(order)), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["order"].(map[string]interface{})

	items := got["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.EqualValues(t, 2, item["quantity"])
	assert.Equal(t, "Test Food", item["item"].(map[string]interface{})["name"])
	assert.Empty(t, item["customizations"])

	table := got["table"].(map[string]interface{})
	assert.Equal(t, "T1", table["table_number"])
	assert.Equal(t, "occupied", table["status"])
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestServer(t)
	tableID := s.createTable(t, "T1")

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"missing table", map[string]interface{}{"total_amount": 10, "items": []map[string]interface{}{{"menu_item_id": s.menu.ID, "quantity": 1, "price": 10}}}, http.StatusBadRequest},
		{"no items", map[string]interface{}{"table_id": tableID, "total_amount": 10, "items": []interface{}{}}, http.StatusBadRequest},
		{"zero price", map[string]interface{}{"table_id": tableID, "total_amount": 10, "items": []map[string]interface{}{{"menu_item_id": s.menu.ID, "quantity": 1, "price": 0}}}, http.StatusBadRequest},
		{"unknown table", map[string]interface{}{"table_id": 999, "total_amount": 10, "items": []map[string]interface{}{{"menu_item_id": s.menu.ID, "quantity": 1, "price": 10}}}, http.StatusNotFound},
		{"unknown menu item", map[string]interface{}{"table_id": tableID, "total_amount": 10, "items": []map[string]interface{}{{"menu_item_id": 999, "quantity": 1, "price": 10}}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/orders", "", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func TestOrderStatusFreesTable(t *testing.T) {
	s := newTestServer(t)
	tableID := s.createTable(t, "T1")
	order := s.createOrder(t, tableID)
	staff := s.token(t, "staff")

	statusPath := path("/api/v1/orders/%d/status", idOf(order))
	w := s.do(t, http.MethodPatch, statusPath, "", map[string]string{"status": "complete"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPatch, statusPath, staff, map[string]string{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, statusPath, staff, map[string]string{"status": "complete"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "complete", decode(t, w)["order"].(map[string]interface{})["status"])

	w = s.do(t, http.MethodGet, path("/api/v1/tables/%d", tableID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	table := decode(t, w)["table"].(map[string]interface{})
	assert.Equal(t, "available", table["status"])
	assert.Nil(t, table["current_order_id"])
	assert.Nil(t, table["current_order"])
}

func TestUpdateAndDeleteOrder(t *testing.T) {
	s := newTestServer(t)
	tableID := s.createTable(t, "T1")
	order := s.createOrder(t, tableID)
	orderPath := path("/api/v1/orders/%d", idOf(order))

	w := s.do(t, http.MethodPatch, orderPath, "", map[string]interface{}{
		"total_amount": 30,
		"items": []map[string]interface{}{
			{"menu_item_id": s.menu.ID, "quantity": 3, "price": 10,
				"customizations": []map[string]interface{}{{"option_name": "Spice", "selection": "Hot"}}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["order"].(map[string]interface{})
	assert.EqualValues(t, 30, updated["total_amount"])
	items := updated["items"].([]interface{})
	require.Len(t, items, 1)
	customizations := items[0].(map[string]interface{})["customizations"].([]interface{})
	require.Len(t, customizations, 1)
	assert.Equal(t, "Hot", customizations[0].(map[string]interface{})["selection"])

	w = s.do(t, http.MethodDelete, orderPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, orderPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, path("/api/v1/tables/%d", tableID), "", nil)
	assert.Equal(t, "available", decode(t, w)["table"].(map[string]interface{})["status"])
}

func TestOrderListings(t *testing.T) {
	s := newTestServer(t)
	t1 := s.createTable(t, "T1")
	t2 := s.createTable(t, "T2")
	first := s.createOrder(t, t1)
	second := s.createOrder(t, t2)
	staff := s.token(t, "staff")

	w := s.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 2, body["count"])
	orders := body["orders"].([]interface{})
	assert.Equal(t, idOf(second), idOf(orders[0].(map[string]interface{})))
	assert.Equal(t, idOf(first), idOf(orders[1].(map[string]interface{})))

	w = s.do(t, http.MethodGet, path("/api/v1/orders/table/%d", t1), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = s.do(t, http.MethodGet, "/api/v1/orders/status/pending", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["count"])

	w = s.do(t, http.MethodGet, "/api/v1/orders/status/bogus", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderWritesRefreshDashboard(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newTestServer(t, func(deps *router.Dependencies) {
		deps.Cache = services.NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	})
	admin := s.token(t, "admin")
	tableID := s.createTable(t, "T1")

	activeTables := func() interface{} {
		w := s.do(t, http.MethodGet, "/api/v1/stats/dashboard", admin, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)["stats"].(map[string]interface{})["active_tables"]
	}

	assert.EqualValues(t, 0, activeTables())
	require.True(t, mr.Exists("stats:dashboard"))

	order := s.createOrder(t, tableID)
	assert.False(t, mr.Exists("stats:dashboard"))
	assert.EqualValues(t, 1, activeTables())

	w := s.do(t, http.MethodDelete, path("/api/v1/orders/%d", idOf(order)), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, activeTables())
}

func TestDeleteOrderBroadcastsFreedTable(t *testing.T) {
	s := newTestServer(t)
	tableID := s.createTable(t, "T1")
	order := s.createOrder(t, tableID)
	conn := s.watch(t)

	w := s.do(t, http.MethodDelete, path("/api/v1/orders/%d", idOf(order)), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	deleted := nextEvent(t, conn, hub.EventOrderDelete)
	assert.EqualValues(t, idOf(order), deleted.Data.(map[string]interface{})["id"])

	table := nextEvent(t, conn, hub.EventTableUpdate).Data.(map[string]interface{})
	assert.EqualValues(t, tableID, table["id"])
	assert.Equal(t, "available", table["status"])
	assert.Nil(t, table["current_order_id"])
}
