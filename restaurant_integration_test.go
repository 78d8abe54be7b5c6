package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/digital-menu/config"
	"github.com/yeremiapane/digital-menu/database/dbtest"
	"github.com/yeremiapane/digital-menu/models"
	"github.com/yeremiapane/digital-menu/router"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

const (
	esewaProductCode = "EPAYTEST"
	esewaSecret      = "8gBm/:&EnhH.1/q"
)

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path string, body interface{}, auth bool) (int, map[string]interface{}) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// esewaCallback signs callback data the way eSewa does for a completed payment.
func esewaCallback(t *testing.T, txUUID, amount string) string {
	t.Helper()
	fields := "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names"
	message := fmt.Sprintf("transaction_code=%s,status=%s,total_amount=%s,transaction_uuid=%s,product_code=%s,signed_field_names=%s",
		"000AWEO", "COMPLETE", amount, txUUID, esewaProductCode, fields)
	mac := hmac.New(sha256.New, []byte(esewaSecret))
	mac.Write([]byte(message))

	raw, err := json.Marshal(map[string]string{
		"transaction_code":   "000AWEO",
		"status":             "COMPLETE",
		"total_amount":       amount,
		"transaction_uuid":   txUUID,
		"product_code":       esewaProductCode,
		"signed_field_names": fields,
		"signature":          base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func esewaStatusAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"product_code":     q.Get("product_code"),
			"transaction_uuid": q.Get("transaction_uuid"),
			"total_amount":     q.Get("total_amount"),
			"status":           "COMPLETE",
			"ref_id":           "0001TS9",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestEndToEndIntegration walks a table through a dine-in visit:
// order, kitchen progress, eSewa payment, completion.
func TestEndToEndIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)

	category := models.Category{Name: "Mains"}
	require.NoError(t, db.Create(&category).Error)
	burger := models.MenuItem{Name: "Burger", Price: decimal.RequireFromString("12.50"), CategoryID: category.ID, IsAvailable: true}
	require.NoError(t, db.Create(&burger).Error)

	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisAddr: mr.Addr(), StatsCacheTTL: time.Minute}

	jwtManager := utils.NewJWTManager("integration-secret")
	esewa := services.NewEsewaService(services.EsewaConfig{
		ProductCode: esewaProductCode,
		SecretKey:   esewaSecret,
		BaseURL:     esewaStatusAPI(t).URL,
	})
	uploadDir := t.TempDir()
	srv := httptest.NewServer(router.SetupRouter(router.Dependencies{
		DB:          db,
		JWT:         jwtManager,
		Verifier:    esewa,
		Blobs:       services.NewLocalBlobStore(uploadDir, "http://api.test"),
		Cache:       newStatsCache(cfg),
		UploadDir:   uploadDir,
		FrontendURL: "http://menu.test",
	}))
	t.Cleanup(srv.Close)

	token, err := jwtManager.GenerateToken(1, "admin", time.Hour)
	require.NoError(t, err)
	c := &client{t: t, base: srv.URL, token: token}

	// 1. staff dashboard connects
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + url.QueryEscape(token)
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	// 2. admin creates a table
	code, body := c.call(http.MethodPost, "/api/v1/tables", map[string]interface{}{"table_number": "A1", "capacity": 2}, true)
	require.Equal(t, http.StatusCreated, code, body)
	tableID := body["table"].(map[string]interface{})["id"].(float64)

	// 3. customer orders from the QR menu
	code, body = c.call(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"table_id":       tableID,
		"total_amount":   25,
		"payment_method": "online_payment",
		"items": []map[string]interface{}{
			{"menu_item_id": burger.ID, "quantity": 2, "price": 12.5, "notes": "no onions"},
		},
	}, false)
	require.Equal(t, http.StatusCreated, code, body)
	order := body["order"].(map[string]interface{})
	orderID := order["id"].(float64)
	assert.Equal(t, "occupied", order["table"].(map[string]interface{})["status"])

	// table events may arrive first
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var event struct {
			Event string `json:"event"`
		}
		require.NoError(t, ws.ReadJSON(&event))
		if event.Event == "order_update" {
			break
		}
	}

	// 4. kitchen moves it along
	for _, status := range []string{"preparing", "served"} {
		code, body = c.call(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", int(orderID)),
			map[string]string{"status": status}, true)
		require.Equal(t, http.StatusOK, code, body)
	}

	// 5. customer pays with eSewa
	code, body = c.call(http.MethodPost, "/api/v1/payments/initiate", map[string]interface{}{"orderId": orderID}, false)
	require.Equal(t, http.StatusOK, code, body)
	payment := body["payment"].(map[string]interface{})
	txUUID := payment["transaction_uuid"].(string)
	assert.Equal(t, "25", payment["total_amount"])

	code, body = c.call(http.MethodGet, "/api/v1/payments/verify?data="+url.QueryEscape(esewaCallback(t, txUUID, "25.0")), nil, false)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "paid", body["order"].(map[string]interface{})["payment_status"])
	assert.Equal(t, "served", body["order"].(map[string]interface{})["status"])

	// 6. order is completed and the table is free again
	code, body = c.call(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", int(orderID)),
		map[string]string{"status": "complete"}, true)
	require.Equal(t, http.StatusOK, code, body)

	code, body = c.call(http.MethodGet, fmt.Sprintf("/api/v1/tables/%d", int(tableID)), nil, false)
	require.Equal(t, http.StatusOK, code, body)
	table := body["table"].(map[string]interface{})
	assert.Equal(t, "available", table["status"])
	assert.Nil(t, table["current_order_id"])

	// 7. the dashboard sees the revenue
	code, body = c.call(http.MethodGet, "/api/v1/stats/dashboard", nil, true)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 25, body["stats"].(map[string]interface{})["today_revenue"])
	assert.True(t, mr.Exists("stats:dashboard"))
}

func TestNewStatsCacheFallsBack(t *testing.T) {
	_, ok := newStatsCache(&config.Config{}).(services.NoopCache)
	assert.True(t, ok)

	_, ok = newStatsCache(&config.Config{RedisAddr: "127.0.0.1:1"}).(services.NoopCache)
	assert.True(t, ok)
}
