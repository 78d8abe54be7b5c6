package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/digital-menu/database/dbtest"
	"github.com/yeremiapane/digital-menu/hub"
	"github.com/yeremiapane/digital-menu/models"
	"github.com/yeremiapane/digital-menu/router"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	jwt      *utils.JWTManager
	verifier *fakeVerifier
	hub      *hub.Hub
	menu     models.MenuItem
}

// fakeVerifier accepts any callback data and reports the configured result.
type fakeVerifier struct {
	verified *services.VerifiedPayment
	err      error
}

func (v *fakeVerifier) BuildSignedPayload(amount decimal.Decimal, transactionUUID string) (services.SignedPayload, error) {
	return services.SignedPayload{
		TotalAmount:      amount.String(),
		ProductCode:      "EPAYTEST",
		SignedFieldNames: "total_amount,transaction_uuid,product_code",
		Signature:        "sig-" + transactionUUID,
	}, nil
}

func (v *fakeVerifier) Verify(ctx context.Context, data string) (*services.VerifiedPayment, error) {
	return v.verified, v.err
}

// newTestServer builds the full router over a fresh database. Options adjust
// the dependencies before the router is built.
func newTestServer(t *testing.T, opts ...func(*router.Dependencies)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	category := models.Category{Name: "Test Category"}
	require.NoError(t, db.Create(&category).Error)
	menu := models.MenuItem{Name: "Test Food", Price: decimal.NewFromInt(10), CategoryID: category.ID, IsAvailable: true}
	require.NoError(t, db.Create(&menu).Error)

	uploadDir := t.TempDir()
	jwtManager := utils.NewJWTManager(testSecret)
	verifier := &fakeVerifier{}
	deps := router.Dependencies{
		DB:             db,
		JWT:            jwtManager,
		Verifier:       verifier,
		Blobs:          services.NewLocalBlobStore(uploadDir, "http://api.test"),
		Cache:          services.NoopCache{},
		Hub:            hub.New(),
		UploadDir:      uploadDir,
		FrontendURL:    "http://menu.test",
		AllowedOrigins: []string{"http://menu.test"},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	r := router.SetupRouter(deps)

	return &testServer{router: r, db: db, jwt: jwtManager, verifier: verifier, hub: deps.Hub, menu: menu}
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(1, role, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a JSON request. An empty token sends no Authorization header.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (s *testServer) createTable(t *testing.T, number string) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/tables", s.token(t, "admin"),
		map[string]interface{}{"table_number": number, "capacity": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	table := decode(t, w)["table"].(map[string]interface{})
	return uint(table["id"].(float64))
}

func (s *testServer) createOrder(t *testing.T, tableID uint) map[string]interface{} {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/orders", "", map[string]interface{}{
		"table_id":     tableID,
		"total_amount": 20,
		"items": []map[string]interface{}{
			{"menu_item_id": s.menu.ID, "quantity": 2, "price": 10},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["order"].(map[string]interface{})
}

func idOf(v map[string]interface{}) uint {
	return uint(v["id"].(float64))
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

// watch connects a staff dashboard over a real listener and waits until the
// hub has registered it.
func (s *testServer) watch(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + url.QueryEscape(s.token(t, "staff"))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

// nextEvent reads dashboard events until one named event arrives.
func nextEvent(t *testing.T, conn *websocket.Conn, event string) hub.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg hub.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Event == event {
			return msg
		}
	}
}
