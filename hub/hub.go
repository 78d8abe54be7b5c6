package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/digital-menu/models"
	"github.com/yeremiapane/digital-menu/utils"
)

// Event types
const (
	EventOrderUpdate   = "order_update"
	EventOrderDelete   = "order_delete"
	EventTableUpdate   = "table_update"
	EventPaymentUpdate = "payment_update"
)

const writeWait = 10 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the connected staff dashboards and fans events out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastOrderUpdate(order models.Order) {
	h.Broadcast(Message{Event: EventOrderUpdate, Data: order})
}

func (h *Hub) BroadcastOrderDelete(orderID uint) {
	h.Broadcast(Message{
		Event: EventOrderDelete,
		Data:  map[string]interface{}{"id": orderID},
	})
}

func (h *Hub) BroadcastTableUpdate(table interface{}) {
	h.Broadcast(Message{Event: EventTableUpdate, Data: table})
}

func (h *Hub) BroadcastPaymentUpdate(payment models.Payment, order interface{}) {
	h.Broadcast(Message{
		Event: EventPaymentUpdate,
		Data: map[string]interface{}{
			"payment": payment,
			"order":   order,
		},
	})
}

// Broadcast sends msg to every client. A client that cannot be written to is
// dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling hub message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
