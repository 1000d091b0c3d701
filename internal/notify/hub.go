// Package notify pushes ledger events to connected websocket clients.
package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/metrics"
	"rentpay-backend/internal/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Callers authenticate with their access token, not cookies.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans payment events out to the tenant and landlord they concern.
type Hub struct {
	clients    map[string]map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan models.PaymentEvent
	log        *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[string]map[*websocket.Conn]bool),
		broadcast: make(chan models.PaymentEvent, 64),
		log:       logrus.WithField("component", "notify"),
	}
}

// PaymentRecorded queues event for delivery. It never blocks; events are
// dropped when the queue is full.
func (h *Hub) PaymentRecorded(_ context.Context, event models.PaymentEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.WithField("payment_id", event.PaymentID).Warn("notification queue full, dropping event")
	}
}

// Run delivers queued events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event models.PaymentEvent) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for _, userID := range recipients(event) {
		for conn := range h.clients[userID] {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				conn.Close()
				h.remove(userID, conn)
			}
		}
	}
}

func recipients(event models.PaymentEvent) []string {
	if event.LandlordID == "" || event.LandlordID == event.TenantID {
		return []string{event.TenantID}
	}
	return []string{event.TenantID, event.LandlordID}
}

// ServeWS upgrades the request and keeps the connection registered for userID
// until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
	metrics.NotificationClients.Inc()
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			h.remove(userID, conn)
			h.clientsMux.Unlock()
			return
		}
	}
}

// remove must be called with clientsMux held.
func (h *Hub) remove(userID string, conn *websocket.Conn) {
	conns, ok := h.clients[userID]
	if !ok || !conns[conn] {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
	metrics.NotificationClients.Dec()
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for userID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
			h.remove(userID, conn)
		}
	}
}

// ClientCount returns the number of open connections for userID.
func (h *Hub) ClientCount(userID string) int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients[userID])
}
