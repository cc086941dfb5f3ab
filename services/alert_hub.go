package services

import (
	"log"
	"net/http"
	"sync"
	"time"

	"stockwatch/services/analysis"

	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	maxAlertFeeds = 32
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
)

// alertEvent is the wire format pushed to live feed subscribers.
type alertEvent struct {
	Code      string    `json:"code"`
	Model     string    `json:"model"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertHub pushes fired alerts to connected websocket clients. Slow or
// dead clients are dropped rather than blocking the pipeline.
type AlertHub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]chan alertEvent
}

// NewAlertHub creates an empty hub.
func NewAlertHub() *AlertHub {
	return &AlertHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan alertEvent),
	}
}

// HandleConnection upgrades an HTTP request to a websocket
// subscription on the alert feed.
func (h *AlertHub) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if len(h.clients) >= maxAlertFeeds {
		h.mu.Unlock()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "feed at capacity"))
		conn.Close()
		return nil
	}
	send := make(chan alertEvent, 16)
	h.clients[conn] = send
	h.mu.Unlock()

	go h.writePump(conn, send)
	go h.readPump(conn)
	return nil
}

// Broadcast fans one fired alert out to every subscriber.
func (h *AlertHub) Broadcast(code string, alert analysis.Alert) {
	event := alertEvent{
		Code:      code,
		Model:     alert.Model,
		Subject:   alert.Subject,
		Body:      alert.Body,
		Timestamp: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- event:
		default:
			// Client not keeping up.
			delete(h.clients, conn)
			close(send)
			conn.Close()
		}
	}
}

// ClientCount reports the number of live subscribers.
func (h *AlertHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *AlertHub) writePump(conn *websocket.Conn, send chan alertEvent) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.remove(conn)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(conn)
				return
			}
		}
	}
}

func (h *AlertHub) readPump(conn *websocket.Conn) {
	defer h.remove(conn)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("alert feed: read error: %v", err)
			}
			return
		}
	}
}

func (h *AlertHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()
	conn.Close()
}
