package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/domain"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait    = 5 * time.Second
	clientBuffer = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub рассылает снимки состояния консоли подключённым интерфейсам.
type Hub struct {
	mu          sync.Mutex
	clients     map[*wsClient]struct{}
	lastVersion uint64
	last        []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// Broadcast отправляет снимок всем клиентам. Снимки не новее уже
// отправленного отбрасываются, медленные клиенты отключаются.
func (h *Hub) Broadcast(snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.WithField("err", err).Error("Ошибка сериализации снимка")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.last != nil && snap.Version <= h.lastVersion {
		return
	}
	h.lastVersion = snap.Version
	h.last = data

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Warn("Клиент websocket не успевает читать, соединение закрыто")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("err", err).Warn("Ошибка подключения websocket")
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(c)
}

func (h *Hub) writePump(c *wsClient) {
	defer func() { _ = c.conn.Close() }()

	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close отключает всех клиентов.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.removeLocked(c)
	}
}
