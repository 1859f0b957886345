package inspect

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vrt/pkg/oplog"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// MessageHello is sent once when a subscriber connects.
	MessageHello MessageType = "hello"

	// MessageOp carries one recorded mutation.
	MessageOp MessageType = "op"

	// MessageFrame is sent after a frame step or reset completes.
	MessageFrame MessageType = "frame"
)

// Message is sent to subscribers as a JSON text frame.
type Message struct {
	Type  MessageType `json:"type"`
	Frame int         `json:"frame"`
	Op    *oplog.Op   `json:"op,omitempty"`
	Done  bool        `json:"done,omitempty"`
}

// hub fans recorded ops out to websocket subscribers.
type hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	// writeMu serialises writes; a conn allows one writer at a time.
	writeMu sync.Mutex
}

func newHub() *hub {
	return &hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// serve upgrades the request, sends hello and keeps the connection
// registered until the client goes away.
func (h *hub) serve(w http.ResponseWriter, req *http.Request, hello Message) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	// Register before saying hello so that a client that waits for hello
	// sees every op recorded afterwards.
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	if data, err := json.Marshal(hello); err == nil {
		h.writeMu.Lock()
		err = conn.WriteMessage(websocket.TextMessage, data)
		h.writeMu.Unlock()
		if err != nil {
			h.drop(conn)
			return
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(client)
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
