// Package ws provides the realtime fan-out channel: newly produced turns
// are pushed to the owning user's live connections. Delivery is
// best-effort with no replay; history always comes from the store.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gopherchat/internal/model"
)

var (
	ErrBufferFull       = errors.New("send buffer full")
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is a single WebSocket connection bound to a verified user.
type Connection struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu sync.Mutex

	sendMu sync.Mutex
	closed bool
}

// Hub indexes connections per user so a published turn only ever reaches
// its owner's clients.
type Hub struct {
	connections map[string]*Connection
	users       map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	fanout     chan *userMessage

	mu sync.RWMutex
}

type userMessage struct {
	UserID string
	Data   []byte
}

// TurnEvent is the wire shape of the new_message/send_message events.
type TurnEvent struct {
	Event      string `json:"event"`
	ChatID     string `json:"chat_id"`
	Message    string `json:"message"`
	AIResponse string `json:"ai_response"`
}

const (
	EventNewMessage  = "new_message"
	EventSendMessage = "send_message"
)

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		users:       make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		fanout:      make(chan *userMessage, 256),
	}
}

// Run drives registration and fan-out. Call it once from a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.users[conn.UserID] == nil {
				h.users[conn.UserID] = make(map[string]bool)
			}
			h.users[conn.UserID][conn.ID] = true
			h.mu.Unlock()
			log.Printf("ws connection registered: %s (user: %s)", conn.ID, conn.UserID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if h.users[conn.UserID] != nil {
					delete(h.users[conn.UserID], conn.ID)
					if len(h.users[conn.UserID]) == 0 {
						delete(h.users, conn.UserID)
					}
				}
				conn.closeSend()
			}
			h.mu.Unlock()
			log.Printf("ws connection unregistered: %s", conn.ID)

		case msg := <-h.fanout:
			h.mu.RLock()
			for connID := range h.users[msg.UserID] {
				conn, exists := h.connections[connID]
				if !exists {
					continue
				}
				if err := conn.trySend(msg.Data); errors.Is(err, ErrBufferFull) {
					log.Printf("ws connection %s buffer full, closing", connID)
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) NewConnection(ws *websocket.Conn, userID string) *Connection {
	return &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   ws,
		Send:   make(chan []byte, 256),
	}
}

func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Broadcast queues data for every connection of one user. Non-blocking;
// the event is dropped when the fan-out queue is full.
func (h *Hub) Broadcast(userID string, data []byte) {
	select {
	case h.fanout <- &userMessage{UserID: userID, Data: data}:
	default:
		log.Printf("ws fanout queue full, dropping event for user %s", userID)
	}
}

// PublishTurn satisfies the orchestrator's fan-out dependency.
func (h *Hub) PublishTurn(userID string, turn model.Turn) {
	data, err := json.Marshal(TurnEvent{
		Event:      EventNewMessage,
		ChatID:     turn.ChatID,
		Message:    turn.UserMessage,
		AIResponse: turn.AIResponse,
	})
	if err != nil {
		return
	}
	h.Broadcast(userID, data)
}

// SendJSON delivers a message to one specific connection.
func (h *Hub) SendJSON(conn *Connection, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.trySend(data)
}

// ConnectionCount reports active connections, used by the health check.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HasConnections reports whether a user has any live connection.
func (h *Hub) HasConnections(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// trySend queues data for the write pump. The sendMu/closed pair keeps a
// send from ever racing the close in the hub's unregister path; a send on
// a closed channel would take the whole process down.
func (c *Connection) trySend(data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// closeSend closes the send channel exactly once. Only the hub calls this,
// from its unregister path.
func (c *Connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// WriteMessage serializes writes to the underlying connection.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Connection) Close() error {
	return c.Conn.Close()
}
