package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gopherchat/internal/auth"
)

const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = 45 * time.Second
	maxMessageSize = 64 * 1024
)

// Server upgrades authenticated HTTP requests to WebSocket connections
// and runs their read/write pumps.
type Server struct {
	hub      *Hub
	verifier *auth.Verifier
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, verifier *auth.Verifier) *Server {
	return &Server{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle authenticates the upgrade request and hands the connection to
// the hub. Browsers cannot set headers on WebSocket requests, so the
// token is also accepted as a query parameter.
func (s *Server) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	identity, err := s.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid or missing token"})
		return
	}

	wsConn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	conn := s.hub.NewConnection(wsConn, identity.UserID)
	s.hub.Register(conn)

	wsConn.SetReadLimit(maxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)
}

func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	_ = conn.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error: %v", err)
			}
			break
		}
		s.handleMessage(conn, message)
	}
}

func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("ws write failed: %v", err)
				return
			}

		case <-ticker.C:
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage accepts client send_message events and echoes them to the
// sender's other connections as new_message. The event never crosses a
// user boundary; the server trusts only the identity from the upgrade.
func (s *Server) handleMessage(conn *Connection, data []byte) {
	var event TurnEvent
	if err := json.Unmarshal(data, &event); err != nil {
		_ = s.hub.SendJSON(conn, gin.H{"error": "invalid JSON message"})
		return
	}
	if event.Event != "" && event.Event != EventSendMessage {
		_ = s.hub.SendJSON(conn, gin.H{"error": "unknown event: " + event.Event})
		return
	}

	event.Event = EventNewMessage
	out, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.hub.Broadcast(conn.UserID, out)
}
