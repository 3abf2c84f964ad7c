package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gopherchat/internal/model"
)

func newTestConnection(userID, id string) *Connection {
	return &Connection{
		ID:     id,
		UserID: userID,
		Send:   make(chan []byte, 8),
	}
}

func receiveOrTimeout(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fan-out delivery")
		return nil
	}
}

func assertNoDelivery(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case data := <-ch:
		t.Fatalf("unexpected delivery: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishTurnReachesOwnerOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestConnection("alice", "c1")
	aliceOther := newTestConnection("alice", "c2")
	bob := newTestConnection("bob", "c3")
	hub.Register(alice)
	hub.Register(aliceOther)
	hub.Register(bob)

	hub.PublishTurn("alice", model.Turn{
		ChatID:      "chat-1",
		UserMessage: "hello",
		AIResponse:  "hi there",
	})

	var event TurnEvent
	assert.NoError(t, json.Unmarshal(receiveOrTimeout(t, alice.Send), &event))
	assert.Equal(t, EventNewMessage, event.Event)
	assert.Equal(t, "chat-1", event.ChatID)
	assert.Equal(t, "hello", event.Message)
	assert.Equal(t, "hi there", event.AIResponse)

	// Both of the owner's connections get the event; the other user none.
	receiveOrTimeout(t, aliceOther.Send)
	assertNoDelivery(t, bob.Send)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := newTestConnection("carol", "c1")
	hub.Register(conn)
	hub.Unregister(conn)

	// The send channel is closed on unregister.
	_, open := <-conn.Send
	assert.False(t, open)

	assert.False(t, hub.HasConnections("carol"))
	hub.PublishTurn("carol", model.Turn{ChatID: "chat-9", UserMessage: "x", AIResponse: "y"})
}

func TestSendJSONSafeAfterBufferFullClose(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := &Connection{ID: "c1", UserID: "frank", Send: make(chan []byte, 1)}
	hub.Register(conn)

	// Fill the one-slot buffer, then broadcast again so the hub takes the
	// buffer-full path and unregisters the connection.
	hub.Broadcast("frank", []byte("one"))
	hub.Broadcast("frank", []byte("two"))

	// Sends racing the close must fail cleanly, never panic the process.
	assert.Eventually(t, func() bool {
		err := hub.SendJSON(conn, map[string]string{"event": "ping"})
		return errors.Is(err, ErrConnectionClosed)
	}, time.Second, 5*time.Millisecond)

	assert.False(t, hub.HasConnections("frank"))
}

func TestConnectionCount(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	assert.Equal(t, 0, hub.ConnectionCount())
	hub.Register(newTestConnection("dave", "c1"))
	hub.Register(newTestConnection("erin", "c2"))

	// Registration completes synchronously with the channel handoff.
	assert.Eventually(t, func() bool {
		return hub.ConnectionCount() == 2
	}, time.Second, 10*time.Millisecond)
	assert.True(t, hub.HasConnections("dave"))
	assert.False(t, hub.HasConnections("mallory"))
}
