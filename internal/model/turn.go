package model

import "time"

// Turn is one user/AI exchange, a row in the chat_messages table.
// Turns are append-only; the serial ID carries the ordering, so an append
// is a single insert with no read-modify-write window.
type Turn struct {
	ID          int64     `json:"id,omitempty"`
	ChatID      string    `json:"chat_id"`
	UserID      string    `json:"user_id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
