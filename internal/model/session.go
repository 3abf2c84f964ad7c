package model

import "time"

// Session is one conversation thread, a row in the chats table. Rows are
// owned by the external store; the backend never caches them durably.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummary is a session with its turns nested, as returned by
// chat-history. Turns are ordered oldest first; summaries newest first.
type SessionSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Messages []Turn `json:"messages"`
}
