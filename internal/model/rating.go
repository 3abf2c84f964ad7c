package model

import "time"

// Rating is one 1-5 score for an AI response, a row in response_ratings.
type Rating struct {
	ID        int64     `json:"id,omitempty"`
	ChatID    string    `json:"chat_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
