package store

import (
	"context"
	"errors"

	"gopherchat/internal/model"
)

// ErrSessionNotFound covers both a missing session and a session owned by
// another user. The two are deliberately indistinguishable to the caller.
var ErrSessionNotFound = errors.New("session not found")

// Store provides access to the hosted database for chat operations.
// Every operation is scoped to the caller's verified user ID.
type Store interface {
	// CreateSession persists a new session containing exactly one turn
	// and returns the generated session ID.
	CreateSession(ctx context.Context, userID string, turn model.Turn) (string, error)

	// AppendTurn appends one turn to a session owned by userID.
	// Returns ErrSessionNotFound for a missing or unowned session;
	// it never creates a session implicitly.
	AppendTurn(ctx context.Context, chatID, userID string, turn model.Turn) error

	// ListSessions returns the user's sessions newest first, each with
	// its turns nested oldest first.
	ListSessions(ctx context.Context, userID string) ([]model.SessionSummary, error)

	// DeleteSession removes a session and its turns. Returns
	// ErrSessionNotFound when no row owned by userID was deleted.
	DeleteSession(ctx context.Context, chatID, userID string) error

	// InsertRating persists one response rating.
	InsertRating(ctx context.Context, rating model.Rating) error
}
