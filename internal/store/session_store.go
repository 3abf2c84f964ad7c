package store

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"gopherchat/internal/model"
)

const (
	chatsTable    = "chats"
	messagesTable = "chat_messages"
	ratingsTable  = "response_ratings"

	maxTitleLen = 128
)

// SessionStore implements Store on top of the hosted PostgREST API.
type SessionStore struct {
	client *supa.Client
}

func NewSessionStore(client *supa.Client) *SessionStore {
	return &SessionStore{client: client}
}

type chatRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (s *SessionStore) CreateSession(ctx context.Context, userID string, turn model.Turn) (string, error) {
	chatID := uuid.NewString()
	row := chatRow{
		ID:     chatID,
		UserID: userID,
		Title:  titleFromMessage(turn.UserMessage),
	}
	if _, _, err := s.client.From(chatsTable).
		Insert(row, false, "", "", "").
		ExecuteWithContext(ctx); err != nil {
		return "", fmt.Errorf("create session failed: %w", err)
	}

	if err := s.insertTurn(ctx, chatID, userID, turn); err != nil {
		return "", err
	}
	return chatID, nil
}

func (s *SessionStore) AppendTurn(ctx context.Context, chatID, userID string, turn model.Turn) error {
	owned, err := s.ownsSession(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrSessionNotFound
	}
	return s.insertTurn(ctx, chatID, userID, turn)
}

func (s *SessionStore) ListSessions(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	var chats []chatRow
	if _, err := s.client.From(chatsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteToWithContext(ctx, &chats); err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	if len(chats) == 0 {
		return []model.SessionSummary{}, nil
	}

	chatIDs := make([]string, 0, len(chats))
	for _, c := range chats {
		chatIDs = append(chatIDs, c.ID)
	}

	var turns []model.Turn
	if _, err := s.client.From(messagesTable).
		Select("*", "", false).
		In("chat_id", chatIDs).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteToWithContext(ctx, &turns); err != nil {
		return nil, fmt.Errorf("list session turns failed: %w", err)
	}

	byChat := make(map[string][]model.Turn, len(chats))
	for _, t := range turns {
		byChat[t.ChatID] = append(byChat[t.ChatID], t)
	}

	summaries := make([]model.SessionSummary, 0, len(chats))
	for _, c := range chats {
		title := c.Title
		if title == "" {
			title = titleFromTurns(byChat[c.ID])
		}
		messages := byChat[c.ID]
		if messages == nil {
			messages = []model.Turn{}
		}
		summaries = append(summaries, model.SessionSummary{
			ID:       c.ID,
			Title:    title,
			Messages: messages,
		})
	}
	return summaries, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, chatID, userID string) error {
	// Turns first; the chat row is the ownership witness.
	if _, _, err := s.client.From(messagesTable).
		Delete("", "").
		Eq("chat_id", chatID).
		Eq("user_id", userID).
		ExecuteWithContext(ctx); err != nil {
		return fmt.Errorf("delete session turns failed: %w", err)
	}

	_, count, err := s.client.From(chatsTable).
		Delete("", "exact").
		Eq("id", chatID).
		Eq("user_id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	if count == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) InsertRating(ctx context.Context, rating model.Rating) error {
	row := struct {
		ChatID string `json:"chat_id"`
		UserID string `json:"user_id"`
		Rating int    `json:"rating"`
	}{rating.ChatID, rating.UserID, rating.Rating}

	if _, _, err := s.client.From(ratingsTable).
		Insert(row, false, "", "", "").
		ExecuteWithContext(ctx); err != nil {
		return fmt.Errorf("insert rating failed: %w", err)
	}
	return nil
}

func (s *SessionStore) ownsSession(ctx context.Context, chatID, userID string) (bool, error) {
	var rows []chatRow
	if _, err := s.client.From(chatsTable).
		Select("id", "", false).
		Eq("id", chatID).
		Eq("user_id", userID).
		ExecuteToWithContext(ctx, &rows); err != nil {
		return false, fmt.Errorf("check session ownership failed: %w", err)
	}
	return len(rows) > 0, nil
}

func (s *SessionStore) insertTurn(ctx context.Context, chatID, userID string, turn model.Turn) error {
	row := struct {
		ChatID      string `json:"chat_id"`
		UserID      string `json:"user_id"`
		UserMessage string `json:"user_message"`
		AIResponse  string `json:"ai_response"`
	}{chatID, userID, turn.UserMessage, turn.AIResponse}

	if _, _, err := s.client.From(messagesTable).
		Insert(row, false, "", "", "").
		ExecuteWithContext(ctx); err != nil {
		return fmt.Errorf("append turn failed: %w", err)
	}
	return nil
}

func titleFromMessage(message string) string {
	title := strings.TrimSpace(message)
	if title == "" {
		return "New Chat"
	}
	if len(title) > maxTitleLen {
		cut := maxTitleLen
		// Back up to a rune boundary so a multi-byte rune is never split.
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut]
	}
	return title
}

func titleFromTurns(turns []model.Turn) string {
	if len(turns) == 0 {
		return "New Chat"
	}
	return titleFromMessage(turns[0].UserMessage)
}

var _ Store = (*SessionStore)(nil)
