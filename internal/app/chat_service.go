package app

import (
	"context"
	"errors"
	"strings"

	"gopherchat/internal/model"
	"gopherchat/internal/store"
)

var (
	ErrMessageEmpty   = errors.New("message is required")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrRatingEnqueue  = errors.New("rating enqueue failed")
	ErrChatIDRequired = errors.New("chat_id is required")
)

// Gateway is the LLM completion dependency.
type Gateway interface {
	Complete(ctx context.Context, message string) (string, error)
}

// FanoutPublisher pushes a freshly produced turn to the user's live
// connections. Delivery is best-effort and must never block the request.
type FanoutPublisher interface {
	PublishTurn(userID string, turn model.Turn)
}

// HistoryCache is the optional read-through cache for chat history.
type HistoryCache interface {
	GetHistory(ctx context.Context, userID string) ([]model.SessionSummary, bool, error)
	SetHistory(ctx context.Context, userID string, history []model.SessionSummary) error
	DeleteHistory(ctx context.Context, userID string) error
	MarkDirty(ctx context.Context, userID string) error
	IsDirty(ctx context.Context, userID string) (bool, error)
}

type ChatService struct {
	store        store.Store
	gateway      Gateway
	fanout       FanoutPublisher
	historyCache HistoryCache
}

type AskInput struct {
	UserID  string
	ChatID  string // empty = start a new session
	Message string
}

type AskResult struct {
	ChatID string `json:"chat_id"`
	Answer string `json:"answer"`
}

func NewChatService(st store.Store, gateway Gateway, fanout FanoutPublisher, historyCache HistoryCache) *ChatService {
	return &ChatService{
		store:        st,
		gateway:      gateway,
		fanout:       fanout,
		historyCache: historyCache,
	}
}

// Ask runs one chat turn end to end: validate, generate, persist, publish.
// The order is strict. Generation happens only for an authenticated caller
// (the transport guarantees UserID), and nothing is persisted unless the
// gateway produced a real answer, so the store never holds a half turn.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrMessageEmpty
	}

	answer, err := s.gateway.Complete(ctx, message)
	if err != nil {
		return nil, err
	}

	turn := model.Turn{
		UserID:      input.UserID,
		UserMessage: message,
		AIResponse:  answer,
	}

	chatID := strings.TrimSpace(input.ChatID)
	if chatID == "" {
		chatID, err = s.store.CreateSession(ctx, input.UserID, turn)
		if err != nil {
			return nil, err
		}
	} else {
		// An append to a missing or unowned session fails outright; it
		// never falls back to creating a fresh session.
		if err := s.store.AppendTurn(ctx, chatID, input.UserID, turn); err != nil {
			return nil, err
		}
	}
	turn.ChatID = chatID

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.UserID)
		_ = s.historyCache.DeleteHistory(ctx, input.UserID)
	}
	if s.fanout != nil {
		s.fanout.PublishTurn(input.UserID, turn)
	}

	return &AskResult{ChatID: chatID, Answer: answer}, nil
}

// History returns the user's sessions newest first, through the cache
// when it is clean.
func (s *ChatService) History(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	history, err := s.store.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, userID, history)
		}
	}
	return history, nil
}

// DeleteSession removes an owned session. Unowned or missing sessions
// surface store.ErrSessionNotFound rather than a silent no-op.
func (s *ChatService) DeleteSession(ctx context.Context, userID, chatID string) error {
	if strings.TrimSpace(chatID) == "" {
		return ErrChatIDRequired
	}
	if err := s.store.DeleteSession(ctx, chatID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, userID)
		_ = s.historyCache.DeleteHistory(ctx, userID)
	}
	return nil
}
