package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/ai"
	"gopherchat/internal/app"
	"gopherchat/internal/store"
	"gopherchat/internal/transport/http/middleware"
	"gopherchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type ChatRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chat_id"`
}

type DeleteChatRequest struct {
	ChatID string `json:"chat_id"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat runs one turn: validate, generate, persist, and return
// {chat_id, answer}. With no chat_id a fresh session is created.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid token payload")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Message is required.")
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), app.AskInput{
		UserID:  userID,
		ChatID:  req.ChatID,
		Message: req.Message,
	})
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// History returns the caller's sessions newest first, turns nested.
func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid token payload")
		return
	}

	history, err := h.chatService.History(c.Request.Context(), userID)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to fetch chat history", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// Delete removes an owned session. Unowned sessions are a 404, never a
// silent success.
func (h *ChatHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid token payload")
		return
	}

	var req DeleteChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatID == "" {
		response.Error(c, http.StatusBadRequest, "chat_id is required.")
		return
	}

	if err := h.chatService.DeleteSession(c.Request.Context(), userID, req.ChatID); err != nil {
		switch {
		case errors.Is(err, app.ErrChatIDRequired):
			response.Error(c, http.StatusBadRequest, "chat_id is required.")
		case errors.Is(err, store.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, "Chat not found.")
		default:
			response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to delete chat", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, "Message is required.")
	case errors.Is(err, store.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "Chat not found.")
	case errors.Is(err, ai.ErrInvalidCredential):
		response.ErrorWithDetails(c, http.StatusUnauthorized, "AI gateway rejected the configured credential", err.Error())
	case errors.Is(err, ai.ErrGatewayUnreachable), errors.Is(err, ai.ErrGatewayError):
		response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to fetch AI response", err.Error())
	default:
		response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to process message", err.Error())
	}
}
