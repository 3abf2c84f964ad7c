package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/ai"
	"gopherchat/internal/app"
	"gopherchat/internal/transport/http/response"
)

// TestAPIHandler exposes the unauthenticated credential health check: it
// issues one real (tiny) completion so a misconfigured key is caught
// before users hit /chat.
type TestAPIHandler struct {
	gateway app.Gateway
}

func NewTestAPIHandler(gateway app.Gateway) *TestAPIHandler {
	return &TestAPIHandler{gateway: gateway}
}

func (h *TestAPIHandler) Check(c *gin.Context) {
	_, err := h.gateway.Complete(c.Request.Context(), "Reply with the single word: pong")
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrInvalidCredential):
			response.ErrorWithDetails(c, http.StatusUnauthorized, "AI gateway rejected the configured credential", err.Error())
		default:
			response.ErrorWithDetails(c, http.StatusInternalServerError, "AI gateway check failed", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API credentials are working."})
}
