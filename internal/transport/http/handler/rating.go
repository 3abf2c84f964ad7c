package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/app"
	"gopherchat/internal/transport/http/response"
)

type RatingHandler struct {
	ratingService *app.RatingService
}

type RateRequest struct {
	ChatID string `json:"chat_id"`
	Rating int    `json:"rating"`
	UserID string `json:"user_id"`
}

func NewRatingHandler(ratingService *app.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// Rate accepts a 1-5 score for an AI response and enqueues it for
// asynchronous persistence.
func (h *RatingHandler) Rate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid rating payload.")
		return
	}

	err := h.ratingService.Rate(c.Request.Context(), app.RateInput{
		ChatID: req.ChatID,
		UserID: req.UserID,
		Rating: req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatIDRequired):
			response.Error(c, http.StatusBadRequest, "chat_id is required.")
		case errors.Is(err, app.ErrInvalidRating):
			response.Error(c, http.StatusBadRequest, "Rating must be between 1 and 5.")
		case errors.Is(err, app.ErrRatingEnqueue):
			response.Error(c, http.StatusServiceUnavailable, "Rating could not be accepted, try again later.")
		default:
			response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to record rating", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
