package app

import (
	"context"
	"strings"

	"gopherchat/internal/model"
)

// RatingPublisher enqueues ratings for asynchronous persistence.
type RatingPublisher interface {
	Publish(ctx context.Context, rating model.Rating) error
}

// RatingService accepts response ratings. Ratings are fire-and-forget at
// the API boundary: they are validated, enqueued, and persisted by the
// rating worker off the request path.
type RatingService struct {
	publisher RatingPublisher
}

type RateInput struct {
	ChatID string
	UserID string
	Rating int
}

func NewRatingService(publisher RatingPublisher) *RatingService {
	return &RatingService{publisher: publisher}
}

func (s *RatingService) Rate(ctx context.Context, input RateInput) error {
	if strings.TrimSpace(input.ChatID) == "" {
		return ErrChatIDRequired
	}
	if input.Rating < 1 || input.Rating > 5 {
		return ErrInvalidRating
	}
	if s.publisher == nil {
		return ErrRatingEnqueue
	}

	rating := model.Rating{
		ChatID: input.ChatID,
		UserID: input.UserID,
		Rating: input.Rating,
	}
	if err := s.publisher.Publish(ctx, rating); err != nil {
		return ErrRatingEnqueue
	}
	return nil
}
