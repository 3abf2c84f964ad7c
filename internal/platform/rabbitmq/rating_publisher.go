package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopherchat/internal/model"
)

// RatingPublisher enqueues response ratings for asynchronous persistence.
// Ratings are fire-and-forget at the API boundary, so they do not need the
// inline store round trip that chat turns do.
type RatingPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewRatingPublisher(conn *amqp.Connection, queueName string) *RatingPublisher {
	return &RatingPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *RatingPublisher) Publish(ctx context.Context, rating model.Rating) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("marshal rating payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish rating failed: %w", err)
	}
	return nil
}
