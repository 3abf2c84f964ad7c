package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopherchat/internal/model"
	"gopherchat/internal/store"
)

// RatingPersistWorker consumes enqueued response ratings and writes them
// to the hosted store off the request path.
type RatingPersistWorker struct {
	conn      *amqp.Connection
	store     store.Store
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRatingPersistWorker(conn *amqp.Connection, st store.Store, queueName string) *RatingPersistWorker {
	return &RatingPersistWorker{
		conn:      conn,
		store:     st,
		queueName: queueName,
	}
}

func (w *RatingPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var rating model.Rating
				if err := json.Unmarshal(d.Body, &rating); err != nil {
					log.Printf("worker decode rating failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.store.InsertRating(workerCtx, rating); err != nil {
					log.Printf("worker persist rating failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *RatingPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
