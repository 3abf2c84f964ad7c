package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	supa "github.com/supabase-community/supabase-go"

	"gopherchat/internal/config"
	rabbitmqClient "gopherchat/internal/platform/rabbitmq"
	redisClient "gopherchat/internal/platform/redis"
	supabaseClient "gopherchat/internal/platform/supabase"
	"gopherchat/internal/store"
	"gopherchat/internal/transport/ws"
	"gopherchat/internal/worker"
)

type App struct {
	Config       *config.Config
	Supabase     *supa.Client
	Store        store.Store
	Redis        *redis.Client
	MQConn       *amqp.Connection
	RatingWorker *worker.RatingPersistWorker
	Hub          *ws.Hub

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	supaCli, err := supabaseClient.New(cfg.Supabase.URL, cfg.Supabase.Key)
	if err != nil {
		return nil, err
	}
	sessionStore := store.NewSessionStore(supaCli)

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	ratingWorker := worker.NewRatingPersistWorker(mqConn, sessionStore, cfg.RabbitMQ.RatingPersistQueue)
	if err := ratingWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start rating worker failed: %w", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	return &App{
		Config:       cfg,
		Supabase:     supaCli,
		Store:        sessionStore,
		Redis:        redisCli,
		MQConn:       mqConn,
		RatingWorker: ratingWorker,
		Hub:          hub,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.RatingWorker != nil {
		a.RatingWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
