package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/ai"
	appsvc "gopherchat/internal/app"
	"gopherchat/internal/auth"
	"gopherchat/internal/bootstrap"
	"gopherchat/internal/cache"
	"gopherchat/internal/platform/rabbitmq"
	"gopherchat/internal/transport/http/handler"
	"gopherchat/internal/transport/http/middleware"
	"gopherchat/internal/transport/ws"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.StaticFile("/", "web/index.html")

	verifier := auth.NewVerifier(app.Config.Supabase.JWTSecret, app.Supabase.Auth)
	gateway := ai.NewGatewayClient(ai.Config{
		BaseURL:  app.Config.LLM.BaseURL,
		APIKey:   app.Config.LLM.APIKey,
		Model:    app.Config.LLM.Model,
		Referrer: app.Config.LLM.Referrer,
		Title:    app.Config.LLM.Title,
	})
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	ratingPublisher := rabbitmq.NewRatingPublisher(app.MQConn, app.Config.RabbitMQ.RatingPersistQueue)

	chatService := appsvc.NewChatService(app.Store, gateway, app.Hub, historyCache)
	ratingService := appsvc.NewRatingService(ratingPublisher)

	chatHandler := handler.NewChatHandler(chatService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	testAPIHandler := handler.NewTestAPIHandler(gateway)
	healthHandler := handler.NewHealthHandler(app)
	wsServer := ws.NewServer(app.Hub, verifier)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/test-api", testAPIHandler.Check)
	router.POST("/rate-response", ratingHandler.Rate)
	router.GET("/ws", wsServer.Handle)

	authRequired := middleware.AuthRequired(verifier)
	router.POST("/chat", authRequired, chatHandler.Chat)
	router.GET("/chat-history", authRequired, chatHandler.History)
	router.DELETE("/delete-chat", authRequired, chatHandler.Delete)

	return router
}
