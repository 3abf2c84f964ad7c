package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	redisStatus := h.checkRedis(ctx)
	rmqStatus := h.checkRabbitMQ()
	supaStatus := h.checkSupabase(ctx)

	allOK := redisStatus.OK && rmqStatus.OK && supaStatus.OK
	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":            h.app.Config.App.Name,
		"env":            h.app.Config.App.Env,
		"uptime_sec":     int(time.Since(h.app.StartedAt).Seconds()),
		"ws_connections": h.app.Hub.ConnectionCount(),
		"dependencies": gin.H{
			"redis":    redisStatus,
			"rabbitmq": rmqStatus,
			"supabase": supaStatus,
		},
	})
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn == nil || h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkSupabase(ctx context.Context) dependencyStatus {
	// Head-only count keeps the probe off the data path.
	if _, _, err := h.app.Supabase.From("chats").Select("id", "exact", true).ExecuteWithContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
