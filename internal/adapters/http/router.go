package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dkeye/careline/internal/adapters/signal"
	"github.com/dkeye/careline/internal/app/orch"
	"github.com/dkeye/careline/internal/config"
	"github.com/dkeye/careline/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type notifyRequest struct {
	Room  string          `json:"room" binding:"required"`
	Event string          `json:"event" binding:"required"`
	Data  json.RawMessage `json:"data"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, ctrl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(OriginFilter(cfg.AllowedOrigins))

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(DeviceTokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": cfg.WebRTCICEServers()})
	})
	api.GET("/presence", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"users": o.OnlineUsers()})
	})
	api.POST("/notify", JWTAuth(cfg.JWTSecret), func(c *gin.Context) {
		var req notifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res := o.Notify(domain.RoomKey(req.Room), req.Event, req.Data)
		log.Info().Str("module", "adapters.http").Str("room", req.Room).Str("event", req.Event).Int("delivered", res.SendTo).Msg("notify")
		c.JSON(http.StatusOK, gin.H{"delivered": res.SendTo})
	})

	r.GET("/ws", JWTAuth(cfg.JWTSecret), func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("device", c.GetString(signal.DeviceTokenKey)).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
