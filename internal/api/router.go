package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/gatehouse/internal/api/handlers"
	"github.com/your-org/gatehouse/internal/api/ws"
	"github.com/your-org/gatehouse/internal/attendance"
	"github.com/your-org/gatehouse/internal/auth"
	"github.com/your-org/gatehouse/internal/commands"
	"github.com/your-org/gatehouse/internal/devices"
	"github.com/your-org/gatehouse/internal/enroll"
	"github.com/your-org/gatehouse/internal/protocol"
	"github.com/your-org/gatehouse/internal/queue"
	"github.com/your-org/gatehouse/internal/storage"
)

type RouterConfig struct {
	APIKey       string
	Handshake    protocol.HandshakeOptions
	DB           *storage.PostgresStore
	MinIO        *storage.MinIOStore
	Producer     *queue.Producer
	Hub          *ws.Hub
	Tracker      *devices.Tracker
	Engine       *attendance.Engine
	Queue        *commands.Queue
	Orchestrator *enroll.Orchestrator
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// Terminal-facing protocol surface (no auth: terminals can't send headers)
	iclockH := handlers.NewIClockHandler(cfg.Tracker, cfg.Engine, cfg.Queue, cfg.Orchestrator, cfg.Handshake)
	r.GET("/iclock/cdata", iclockH.Handshake)
	r.POST("/iclock/cdata", iclockH.DataPush)
	r.GET("/iclock/getrequest", iclockH.CommandPoll)
	r.POST("/iclock/devicecmd", iclockH.CommandResult)
	r.POST("/iclock/registry", iclockH.Registry)

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Operator API (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket event feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Enrollment
	enrollH := handlers.NewEnrollHandler(cfg.Orchestrator)
	v1.POST("/enroll", enrollH.Begin)
	v1.POST("/enroll/sync", enrollH.Sync)

	// Devices
	deviceH := handlers.NewDeviceHandler(cfg.Tracker, cfg.Orchestrator, cfg.Queue)
	v1.GET("/devices/status", deviceH.Status)
	v1.POST("/devices/restore", deviceH.Restore)
	v1.POST("/devices/command", deviceH.Command)

	// Photos
	photoH := handlers.NewPhotoHandler(cfg.MinIO)
	v1.GET("/photos/:pin", photoH.Get)

	return r
}
