package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/gatehouse/internal/api"
	"github.com/your-org/gatehouse/internal/api/ws"
	"github.com/your-org/gatehouse/internal/attendance"
	"github.com/your-org/gatehouse/internal/commands"
	"github.com/your-org/gatehouse/internal/config"
	"github.com/your-org/gatehouse/internal/devices"
	"github.com/your-org/gatehouse/internal/enroll"
	"github.com/your-org/gatehouse/internal/observability"
	"github.com/your-org/gatehouse/internal/protocol"
	"github.com/your-org/gatehouse/internal/queue"
	"github.com/your-org/gatehouse/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	loc, err := cfg.Device.Location()
	if err != nil {
		slog.Error("device timezone", "error", err)
		os.Exit(1)
	}

	slog.Info("starting gatehouse", "port", cfg.Server.Port, "facility_tz", cfg.Device.TimezoneOffset)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		slog.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStream(context.Background()); err != nil {
		slog.Warn("ensure nats stream", "error", err)
	}

	// Services
	cmdQueue := commands.NewQueue(db)
	tracker := devices.NewTracker(db, cmdQueue, producer, cfg.Device.HeartbeatThreshold)
	engine := attendance.NewEngine(db, producer, loc)
	orchestrator := enroll.NewOrchestrator(db, minioStore, cmdQueue, producer)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Fan bus events out to connected WebSocket clients
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create event consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeEvents(ctx, func(_ context.Context, msg jetstream.Msg) error {
		hub.Broadcast(msg.Data())
		return nil
	})
	if err != nil {
		slog.Warn("start event consumer", "error", err)
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey: cfg.Server.APIKey,
		Handshake: protocol.HandshakeOptions{
			ErrorDelay:    cfg.Device.ErrorDelay,
			TransInterval: cfg.Device.TransInterval,
		},
		DB:           db,
		MinIO:        minioStore,
		Producer:     producer,
		Hub:          hub,
		Tracker:      tracker,
		Engine:       engine,
		Queue:        cmdQueue,
		Orchestrator: orchestrator,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
