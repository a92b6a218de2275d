package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/gatehouse/pkg/dto"
)

const (
	EventsStreamName  = "GATEHOUSE_EVENTS"
	EventsSubjectBase = "gatehouse.events"
)

// Producer publishes UI notifications. Publishing is fire-and-forget from the
// caller's perspective: failures are logged and swallowed so slow or absent
// consumers can never back-pressure the device-facing endpoints.
type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewProducer(natsURL string) (*Producer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Producer{nc: nc, js: js}, nil
}

// EnsureStream creates the events stream if it doesn't exist. Retries up to
// 30 times (1s apart) to handle NATS startup delay.
func (p *Producer) EnsureStream(ctx context.Context) error {
	cfg := jetstream.StreamConfig{
		Name:        EventsStreamName,
		Subjects:    []string{EventsSubjectBase + ".>"},
		Retention:   jetstream.InterestPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     1000000,
		Storage:     jetstream.FileStorage,
		Description: "Attendance and enrollment events for UI delivery",
	}

	const maxAttempts = 30
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := p.js.CreateOrUpdateStream(opCtx, cfg)
		cancel()
		if err == nil {
			slog.Info("ensured NATS stream", "name", cfg.Name)
			return nil
		}
		if attempt == maxAttempts {
			return fmt.Errorf("create stream %s: %w (after %d attempts)", cfg.Name, err, maxAttempts)
		}
		slog.Warn("ensure NATS stream (retrying...)", "name", cfg.Name, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return nil
}

func (p *Producer) publish(ctx context.Context, eventType string, data any) {
	payload, err := json.Marshal(dto.BusEvent{Type: eventType, Data: data})
	if err != nil {
		slog.Error("marshal bus event", "type", eventType, "error", err)
		return
	}

	subject := fmt.Sprintf("%s.%s", EventsSubjectBase, eventType)
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		slog.Error("publish event", "type", eventType, "error", err)
	}
}

// Change signals connected UIs to refresh; carries no payload.
func (p *Producer) Change(ctx context.Context) {
	p.publish(ctx, dto.EventChange, nil)
}

func (p *Producer) CheckIn(ctx context.Context, ev dto.CheckEvent) {
	p.publish(ctx, dto.EventCheckIn, ev)
}

func (p *Producer) CheckOut(ctx context.Context, ev dto.CheckEvent) {
	p.publish(ctx, dto.EventCheckOut, ev)
}

func (p *Producer) Enrollment(ctx context.Context, ev dto.EnrollmentEvent) {
	p.publish(ctx, dto.EventEnrollment, ev)
}

func (p *Producer) EnrollmentFailed(ctx context.Context, ev dto.EnrollmentFailedEvent) {
	p.publish(ctx, dto.EventEnrollmentFailed, ev)
}

func (p *Producer) DeviceOnline(ctx context.Context, serialNumber string) {
	p.publish(ctx, dto.EventDeviceOnline, dto.DeviceOnlineEvent{SerialNumber: serialNumber})
}

func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Producer) Close() {
	p.nc.Close()
}
