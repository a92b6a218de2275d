// Package commands tracks the per-device FIFO of outbound terminal commands.
// Lifecycle is PENDING → SENT → SUCCESS/FAILED. Draining is pull-based:
// terminals poll and each poll hands out at most one command. A command whose
// result never arrives stays SENT forever — there is no timeout or retry; the
// pending count per device is the operator's visibility into a stuck queue.
package commands

import (
	"context"
	"fmt"

	"github.com/your-org/gatehouse/internal/models"
	"github.com/your-org/gatehouse/internal/observability"
)

// Store is the persistence the queue needs. *storage.PostgresStore satisfies it.
type Store interface {
	InsertCommand(ctx context.Context, deviceSN, commandString string) (*models.DeviceCommand, error)
	DequeuePendingCommand(ctx context.Context, deviceSN string) (*models.DeviceCommand, error)
	SetCommandStatus(ctx context.Context, id int64, status models.CommandStatus) (*models.DeviceCommand, error)
	PendingCommandCount(ctx context.Context, deviceSN string) (int, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
}

type Queue struct {
	store Store
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

// Enqueue appends a PENDING command for one device and returns its ID.
func (q *Queue) Enqueue(ctx context.Context, deviceSN, commandString string) (int64, error) {
	cmd, err := q.store.InsertCommand(ctx, deviceSN, commandString)
	if err != nil {
		return 0, fmt.Errorf("enqueue command: %w", err)
	}
	observability.CommandsEnqueued.Inc()
	return cmd.ID, nil
}

// EnqueueBroadcast appends the same command for every known device and
// returns how many were queued. Used for operations that don't need per-device
// capture, like card provisioning and user sync.
func (q *Queue) EnqueueBroadcast(ctx context.Context, commandString string) (int, error) {
	devices, err := q.store.ListDevices(ctx)
	if err != nil {
		return 0, fmt.Errorf("broadcast command: %w", err)
	}

	queued := 0
	for _, d := range devices {
		if _, err := q.Enqueue(ctx, d.SerialNumber, commandString); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// DequeueNext claims the oldest PENDING command for a device, marking it
// SENT. Returns nil when the queue is empty; the caller then acknowledges the
// poll with a bare OK.
func (q *Queue) DequeueNext(ctx context.Context, deviceSN string) (*models.DeviceCommand, error) {
	cmd, err := q.store.DequeuePendingCommand(ctx, deviceSN)
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		observability.CommandsDispatched.WithLabelValues(deviceSN).Inc()
	}
	if count, err := q.store.PendingCommandCount(ctx, deviceSN); err == nil {
		observability.PendingCommands.WithLabelValues(deviceSN).Set(float64(count))
	}
	return cmd, nil
}

// RecordResult transitions SENT → SUCCESS or SENT → FAILED and returns the
// command so callers can react to what completed. Returns nil for unknown IDs
// or commands not in SENT.
func (q *Queue) RecordResult(ctx context.Context, id int64, succeeded bool) (*models.DeviceCommand, error) {
	status := models.CommandFailed
	outcome := "failed"
	if succeeded {
		status = models.CommandSuccess
		outcome = "success"
	}

	cmd, err := q.store.SetCommandStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		observability.CommandResults.WithLabelValues(outcome).Inc()
	}
	return cmd, nil
}

// PendingCount reports the backlog for one device.
func (q *Queue) PendingCount(ctx context.Context, deviceSN string) (int, error) {
	return q.store.PendingCommandCount(ctx, deviceSN)
}
