// Package devices tracks terminal liveness. Terminals have no registration
// step: the first protocol request from an unknown serial number creates the
// device row, and every subsequent request stamps its heartbeat. Online is a
// derived property, never stored.
package devices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/your-org/gatehouse/internal/models"
	"github.com/your-org/gatehouse/internal/observability"
	"github.com/your-org/gatehouse/pkg/dto"
)

// Store is the persistence the tracker needs. *storage.PostgresStore satisfies it.
type Store interface {
	UpsertDeviceHeartbeat(ctx context.Context, serialNumber, defaultName string, at time.Time) (*models.Device, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
	DeviceBySerial(ctx context.Context, serialNumber string) (*models.Device, error)
}

// PendingCounter reports the command backlog per device. *commands.Queue
// satisfies it.
type PendingCounter interface {
	PendingCount(ctx context.Context, deviceSN string) (int, error)
}

// Notifier announces device liveness. *queue.Producer satisfies it.
type Notifier interface {
	DeviceOnline(ctx context.Context, serialNumber string)
}

type Tracker struct {
	store     Store
	pending   PendingCounter
	notifier  Notifier
	threshold time.Duration
	now       func() time.Time

	seen sync.Map // serials that contacted us since server start
}

func NewTracker(store Store, pending PendingCounter, notifier Notifier, threshold time.Duration) *Tracker {
	return &Tracker{
		store:     store,
		pending:   pending,
		notifier:  notifier,
		threshold: threshold,
		now:       time.Now,
	}
}

// RecordHeartbeat registers first contact or refreshes the heartbeat of a
// known terminal. The first contact from a serial since server start is
// announced on the bus.
func (t *Tracker) RecordHeartbeat(ctx context.Context, serialNumber string) (*models.Device, error) {
	d, err := t.store.UpsertDeviceHeartbeat(ctx, serialNumber, "Device "+serialNumber, t.now().UTC())
	if err != nil {
		return nil, err
	}
	observability.DeviceHeartbeats.WithLabelValues(serialNumber).Inc()

	if _, loaded := t.seen.LoadOrStore(serialNumber, struct{}{}); !loaded {
		t.notifier.DeviceOnline(ctx, serialNumber)
	}
	return d, nil
}

// Online reports whether a device's last heartbeat is within the liveness
// threshold. A device that never checked in is offline.
func (t *Tracker) Online(d *models.Device) bool {
	if d.LastHeartbeat == nil {
		return false
	}
	return t.now().Sub(*d.LastHeartbeat) <= t.threshold
}

// Statuses builds the operator device overview with liveness and queue depth
// per terminal.
func (t *Tracker) Statuses(ctx context.Context) ([]dto.DeviceStatus, error) {
	devices, err := t.store.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("device statuses: %w", err)
	}

	statuses := make([]dto.DeviceStatus, 0, len(devices))
	online := 0
	for i := range devices {
		d := &devices[i]

		count, err := t.pending.PendingCount(ctx, d.SerialNumber)
		if err != nil {
			return nil, fmt.Errorf("pending count for %s: %w", d.SerialNumber, err)
		}

		st := dto.DeviceStatus{
			ID:              d.ID,
			SerialNumber:    d.SerialNumber,
			Name:            d.Name,
			Location:        d.Location,
			Online:          t.Online(d),
			PendingCommands: count,
		}
		if d.LastHeartbeat != nil {
			st.LastHeartbeat = d.LastHeartbeat.UTC().Format(time.RFC3339)
		}
		if st.Online {
			online++
		}
		statuses = append(statuses, st)
	}
	observability.DevicesOnline.Set(float64(online))
	return statuses, nil
}

// Known reports whether a serial number has ever contacted the server.
func (t *Tracker) Known(ctx context.Context, serialNumber string) (bool, error) {
	d, err := t.store.DeviceBySerial(ctx, serialNumber)
	if err != nil {
		return false, err
	}
	return d != nil, nil
}
