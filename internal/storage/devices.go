package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/gatehouse/internal/models"
)

// UpsertDeviceHeartbeat creates the device on first contact and stamps its
// last heartbeat. Devices are never hard-deleted.
func (s *PostgresStore) UpsertDeviceHeartbeat(ctx context.Context, serialNumber, defaultName string, at time.Time) (*models.Device, error) {
	d := &models.Device{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO devices (id, serial_number, name, last_heartbeat)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (serial_number)
		 DO UPDATE SET last_heartbeat = EXCLUDED.last_heartbeat, updated_at = now()
		 RETURNING id, serial_number, name, location, last_heartbeat, created_at, updated_at`,
		uuid.New(), serialNumber, defaultName, at,
	).Scan(&d.ID, &d.SerialNumber, &d.Name, &d.Location, &d.LastHeartbeat, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert device heartbeat: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, serial_number, name, location, last_heartbeat, created_at, updated_at
		 FROM devices ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.SerialNumber, &d.Name, &d.Location, &d.LastHeartbeat, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (s *PostgresStore) DeviceBySerial(ctx context.Context, serialNumber string) (*models.Device, error) {
	d := &models.Device{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, serial_number, name, location, last_heartbeat, created_at, updated_at
		 FROM devices WHERE serial_number = $1`, serialNumber,
	).Scan(&d.ID, &d.SerialNumber, &d.Name, &d.Location, &d.LastHeartbeat, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}
