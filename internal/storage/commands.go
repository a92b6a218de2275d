package storage

import (
	"context"
	"fmt"

	"github.com/your-org/gatehouse/internal/models"
)

const commandColumns = `id, device_sn, command_string, status, created_at, updated_at`

func scanCommand(row interface{ Scan(...any) error }) (*models.DeviceCommand, error) {
	cmd := &models.DeviceCommand{}
	err := row.Scan(&cmd.ID, &cmd.DeviceSN, &cmd.CommandString, &cmd.Status, &cmd.CreatedAt, &cmd.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// InsertCommand appends a PENDING command. The ID comes from the table's
// identity sequence: small, globally increasing integers shared by all
// devices, which is what the terminals have always seen.
func (s *PostgresStore) InsertCommand(ctx context.Context, deviceSN, commandString string) (*models.DeviceCommand, error) {
	cmd, err := scanCommand(s.pool.QueryRow(ctx,
		`INSERT INTO device_commands (device_sn, command_string, status)
		 VALUES ($1, $2, $3) RETURNING `+commandColumns,
		deviceSN, commandString, models.CommandPending))
	if err != nil {
		return nil, fmt.Errorf("insert command: %w", err)
	}
	return cmd, nil
}

// DequeuePendingCommand atomically claims the oldest PENDING command for a
// device, marking it SENT. Returns nil when the device's queue is empty.
// SKIP LOCKED keeps two concurrent polls from claiming the same command.
func (s *PostgresStore) DequeuePendingCommand(ctx context.Context, deviceSN string) (*models.DeviceCommand, error) {
	cmd, err := scanCommand(s.pool.QueryRow(ctx,
		`UPDATE device_commands SET status = $1, updated_at = now()
		 WHERE id = (
		   SELECT id FROM device_commands
		   WHERE device_sn = $2 AND status = $3
		   ORDER BY id
		   LIMIT 1
		   FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+commandColumns,
		models.CommandSent, deviceSN, models.CommandPending))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue command: %w", err)
	}
	return cmd, nil
}

// SetCommandStatus records a result callback, returning the command so the
// caller can inspect what was acknowledged. Only SENT commands transition.
func (s *PostgresStore) SetCommandStatus(ctx context.Context, id int64, status models.CommandStatus) (*models.DeviceCommand, error) {
	cmd, err := scanCommand(s.pool.QueryRow(ctx,
		`UPDATE device_commands SET status = $1, updated_at = now()
		 WHERE id = $2 AND status = $3
		 RETURNING `+commandColumns,
		status, id, models.CommandSent))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("set command status: %w", err)
	}
	return cmd, nil
}

// PendingCommandCount is the operator-visible backlog for a device; a number
// that never drains is the signal for a command stuck in SENT.
func (s *PostgresStore) PendingCommandCount(ctx context.Context, deviceSN string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM device_commands WHERE device_sn = $1 AND status = $2`,
		deviceSN, models.CommandPending,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pending command count: %w", err)
	}
	return count, nil
}
