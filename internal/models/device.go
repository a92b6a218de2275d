package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is a physical attendance terminal, keyed by serial number. Devices
// are created on first contact and never hard-deleted.
type Device struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SerialNumber  string     `json:"serial_number" db:"serial_number"`
	Name          string     `json:"name" db:"name"`
	Location      string     `json:"location,omitempty" db:"location"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty" db:"last_heartbeat"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type CommandStatus string

const (
	CommandPending CommandStatus = "PENDING"
	CommandSent    CommandStatus = "SENT"
	CommandSuccess CommandStatus = "SUCCESS"
	CommandFailed  CommandStatus = "FAILED"
)

// DeviceCommand is one outbound command in a device's FIFO. IDs come from a
// global identity sequence, so they are small sequential integers the way the
// terminals expect, and globally ordered across devices.
type DeviceCommand struct {
	ID            int64         `json:"id" db:"id"`
	DeviceSN      string        `json:"device_sn" db:"device_sn"`
	CommandString string        `json:"command_string" db:"command_string"`
	Status        CommandStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}
