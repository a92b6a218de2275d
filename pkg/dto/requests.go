package dto

import "github.com/google/uuid"

// EnrollRequest starts an enrollment. Finger and face need a target terminal
// the person will walk to; card needs the card number and fans out to every
// terminal.
type EnrollRequest struct {
	SubjectID uuid.UUID `json:"subject_id" binding:"required"`
	Method    string    `json:"method" binding:"required"`
	CardNo    string    `json:"card_no,omitempty"`
	DeviceSN  string    `json:"device_sn,omitempty"`
}

// EnrollResponse reports what the enrollment request queued. CommandID is set
// for capture methods; the result arrives later on the event feed.
type EnrollResponse struct {
	CommandID      int64  `json:"command_id,omitempty"`
	Method         string `json:"method"`
	CommandsQueued int    `json:"commands_queued,omitempty"`
}

// SyncRequest pushes a subject's user record to every terminal.
type SyncRequest struct {
	SubjectID uuid.UUID `json:"subject_id" binding:"required"`
}

// RestoreRequest replays all provisionable subjects and their templates to a
// factory-reset terminal.
type RestoreRequest struct {
	DeviceSN string `json:"device_sn" binding:"required"`
}

// DeviceCommandRequest queues a maintenance command for one terminal. Action
// is one of reboot, clear_log, clear_data, info, reload_options, delete_user;
// delete_user additionally needs the PIN to remove.
type DeviceCommandRequest struct {
	DeviceSN string `json:"device_sn" binding:"required"`
	Action   string `json:"action" binding:"required"`
	PIN      string `json:"pin,omitempty"`
}

// DeviceCommandResponse reports the queued command's ID so the operator can
// correlate the result on the event feed.
type DeviceCommandResponse struct {
	CommandID int64  `json:"command_id"`
	Action    string `json:"action"`
}

// QueuedResponse reports how many commands an operation put on the wire.
type QueuedResponse struct {
	CommandsQueued int `json:"commands_queued"`
}

// DeviceStatusList is the operator device overview.
type DeviceStatusList struct {
	Devices []DeviceStatus `json:"devices"`
	Total   int            `json:"total"`
}
