package dto

import "github.com/google/uuid"

// Event types carried on the bus and over the websocket feed.
const (
	EventChange           = "change"
	EventCheckIn          = "checkin"
	EventCheckOut         = "checkout"
	EventEnrollment       = "enrollment"
	EventEnrollmentFailed = "enrollment_failed"
	EventDeviceOnline     = "device_online"
)

// DeviceOnlineEvent announces first contact from a terminal since server
// start.
type DeviceOnlineEvent struct {
	SerialNumber string `json:"serial_number"`
}

// CheckEvent announces a check-in or check-out transition.
type CheckEvent struct {
	SubjectID    uuid.UUID `json:"subject_id"`
	SubjectName  string    `json:"subject_name"`
	VerifyMethod string    `json:"verify_method,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	Timestamp    string    `json:"timestamp"`
}

// EnrollmentEvent announces a successfully enrolled method for a subject.
type EnrollmentEvent struct {
	SubjectID uuid.UUID `json:"subject_id"`
	Method    string    `json:"method"`
}

// EnrollmentFailedEvent carries the device's return code so the UI can stop
// waiting and surface the error. There is no automatic retry.
type EnrollmentFailedEvent struct {
	SubjectID  uuid.UUID `json:"subject_id"`
	ReturnCode string    `json:"return_code"`
}

// BusEvent is the envelope published to the event stream and forwarded to
// websocket clients.
type BusEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// DeviceStatus is one row of the operator device overview.
type DeviceStatus struct {
	ID              uuid.UUID `json:"id"`
	SerialNumber    string    `json:"serial_number"`
	Name            string    `json:"name"`
	Location        string    `json:"location,omitempty"`
	Online          bool      `json:"online"`
	LastHeartbeat   string    `json:"last_heartbeat,omitempty"`
	PendingCommands int       `json:"pending_commands"`
}
