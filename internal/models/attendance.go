package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	OnPremises SessionStatus = "on_premises"
	CheckedOut SessionStatus = "checked_out"
)

// AttendanceSession is one open-to-close attendance interval for a subject.
// A nil ExitTime means the subject is on premises; at most one such session
// may exist per subject at any time.
type AttendanceSession struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	SubjectID    uuid.UUID     `json:"subject_id" db:"subject_id"`
	EntryTime    time.Time     `json:"entry_time" db:"entry_time"`
	ExitTime     *time.Time    `json:"exit_time,omitempty" db:"exit_time"`
	Status       SessionStatus `json:"status" db:"status"`
	Date         string        `json:"date" db:"date"` // facility-local YYYY-MM-DD of EntryTime
	VerifyMethod string        `json:"verify_method,omitempty" db:"verify_method"`
	Purpose      string        `json:"purpose,omitempty" db:"purpose"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// RawPunch is the immutable audit record of one received terminal event. The
// PIN is stored unresolved; punches for unknown PINs are retained too.
type RawPunch struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DeviceSN  string    `json:"device_sn" db:"device_sn"`
	PIN       string    `json:"pin" db:"pin"`
	PunchTime time.Time `json:"punch_time" db:"punch_time"`
	Status    int       `json:"status" db:"status"`
	Verify    int       `json:"verify" db:"verify"`
	RawLine   string    `json:"raw_line" db:"raw_line"`
	Processed bool      `json:"processed" db:"processed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
