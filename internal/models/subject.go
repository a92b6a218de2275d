package models

import (
	"time"

	"github.com/google/uuid"
)

// Subject is a person tracked for attendance: employee, visitor, contractor.
// BiometricID is the PIN the terminals key the person by; a subject without
// one cannot be matched to device punches.
type Subject struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	BiometricID     string    `json:"biometric_id,omitempty" db:"biometric_id"`
	CardNo          string    `json:"card_no,omitempty" db:"card_no"`
	PhotoKey        string    `json:"photo_key,omitempty" db:"photo_key"`
	EnrolledMethods []string  `json:"enrolled_methods" db:"-"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// BioTemplate is an opaque biometric template payload owned by a subject.
// Unique per (subject, template type, fid); re-sent templates update in place.
type BioTemplate struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SubjectID    uuid.UUID `json:"subject_id" db:"subject_id"`
	TemplateType string    `json:"template_type" db:"template_type"` // BIODATA, FACE, FINGERTMP
	TemplateData string    `json:"-" db:"template_data"`
	FID          string    `json:"fid" db:"fid"`
	TemplateNo   string    `json:"template_no" db:"template_no"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
