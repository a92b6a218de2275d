package storage

import (
	"context"
	"fmt"
)

// schema is applied on startup. Statements are idempotent; there is no
// versioned migration history, additive changes append here.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id              UUID PRIMARY KEY,
		serial_number   TEXT NOT NULL UNIQUE,
		name            TEXT NOT NULL,
		location        TEXT NOT NULL DEFAULT '',
		last_heartbeat  TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS subjects (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		biometric_id  TEXT UNIQUE,
		card_no       TEXT,
		photo_key     TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS subject_methods (
		subject_id  UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		method      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (subject_id, method)
	)`,

	`CREATE TABLE IF NOT EXISTS attendance_sessions (
		id             UUID PRIMARY KEY,
		subject_id     UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		entry_time     TIMESTAMPTZ NOT NULL,
		exit_time      TIMESTAMPTZ,
		status         TEXT NOT NULL,
		date           TEXT NOT NULL,
		verify_method  TEXT NOT NULL DEFAULT '',
		purpose        TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_subject_status
		ON attendance_sessions (subject_id) WHERE status = 'on_premises'`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_date ON attendance_sessions (date)`,

	`CREATE TABLE IF NOT EXISTS raw_punches (
		id          UUID PRIMARY KEY,
		device_sn   TEXT NOT NULL,
		pin         TEXT NOT NULL,
		punch_time  TIMESTAMPTZ NOT NULL,
		status      INT NOT NULL DEFAULT 0,
		verify      INT NOT NULL DEFAULT 0,
		raw_line    TEXT NOT NULL DEFAULT '',
		processed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_punches_pin ON raw_punches (pin)`,

	`CREATE TABLE IF NOT EXISTS device_commands (
		id              BIGINT GENERATED ALWAYS AS IDENTITY (START WITH 1000) PRIMARY KEY,
		device_sn       TEXT NOT NULL,
		command_string  TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'PENDING',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_commands_pending
		ON device_commands (device_sn, id) WHERE status = 'PENDING'`,

	`CREATE TABLE IF NOT EXISTS bio_templates (
		id             UUID PRIMARY KEY,
		subject_id     UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		template_type  TEXT NOT NULL,
		template_data  TEXT NOT NULL,
		fid            TEXT NOT NULL DEFAULT '0',
		template_no    TEXT NOT NULL DEFAULT '0',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (subject_id, template_type, fid)
	)`,
}

// EnsureSchema creates any missing tables and indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
