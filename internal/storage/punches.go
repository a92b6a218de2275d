package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/your-org/gatehouse/internal/models"
)

// InsertRawPunch appends to the punch audit trail. Every received event is
// recorded, including punches for PINs the server has no subject for.
func (s *PostgresStore) InsertRawPunch(ctx context.Context, p *models.RawPunch) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO raw_punches (id, device_sn, pin, punch_time, status, verify, raw_line, processed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`,
		p.ID, p.DeviceSN, p.PIN, p.PunchTime, p.Status, p.Verify, p.RawLine, p.Processed,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert raw punch: %w", err)
	}
	return nil
}

// MarkPunchProcessed flips the write-once processed flag.
func (s *PostgresStore) MarkPunchProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE raw_punches SET processed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark punch processed: %w", err)
	}
	return nil
}
