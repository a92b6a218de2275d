package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/your-org/gatehouse/internal/models"
)

// UpsertTemplate stores a biometric template keyed by (subject, type, fid).
// Re-sent templates update in place instead of duplicating.
func (s *PostgresStore) UpsertTemplate(ctx context.Context, t *models.BioTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO bio_templates (id, subject_id, template_type, template_data, fid, template_no)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (subject_id, template_type, fid)
		 DO UPDATE SET template_data = EXCLUDED.template_data,
		               template_no = EXCLUDED.template_no,
		               updated_at = now()
		 RETURNING id, created_at, updated_at`,
		t.ID, t.SubjectID, t.TemplateType, t.TemplateData, t.FID, t.TemplateNo,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

func (s *PostgresStore) TemplatesBySubject(ctx context.Context, subjectID uuid.UUID) ([]models.BioTemplate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, subject_id, template_type, template_data, fid, template_no, created_at, updated_at
		 FROM bio_templates WHERE subject_id = $1 ORDER BY template_type, fid`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("templates by subject: %w", err)
	}
	defer rows.Close()

	var templates []models.BioTemplate
	for rows.Next() {
		var t models.BioTemplate
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.TemplateType, &t.TemplateData, &t.FID, &t.TemplateNo, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}
