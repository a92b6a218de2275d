package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/your-org/gatehouse/internal/models"
)

const subjectColumns = `id, name, COALESCE(biometric_id, ''), COALESCE(card_no, ''), COALESCE(photo_key, ''), created_at, updated_at`

func scanSubject(row interface{ Scan(...any) error }) (*models.Subject, error) {
	sub := &models.Subject{}
	err := row.Scan(&sub.ID, &sub.Name, &sub.BiometricID, &sub.CardNo, &sub.PhotoKey, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// SubjectByBiometricID resolves a terminal PIN to the subject it belongs to.
// Returns nil when the PIN is unknown; unmatched hardware PINs are routine.
func (s *PostgresStore) SubjectByBiometricID(ctx context.Context, biometricID string) (*models.Subject, error) {
	sub, err := scanSubject(s.pool.QueryRow(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE biometric_id = $1`, biometricID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("subject by biometric id: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) SubjectByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	sub, err := scanSubject(s.pool.QueryRow(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("subject by id: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) UpdateSubjectCard(ctx context.Context, id uuid.UUID, cardNo string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE subjects SET card_no = $1, updated_at = now() WHERE id = $2`, cardNo, id)
	if err != nil {
		return fmt.Errorf("update subject card: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateSubjectPhotoKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE subjects SET photo_key = $1, updated_at = now() WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("update subject photo: %w", err)
	}
	return nil
}

// AddEnrolledMethod records that a method is enrolled for a subject. Returns
// true when the method was newly added, false when it was already present.
func (s *PostgresStore) AddEnrolledMethod(ctx context.Context, id uuid.UUID, method string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO subject_methods (subject_id, method) VALUES ($1, $2)
		 ON CONFLICT (subject_id, method) DO NOTHING`, id, method)
	if err != nil {
		return false, fmt.Errorf("add enrolled method: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) EnrolledMethods(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT method FROM subject_methods WHERE subject_id = $1 ORDER BY method`, id)
	if err != nil {
		return nil, fmt.Errorf("enrolled methods: %w", err)
	}
	defer rows.Close()

	var methods []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan method: %w", err)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// ProvisionableSubjects lists subjects that can exist on a terminal, i.e.
// those carrying a biometric ID. Used to repopulate a device after a reset.
func (s *PostgresStore) ProvisionableSubjects(ctx context.Context) ([]models.Subject, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+subjectColumns+` FROM subjects
		 WHERE biometric_id IS NOT NULL AND biometric_id <> '' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("provisionable subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, *sub)
	}
	return subjects, nil
}
