package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/your-org/gatehouse/internal/models"
)

// SessionTx is a transaction serialized per subject. Two punches (or a punch
// racing an enrollment callback) for the same subject never interleave
// between reading the open session and writing the transition, even across
// horizontally scaled instances.
type SessionTx interface {
	OpenSession(ctx context.Context, subjectID uuid.UUID) (*models.AttendanceSession, error)
	CreateSession(ctx context.Context, session *models.AttendanceSession) error
	CloseSession(ctx context.Context, id uuid.UUID, exitTime time.Time) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BeginSubjectTx opens a transaction holding an advisory lock keyed on the
// subject. The lock is released on commit or rollback.
func (s *PostgresStore) BeginSubjectTx(ctx context.Context, subjectID uuid.UUID) (SessionTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin subject tx: %w", err)
	}
	// Open-session rows don't exist yet on check-in, so row locks can't
	// serialize concurrent check-ins; an advisory lock on the subject can.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, subjectID); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("lock subject: %w", err)
	}
	return &sessionTx{tx: tx}, nil
}

type sessionTx struct {
	tx pgx.Tx
}

const sessionColumns = `id, subject_id, entry_time, exit_time, status, date, COALESCE(verify_method, ''), COALESCE(purpose, ''), created_at`

// OpenSession returns the subject's session with status on_premises, or nil.
func (t *sessionTx) OpenSession(ctx context.Context, subjectID uuid.UUID) (*models.AttendanceSession, error) {
	sess := &models.AttendanceSession{}
	err := t.tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM attendance_sessions
		 WHERE subject_id = $1 AND status = $2`, subjectID, models.OnPremises,
	).Scan(&sess.ID, &sess.SubjectID, &sess.EntryTime, &sess.ExitTime, &sess.Status,
		&sess.Date, &sess.VerifyMethod, &sess.Purpose, &sess.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

func (t *sessionTx) CreateSession(ctx context.Context, sess *models.AttendanceSession) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	err := t.tx.QueryRow(ctx,
		`INSERT INTO attendance_sessions (id, subject_id, entry_time, status, date, verify_method, purpose)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		sess.ID, sess.SubjectID, sess.EntryTime, sess.Status, sess.Date, sess.VerifyMethod, sess.Purpose,
	).Scan(&sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// CloseSession stamps the exit time and flips the status. Closed sessions are
// never mutated again.
func (t *sessionTx) CloseSession(ctx context.Context, id uuid.UUID, exitTime time.Time) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE attendance_sessions SET exit_time = $1, status = $2
		 WHERE id = $3 AND status = $4`, exitTime, models.CheckedOut, id, models.OnPremises)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("close session: session %s not open", id)
	}
	return nil
}

func (t *sessionTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *sessionTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
