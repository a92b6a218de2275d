// Package attendance reconciles raw punch events into attendance sessions.
//
// The state machine per subject has two states: no open session, or exactly
// one session with status on_premises. A punch either opens a session, closes
// the open one (same facility-local date), or force-closes a stale one from a
// previous date and immediately opens a new one at the same timestamp, so the
// one-open-session invariant holds across midnight rollovers.
//
// Punches are applied in receipt order, not timestamp order. A late-arriving
// punch from an earlier moment can therefore close a session with an exit
// time before its entry; that mirrors the deployed terminals' batching
// behavior and is deliberately not reordered here.
package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/gatehouse/internal/models"
	"github.com/your-org/gatehouse/internal/observability"
	"github.com/your-org/gatehouse/internal/protocol"
	"github.com/your-org/gatehouse/internal/storage"
	"github.com/your-org/gatehouse/pkg/dto"
)

// Store is the persistence the engine needs. *storage.PostgresStore satisfies it.
type Store interface {
	SubjectByBiometricID(ctx context.Context, biometricID string) (*models.Subject, error)
	InsertRawPunch(ctx context.Context, p *models.RawPunch) error
	MarkPunchProcessed(ctx context.Context, id uuid.UUID) error
	BeginSubjectTx(ctx context.Context, subjectID uuid.UUID) (storage.SessionTx, error)
}

// Notifier receives fire-and-forget UI notifications. *queue.Producer
// satisfies it.
type Notifier interface {
	CheckIn(ctx context.Context, ev dto.CheckEvent)
	CheckOut(ctx context.Context, ev dto.CheckEvent)
	Change(ctx context.Context)
}

type Engine struct {
	store    Store
	notifier Notifier
	loc      *time.Location
}

func NewEngine(store Store, notifier Notifier, loc *time.Location) *Engine {
	return &Engine{store: store, notifier: notifier, loc: loc}
}

// ProcessBatch reconciles an ATTLOG body one punch at a time, in receipt
// order. Order matters for a single subject; across subjects it is
// irrelevant. Per-punch failures are logged and skipped so one bad event
// never drops the rest of the batch.
func (e *Engine) ProcessBatch(ctx context.Context, deviceSN, body string) int {
	entries := protocol.ParseAttLog(body, e.loc)

	processed := 0
	for _, entry := range entries {
		if err := e.ProcessPunch(ctx, deviceSN, entry); err != nil {
			slog.Error("process punch", "device_sn", deviceSN, "pin", entry.PIN, "error", err)
			continue
		}
		processed++
	}

	if processed > 0 {
		e.notifier.Change(ctx)
	}
	return processed
}

// ProcessPunch records the punch in the audit trail and applies the session
// transition it implies.
func (e *Engine) ProcessPunch(ctx context.Context, deviceSN string, entry protocol.AttLogEntry) error {
	punch := &models.RawPunch{
		DeviceSN:  deviceSN,
		PIN:       entry.PIN,
		PunchTime: entry.Timestamp,
		Status:    entry.Status,
		Verify:    entry.Verify,
		RawLine:   entry.RawLine,
	}
	if err := e.store.InsertRawPunch(ctx, punch); err != nil {
		return err
	}

	subject, err := e.store.SubjectByBiometricID(ctx, entry.PIN)
	if err != nil {
		return err
	}
	if subject == nil {
		// Unregistered cards and device debug tags punch too; the raw record
		// is the only trace they leave.
		observability.PunchesUnmatched.WithLabelValues(deviceSN).Inc()
		return e.store.MarkPunchProcessed(ctx, punch.ID)
	}

	if err := e.reconcile(ctx, subject, entry); err != nil {
		return err
	}

	observability.PunchesProcessed.WithLabelValues(deviceSN).Inc()
	return e.store.MarkPunchProcessed(ctx, punch.ID)
}

func (e *Engine) reconcile(ctx context.Context, subject *models.Subject, entry protocol.AttLogEntry) error {
	tx, err := e.store.BeginSubjectTx(ctx, subject.ID)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	open, err := tx.OpenSession(ctx, subject.ID)
	if err != nil {
		return err
	}

	punchDate := protocol.DateString(entry.Timestamp, e.loc)
	method := protocol.VerifyMethod(entry.Verify)

	var checkedOut, checkedIn bool
	switch {
	case open == nil:
		if err := e.openSession(ctx, tx, subject.ID, entry.Timestamp, punchDate, method); err != nil {
			return err
		}
		checkedIn = true

	case open.Date == punchDate:
		if err := tx.CloseSession(ctx, open.ID, entry.Timestamp); err != nil {
			return err
		}
		checkedOut = true

	default:
		// The subject never punched out and a new day's punch arrived:
		// force-close the stale session at the new punch's timestamp, then
		// reopen at the same instant.
		if err := tx.CloseSession(ctx, open.ID, entry.Timestamp); err != nil {
			return err
		}
		if err := e.openSession(ctx, tx, subject.ID, entry.Timestamp, punchDate, method); err != nil {
			return err
		}
		checkedOut = true
		checkedIn = true
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reconciliation: %w", err)
	}

	ev := dto.CheckEvent{
		SubjectID:    subject.ID,
		SubjectName:  subject.Name,
		VerifyMethod: method,
		Timestamp:    entry.Timestamp.UTC().Format(time.RFC3339),
	}
	if subject.PhotoKey != "" {
		ev.PhotoURL = "/v1/photos/" + subject.BiometricID
	}

	if checkedOut {
		observability.CheckEvents.WithLabelValues("out").Inc()
		e.notifier.CheckOut(ctx, ev)
	}
	if checkedIn {
		observability.CheckEvents.WithLabelValues("in").Inc()
		e.notifier.CheckIn(ctx, ev)
	}
	return nil
}

func (e *Engine) openSession(ctx context.Context, tx storage.SessionTx, subjectID uuid.UUID, at time.Time, date, method string) error {
	return tx.CreateSession(ctx, &models.AttendanceSession{
		SubjectID:    subjectID,
		EntryTime:    at,
		Status:       models.OnPremises,
		Date:         date,
		VerifyMethod: method,
	})
}
