// Package enroll coordinates biometric enrollment across terminals. Finger
// and face capture is asynchronous: the capture command goes to one chosen
// terminal, the person enrolls there, and the device's result callback drives
// the follow-up (user provisioning, method bookkeeping, UI notification).
// Card assignment is synchronous because the card number is typed in by an
// operator, not captured on hardware.
package enroll

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/your-org/gatehouse/internal/models"
	"github.com/your-org/gatehouse/internal/protocol"
	"github.com/your-org/gatehouse/pkg/dto"
)

// Store is the persistence the orchestrator needs. *storage.PostgresStore
// satisfies it.
type Store interface {
	SubjectByID(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	SubjectByBiometricID(ctx context.Context, biometricID string) (*models.Subject, error)
	UpdateSubjectCard(ctx context.Context, id uuid.UUID, cardNo string) error
	UpdateSubjectPhotoKey(ctx context.Context, id uuid.UUID, key string) error
	AddEnrolledMethod(ctx context.Context, id uuid.UUID, method string) (bool, error)
	UpsertTemplate(ctx context.Context, t *models.BioTemplate) error
	TemplatesBySubject(ctx context.Context, subjectID uuid.UUID) ([]models.BioTemplate, error)
	ProvisionableSubjects(ctx context.Context) ([]models.Subject, error)
}

// PhotoStore persists enrollment photos. *storage.MinIOStore satisfies it.
type PhotoStore interface {
	SavePersonPhoto(ctx context.Context, pin string, data []byte) (string, error)
}

// CommandQueue is the outbound command path. *commands.Queue satisfies it.
type CommandQueue interface {
	Enqueue(ctx context.Context, deviceSN, commandString string) (int64, error)
	EnqueueBroadcast(ctx context.Context, commandString string) (int, error)
	RecordResult(ctx context.Context, id int64, succeeded bool) (*models.DeviceCommand, error)
}

// Notifier receives fire-and-forget UI notifications. *queue.Producer
// satisfies it.
type Notifier interface {
	Enrollment(ctx context.Context, ev dto.EnrollmentEvent)
	EnrollmentFailed(ctx context.Context, ev dto.EnrollmentFailedEvent)
	Change(ctx context.Context)
}

type Orchestrator struct {
	store    Store
	photos   PhotoStore
	queue    CommandQueue
	notifier Notifier
}

func NewOrchestrator(store Store, photos PhotoStore, queue CommandQueue, notifier Notifier) *Orchestrator {
	return &Orchestrator{store: store, photos: photos, queue: queue, notifier: notifier}
}

// Begin queues a biometric capture command on one target terminal. The person
// walks to that terminal and enrolls there; everything after this point is
// driven by the device's result callback.
func (o *Orchestrator) Begin(ctx context.Context, subjectID uuid.UUID, method, deviceSN string) (int64, error) {
	subject, err := o.store.SubjectByID(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	if subject == nil {
		return 0, fmt.Errorf("subject %s not found", subjectID)
	}
	if subject.BiometricID == "" {
		return 0, fmt.Errorf("subject %s has no biometric id", subjectID)
	}

	var cmd string
	switch method {
	case "finger":
		cmd = protocol.EnrollFingerCommand(subject.BiometricID)
	case "face":
		cmd = protocol.EnrollFaceCommand(subject.BiometricID)
	default:
		return 0, fmt.Errorf("unsupported enrollment method %q", method)
	}

	return o.queue.Enqueue(ctx, deviceSN, cmd)
}

// EnrollCard assigns a card number to a subject and pushes the updated user
// record to every terminal.
func (o *Orchestrator) EnrollCard(ctx context.Context, subjectID uuid.UUID, cardNo string) error {
	subject, err := o.store.SubjectByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject == nil {
		return fmt.Errorf("subject %s not found", subjectID)
	}
	if subject.BiometricID == "" {
		return fmt.Errorf("subject %s has no biometric id", subjectID)
	}

	if err := o.store.UpdateSubjectCard(ctx, subjectID, cardNo); err != nil {
		return err
	}
	if _, err := o.store.AddEnrolledMethod(ctx, subjectID, "card"); err != nil {
		return err
	}

	if _, err := o.queue.EnqueueBroadcast(ctx, protocol.SetUserCommand(subject.BiometricID, subject.Name, cardNo)); err != nil {
		return err
	}

	o.notifier.Enrollment(ctx, dto.EnrollmentEvent{SubjectID: subjectID, Method: "card"})
	o.notifier.Change(ctx)
	return nil
}

// HandleCommandResult resolves a devicecmd callback. For capture commands a
// zero return code triggers the enrollment follow-up: provision the user
// record on the reporting terminal, record the method, tell the UI. Nonzero
// codes surface as a failure event; the operator re-initiates, there is no
// automatic retry.
func (o *Orchestrator) HandleCommandResult(ctx context.Context, commandID int64, returnCode string) error {
	succeeded := returnCode == "0"

	cmd, err := o.queue.RecordResult(ctx, commandID, succeeded)
	if err != nil {
		return err
	}
	if cmd == nil {
		// Unknown ID or a command not awaiting a result. Terminals re-send
		// results after reboots; nothing to do.
		return nil
	}

	if !protocol.IsEnrollCommand(cmd.CommandString) {
		return nil
	}

	pin, ok := protocol.CommandPIN(cmd.CommandString)
	if !ok {
		slog.Warn("enroll command without PIN", "command_id", cmd.ID)
		return nil
	}
	subject, err := o.store.SubjectByBiometricID(ctx, pin)
	if err != nil {
		return err
	}
	if subject == nil {
		slog.Warn("enroll result for unknown pin", "pin", pin, "command_id", cmd.ID)
		return nil
	}

	if !succeeded {
		o.notifier.EnrollmentFailed(ctx, dto.EnrollmentFailedEvent{SubjectID: subject.ID, ReturnCode: returnCode})
		return nil
	}

	if _, err := o.queue.Enqueue(ctx, cmd.DeviceSN, protocol.SetUserCommand(pin, subject.Name, subject.CardNo)); err != nil {
		return err
	}

	method := protocol.EnrollMethodFromCommand(cmd.CommandString)
	if _, err := o.store.AddEnrolledMethod(ctx, subject.ID, method); err != nil {
		return err
	}

	o.notifier.Enrollment(ctx, dto.EnrollmentEvent{SubjectID: subject.ID, Method: method})
	o.notifier.Change(ctx)
	return nil
}

// IngestTemplate stores a template pushed by a terminal and records the
// enrollment method it confers. Templates for PINs the server doesn't know
// are dropped without error; terminals push everything they hold, including
// users enrolled before this server existed.
func (o *Orchestrator) IngestTemplate(ctx context.Context, table protocol.Table, queryPIN, body string) error {
	payload, ok := protocol.ParseTemplate(table, queryPIN, body)
	if !ok {
		slog.Debug("template push without pin", "table", table)
		return nil
	}

	subject, err := o.store.SubjectByBiometricID(ctx, payload.PIN)
	if err != nil {
		return err
	}
	if subject == nil {
		slog.Debug("template for unknown pin", "pin", payload.PIN, "table", table)
		return nil
	}

	if err := o.store.UpsertTemplate(ctx, &models.BioTemplate{
		SubjectID:    subject.ID,
		TemplateType: string(table),
		TemplateData: payload.Data,
		FID:          payload.FID,
		TemplateNo:   payload.TemplateNo,
	}); err != nil {
		return err
	}

	added, err := o.store.AddEnrolledMethod(ctx, subject.ID, payload.Method(table))
	if err != nil {
		return err
	}
	if added {
		o.notifier.Enrollment(ctx, dto.EnrollmentEvent{SubjectID: subject.ID, Method: payload.Method(table)})
		o.notifier.Change(ctx)
	}
	return nil
}

// IngestOperLogEnrollment records an enrollment completed directly on a
// terminal's own menu, reported via OPERLOG rather than a command result.
// Unknown PINs are dropped; the field-position heuristic in the parser can
// mistake other digit fields for a PIN and that must never error a push.
func (o *Orchestrator) IngestOperLogEnrollment(ctx context.Context, deviceSN string, entry protocol.OperLogEntry) error {
	if entry.EnrollMethod == "" {
		return nil
	}

	subject, err := o.store.SubjectByBiometricID(ctx, entry.PIN)
	if err != nil {
		return err
	}
	if subject == nil {
		slog.Debug("operlog enrollment for unknown pin", "pin", entry.PIN, "device_sn", deviceSN, "op", entry.Operation)
		return nil
	}

	added, err := o.store.AddEnrolledMethod(ctx, subject.ID, entry.EnrollMethod)
	if err != nil {
		return err
	}
	if added {
		o.notifier.Enrollment(ctx, dto.EnrollmentEvent{SubjectID: subject.ID, Method: entry.EnrollMethod})
		o.notifier.Change(ctx)
	}
	return nil
}

// IngestPhoto stores a pushed enrollment photo against the subject the PIN
// resolves to. Unknown PINs are dropped silently, same as templates.
func (o *Orchestrator) IngestPhoto(ctx context.Context, pin string, data []byte) error {
	subject, err := o.store.SubjectByBiometricID(ctx, pin)
	if err != nil {
		return err
	}
	if subject == nil {
		slog.Debug("photo for unknown pin", "pin", pin)
		return nil
	}

	key, err := o.photos.SavePersonPhoto(ctx, pin, data)
	if err != nil {
		return err
	}
	if err := o.store.UpdateSubjectPhotoKey(ctx, subject.ID, key); err != nil {
		return err
	}

	o.notifier.Change(ctx)
	return nil
}

// IngestBioPhoto handles the inline base64 photo variant some firmware embeds
// in OPERLOG pushes. Returns whether a photo was found at all.
func (o *Orchestrator) IngestBioPhoto(ctx context.Context, body string) (bool, error) {
	pin, content, ok := protocol.ExtractBioPhoto(body)
	if !ok {
		return false, nil
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return true, fmt.Errorf("decode biophoto for pin %s: %w", pin, err)
	}
	return true, o.IngestPhoto(ctx, pin, data)
}

// SyncSubject pushes a subject's current user record to every terminal.
func (o *Orchestrator) SyncSubject(ctx context.Context, subjectID uuid.UUID) (int, error) {
	subject, err := o.store.SubjectByID(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	if subject == nil {
		return 0, fmt.Errorf("subject %s not found", subjectID)
	}
	if subject.BiometricID == "" {
		return 0, fmt.Errorf("subject %s has no biometric id", subjectID)
	}

	return o.queue.EnqueueBroadcast(ctx, protocol.SetUserCommand(subject.BiometricID, subject.Name, subject.CardNo))
}

// RestoreDevice repopulates a factory-reset terminal: every provisionable
// subject's user record followed by their stored templates, in enqueue order
// so the user exists on the terminal before its templates arrive. Returns how
// many commands were queued.
func (o *Orchestrator) RestoreDevice(ctx context.Context, deviceSN string) (int, error) {
	subjects, err := o.store.ProvisionableSubjects(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for i := range subjects {
		sub := &subjects[i]

		if _, err := o.queue.Enqueue(ctx, deviceSN, protocol.SetUserCommand(sub.BiometricID, sub.Name, sub.CardNo)); err != nil {
			return queued, err
		}
		queued++

		templates, err := o.store.TemplatesBySubject(ctx, sub.ID)
		if err != nil {
			return queued, err
		}
		for _, t := range templates {
			if _, err := o.queue.Enqueue(ctx, deviceSN, protocol.UpdateTemplateCommand(t.TemplateType, t.TemplateData)); err != nil {
				return queued, err
			}
			queued++
		}
	}
	return queued, nil
}
