package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/gatehouse/internal/attendance"
	"github.com/your-org/gatehouse/internal/commands"
	"github.com/your-org/gatehouse/internal/devices"
	"github.com/your-org/gatehouse/internal/enroll"
	"github.com/your-org/gatehouse/internal/models"
	"github.com/your-org/gatehouse/internal/protocol"
	"github.com/your-org/gatehouse/internal/storage"
	"github.com/your-org/gatehouse/pkg/dto"
)

// memStore backs every service with one in-memory state so handler tests
// exercise the full path from HTTP request to session/command effects.
type memStore struct {
	subjects  []*models.Subject
	punches   []*models.RawPunch
	sessions  []*models.AttendanceSession
	devices   map[string]*models.Device
	commands  []*models.DeviceCommand
	templates []*models.BioTemplate
	nextCmdID int64
}

func newMemStore(subjects ...*models.Subject) *memStore {
	return &memStore{subjects: subjects, devices: make(map[string]*models.Device), nextCmdID: 1000}
}

func (m *memStore) SubjectByBiometricID(_ context.Context, pin string) (*models.Subject, error) {
	for _, s := range m.subjects {
		if s.BiometricID == pin {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) SubjectByID(_ context.Context, id uuid.UUID) (*models.Subject, error) {
	for _, s := range m.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateSubjectCard(_ context.Context, id uuid.UUID, cardNo string) error {
	for _, s := range m.subjects {
		if s.ID == id {
			s.CardNo = cardNo
		}
	}
	return nil
}

func (m *memStore) UpdateSubjectPhotoKey(_ context.Context, id uuid.UUID, key string) error {
	for _, s := range m.subjects {
		if s.ID == id {
			s.PhotoKey = key
		}
	}
	return nil
}

func (m *memStore) AddEnrolledMethod(_ context.Context, id uuid.UUID, method string) (bool, error) {
	for _, s := range m.subjects {
		if s.ID == id {
			for _, existing := range s.EnrolledMethods {
				if existing == method {
					return false, nil
				}
			}
			s.EnrolledMethods = append(s.EnrolledMethods, method)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpsertTemplate(_ context.Context, t *models.BioTemplate) error {
	for _, existing := range m.templates {
		if existing.SubjectID == t.SubjectID && existing.TemplateType == t.TemplateType && existing.FID == t.FID {
			existing.TemplateData = t.TemplateData
			return nil
		}
	}
	m.templates = append(m.templates, t)
	return nil
}

func (m *memStore) TemplatesBySubject(_ context.Context, subjectID uuid.UUID) ([]models.BioTemplate, error) {
	var out []models.BioTemplate
	for _, t := range m.templates {
		if t.SubjectID == subjectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memStore) ProvisionableSubjects(context.Context) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range m.subjects {
		if s.BiometricID != "" {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) InsertRawPunch(_ context.Context, p *models.RawPunch) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.punches = append(m.punches, p)
	return nil
}

func (m *memStore) MarkPunchProcessed(_ context.Context, id uuid.UUID) error {
	for _, p := range m.punches {
		if p.ID == id {
			p.Processed = true
		}
	}
	return nil
}

func (m *memStore) BeginSubjectTx(_ context.Context, _ uuid.UUID) (storage.SessionTx, error) {
	return &memTx{store: m}, nil
}

type memTx struct {
	store *memStore
}

func (t *memTx) OpenSession(_ context.Context, subjectID uuid.UUID) (*models.AttendanceSession, error) {
	for _, s := range t.store.sessions {
		if s.SubjectID == subjectID && s.Status == models.OnPremises {
			return s, nil
		}
	}
	return nil, nil
}

func (t *memTx) CreateSession(_ context.Context, s *models.AttendanceSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	t.store.sessions = append(t.store.sessions, s)
	return nil
}

func (t *memTx) CloseSession(_ context.Context, id uuid.UUID, exit time.Time) error {
	for _, s := range t.store.sessions {
		if s.ID == id && s.Status == models.OnPremises {
			e := exit
			s.ExitTime = &e
			s.Status = models.CheckedOut
		}
	}
	return nil
}

func (t *memTx) Commit(context.Context) error   { return nil }
func (t *memTx) Rollback(context.Context) error { return nil }

func (m *memStore) UpsertDeviceHeartbeat(_ context.Context, sn, defaultName string, at time.Time) (*models.Device, error) {
	d, ok := m.devices[sn]
	if !ok {
		d = &models.Device{ID: uuid.New(), SerialNumber: sn, Name: defaultName}
		m.devices[sn] = d
	}
	hb := at
	d.LastHeartbeat = &hb
	return d, nil
}

func (m *memStore) ListDevices(context.Context) ([]models.Device, error) {
	var out []models.Device
	for _, d := range m.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStore) DeviceBySerial(_ context.Context, sn string) (*models.Device, error) {
	return m.devices[sn], nil
}

func (m *memStore) InsertCommand(_ context.Context, deviceSN, commandString string) (*models.DeviceCommand, error) {
	cmd := &models.DeviceCommand{
		ID:            m.nextCmdID,
		DeviceSN:      deviceSN,
		CommandString: commandString,
		Status:        models.CommandPending,
	}
	m.nextCmdID++
	m.commands = append(m.commands, cmd)
	return cmd, nil
}

func (m *memStore) DequeuePendingCommand(_ context.Context, deviceSN string) (*models.DeviceCommand, error) {
	for _, cmd := range m.commands {
		if cmd.DeviceSN == deviceSN && cmd.Status == models.CommandPending {
			cmd.Status = models.CommandSent
			return cmd, nil
		}
	}
	return nil, nil
}

func (m *memStore) SetCommandStatus(_ context.Context, id int64, status models.CommandStatus) (*models.DeviceCommand, error) {
	for _, cmd := range m.commands {
		if cmd.ID == id && cmd.Status == models.CommandSent {
			cmd.Status = status
			return cmd, nil
		}
	}
	return nil, nil
}

func (m *memStore) PendingCommandCount(_ context.Context, deviceSN string) (int, error) {
	n := 0
	for _, cmd := range m.commands {
		if cmd.DeviceSN == deviceSN && cmd.Status == models.CommandPending {
			n++
		}
	}
	return n, nil
}

type memNotifier struct {
	checkIns    int
	checkOuts   int
	enrollments []dto.EnrollmentEvent
	failures    []dto.EnrollmentFailedEvent
}

func (n *memNotifier) Change(context.Context)                                   {}
func (n *memNotifier) CheckIn(context.Context, dto.CheckEvent)                  { n.checkIns++ }
func (n *memNotifier) CheckOut(context.Context, dto.CheckEvent)                 { n.checkOuts++ }
func (n *memNotifier) DeviceOnline(context.Context, string)                     {}
func (n *memNotifier) Enrollment(_ context.Context, ev dto.EnrollmentEvent)     { n.enrollments = append(n.enrollments, ev) }
func (n *memNotifier) EnrollmentFailed(_ context.Context, ev dto.EnrollmentFailedEvent) {
	n.failures = append(n.failures, ev)
}

type memPhotos struct {
	saved map[string][]byte
}

func (p *memPhotos) SavePersonPhoto(_ context.Context, pin string, data []byte) (string, error) {
	if p.saved == nil {
		p.saved = make(map[string][]byte)
	}
	p.saved[pin] = data
	return "people/user_" + pin + "_face.jpg", nil
}

type fixture struct {
	store    *memStore
	notifier *memNotifier
	router   *gin.Engine
}

func newFixture(subjects ...*models.Subject) *fixture {
	gin.SetMode(gin.TestMode)

	store := newMemStore(subjects...)
	notifier := &memNotifier{}
	q := commands.NewQueue(store)
	tracker := devices.NewTracker(store, q, notifier, 45*time.Second)
	engine := attendance.NewEngine(store, notifier, time.FixedZone("UTC+06:00", 6*3600))
	orchestrator := enroll.NewOrchestrator(store, &memPhotos{}, q, notifier)

	h := NewIClockHandler(tracker, engine, q, orchestrator, protocol.DefaultHandshakeOptions())
	r := gin.New()
	r.GET("/iclock/cdata", h.Handshake)
	r.POST("/iclock/cdata", h.DataPush)
	r.GET("/iclock/getrequest", h.CommandPoll)
	r.POST("/iclock/devicecmd", h.CommandResult)
	r.POST("/iclock/registry", h.Registry)

	return &fixture{store: store, notifier: notifier, router: r}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s %s: status %d", method, target, rec.Code)
	}
	return rec
}

func TestHandshakeRegistersDevice(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/iclock/cdata?SN=CMF1&options=all&pushver=3.0", "")

	body := rec.Body.String()
	if !strings.HasPrefix(body, "GET OPTION FROM: CMF1") {
		t.Errorf("handshake body starts %q", body[:min(len(body), 40)])
	}
	if rec.Header().Get("Server") != "ZK ADMS" {
		t.Errorf("Server header = %q", rec.Header().Get("Server"))
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cl := rec.Header().Get("Content-Length"); cl != strconv.Itoa(len(body)) {
		t.Errorf("Content-Length = %q, want %d", cl, len(body))
	}
	if _, ok := f.store.devices["CMF1"]; !ok {
		t.Error("handshake did not register device")
	}

	// Missing serial degrades to a bare ack.
	rec = f.do(t, http.MethodGet, "/iclock/cdata", "")
	if rec.Body.String() != "OK\r\n" {
		t.Errorf("no-SN handshake = %q, want OK", rec.Body.String())
	}

	// Registry-check probe gets OK, not the option block.
	rec = f.do(t, http.MethodGet, "/iclock/cdata?SN=CMF1&c=registry", "")
	if rec.Body.String() != "OK\r\n" {
		t.Errorf("registry check = %q, want OK", rec.Body.String())
	}
}

func TestAttlogPushCreatesSession(t *testing.T) {
	sub := &models.Subject{ID: uuid.New(), Name: "Karim", BiometricID: "101"}
	f := newFixture(sub)

	rec := f.do(t, http.MethodPost, "/iclock/cdata?SN=CMF1&table=ATTLOG",
		"101\t2026-03-02 09:00:00\t0\t1\n")
	if rec.Body.String() != "OK\r\n" {
		t.Errorf("ack = %q", rec.Body.String())
	}

	if len(f.store.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(f.store.sessions))
	}
	if f.store.sessions[0].Status != models.OnPremises {
		t.Error("session not open after check-in")
	}
	if f.notifier.checkIns != 1 {
		t.Errorf("check-in events = %d, want 1", f.notifier.checkIns)
	}
}

func TestUnknownTableIsAcked(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/iclock/cdata?SN=CMF1&table=WHATEVER", "junk")
	if rec.Body.String() != "OK\r\n" {
		t.Errorf("ack = %q", rec.Body.String())
	}
	if len(f.store.punches) != 0 {
		t.Error("unknown table produced punches")
	}
}

func TestEnrollmentRoundTripOverTheWire(t *testing.T) {
	sub := &models.Subject{ID: uuid.New(), Name: "Rahima", BiometricID: "204"}
	f := newFixture(sub)
	ctx := context.Background()

	// Operator side queues the capture; simulate via the store directly.
	q := commands.NewQueue(f.store)
	orch := enroll.NewOrchestrator(f.store, &memPhotos{}, q, f.notifier)
	id, err := orch.Begin(ctx, sub.ID, "finger", "CMF1")
	if err != nil {
		t.Fatal(err)
	}

	// Terminal polls and receives the capture command.
	rec := f.do(t, http.MethodGet, "/iclock/getrequest?SN=CMF1", "")
	body := rec.Body.String()
	if !strings.HasPrefix(body, "C:") || !strings.Contains(body, "ENROLL_FP PIN=204") {
		t.Fatalf("poll body = %q", body)
	}

	// Next poll is empty.
	rec = f.do(t, http.MethodGet, "/iclock/getrequest?SN=CMF1", "")
	if rec.Body.String() != "OK\r\n" {
		t.Errorf("empty poll = %q", rec.Body.String())
	}

	// Terminal reports success; server queues user provisioning.
	f.do(t, http.MethodPost, "/iclock/devicecmd?SN=CMF1",
		"ID="+itoa(id)+"&Return=0&CMD=DATA")

	rec = f.do(t, http.MethodGet, "/iclock/getrequest?SN=CMF1", "")
	if !strings.Contains(rec.Body.String(), "DATA UPDATE USERINFO PIN=204") {
		t.Errorf("follow-up poll = %q, want user provisioning", rec.Body.String())
	}
	if len(sub.EnrolledMethods) != 1 || sub.EnrolledMethods[0] != "finger" {
		t.Errorf("enrolled methods = %v", sub.EnrolledMethods)
	}
	if len(f.notifier.enrollments) != 1 {
		t.Errorf("enrollment events = %d, want 1", len(f.notifier.enrollments))
	}
}

func TestEnrollmentFailureReported(t *testing.T) {
	sub := &models.Subject{ID: uuid.New(), Name: "Rahima", BiometricID: "204"}
	f := newFixture(sub)
	ctx := context.Background()

	q := commands.NewQueue(f.store)
	orch := enroll.NewOrchestrator(f.store, &memPhotos{}, q, f.notifier)
	id, err := orch.Begin(ctx, sub.ID, "face", "CMF1")
	if err != nil {
		t.Fatal(err)
	}

	f.do(t, http.MethodGet, "/iclock/getrequest?SN=CMF1", "")
	f.do(t, http.MethodPost, "/iclock/devicecmd?SN=CMF1",
		"ID="+itoa(id)+"&Return=-1&CMD=DATA")

	if len(f.notifier.failures) != 1 || f.notifier.failures[0].ReturnCode != "-1" {
		t.Fatalf("failure events = %+v", f.notifier.failures)
	}
	if len(sub.EnrolledMethods) != 0 {
		t.Error("failed enrollment recorded a method")
	}

	// No follow-up commands were queued.
	rec := f.do(t, http.MethodGet, "/iclock/getrequest?SN=CMF1", "")
	if rec.Body.String() != "OK\r\n" {
		t.Errorf("poll after failure = %q", rec.Body.String())
	}
}

func TestOperLogPhotoAndEnrollmentInOneBody(t *testing.T) {
	sub := &models.Subject{ID: uuid.New(), Name: "Rahima", BiometricID: "204"}
	f := newFixture(sub)

	content := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	body := "BIOPHOTO PIN=204\tFileName=204.jpg\tSize=10\tContent=" + content + "\n" +
		"204\t2026-03-02 09:00:00\t0\t4\tEnrollFinger\n"

	rec := f.do(t, http.MethodPost, "/iclock/cdata?SN=CMF1&table=OPERLOG", body)
	if rec.Body.String() != "OK\r\n" {
		t.Errorf("ack = %q", rec.Body.String())
	}

	if sub.PhotoKey == "" {
		t.Error("inline photo was not ingested")
	}
	if len(sub.EnrolledMethods) != 1 || sub.EnrolledMethods[0] != "finger" {
		t.Errorf("enrolled methods = %v, want [finger]", sub.EnrolledMethods)
	}
	if len(f.notifier.enrollments) != 1 {
		t.Errorf("enrollment events = %d, want 1", len(f.notifier.enrollments))
	}
}

func TestTemplatePushStored(t *testing.T) {
	sub := &models.Subject{ID: uuid.New(), Name: "Rahima", BiometricID: "204"}
	f := newFixture(sub)

	f.do(t, http.MethodPost, "/iclock/cdata?SN=CMF1&table=BIODATA",
		"BIODATA Pin=204\tNo=0\tIndex=0\tValid=1\tTmp=abc123==")

	if len(f.store.templates) != 1 {
		t.Fatalf("templates = %d, want 1", len(f.store.templates))
	}
	if f.store.templates[0].SubjectID != sub.ID {
		t.Error("template attached to wrong subject")
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
