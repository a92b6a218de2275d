package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/gatehouse/internal/attendance"
	"github.com/your-org/gatehouse/internal/commands"
	"github.com/your-org/gatehouse/internal/devices"
	"github.com/your-org/gatehouse/internal/enroll"
	"github.com/your-org/gatehouse/internal/protocol"
)

// IClockHandler is the terminal-facing protocol surface. Terminals are
// unauthenticated and intolerant of error statuses: every reply is 200
// text/plain, and anything the server can't process still gets acknowledged
// so the terminal doesn't wedge retrying.
type IClockHandler struct {
	tracker      *devices.Tracker
	engine       *attendance.Engine
	queue        *commands.Queue
	orchestrator *enroll.Orchestrator
	handshake    protocol.HandshakeOptions
}

func NewIClockHandler(tracker *devices.Tracker, engine *attendance.Engine, queue *commands.Queue, orchestrator *enroll.Orchestrator, handshake protocol.HandshakeOptions) *IClockHandler {
	return &IClockHandler{tracker: tracker, engine: engine, queue: queue, orchestrator: orchestrator, handshake: handshake}
}

// deviceReply writes a terminal response. The Server header and explicit
// Content-Length mimic the vendor's own ADMS server; some firmware checks
// them.
func deviceReply(c *gin.Context, body string) {
	c.Header("Server", "ZK ADMS")
	c.Header("Connection", "close")
	c.Header("Content-Length", strconv.Itoa(len(body)))
	c.Data(http.StatusOK, "text/plain", []byte(body))
}

// Handshake answers the terminal's initial GET /iclock/cdata with the option
// block that configures push behavior. Also serves as a heartbeat.
func (h *IClockHandler) Handshake(c *gin.Context) {
	sn := c.Query("SN")
	if sn == "" {
		deviceReply(c, protocol.OKResponse)
		return
	}

	// Heartbeat failures are deliberately not surfaced: the terminal retries
	// the handshake on its own schedule and needs the options to start pushing.
	_, _ = h.tracker.RecordHeartbeat(c.Request.Context(), sn)

	// Registry-check probe: no options requested, just "are you there".
	if c.Query("options") == "" && c.Query("c") == "registry" {
		deviceReply(c, protocol.OKResponse)
		return
	}

	deviceReply(c, h.handshake.Build(sn))
}

// DataPush dispatches POST /iclock/cdata by table. Unknown tables are
// acknowledged and dropped.
func (h *IClockHandler) DataPush(c *gin.Context) {
	ctx := c.Request.Context()
	sn := c.Query("SN")
	if sn == "" {
		deviceReply(c, protocol.OKResponse)
		return
	}

	if _, err := h.tracker.RecordHeartbeat(ctx, sn); err != nil {
		deviceReply(c, protocol.OKResponse)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		deviceReply(c, protocol.OKResponse)
		return
	}
	body := string(raw)

	table, ok := protocol.ParseTable(c.Query("table"))
	if !ok {
		deviceReply(c, protocol.OKResponse)
		return
	}

	switch table {
	case protocol.TableAttLog:
		h.engine.ProcessBatch(ctx, sn, body)

	case protocol.TableOperLog:
		h.handleOperLog(c, sn, body)

	case protocol.TableAttPhoto:
		pin := firstNonEmpty(c.Query("PIN"), c.Query("pin"))
		if pin != "" {
			if err := h.orchestrator.IngestPhoto(ctx, pin, raw); err != nil {
				slog.Error("ingest attphoto", "device_sn", sn, "pin", pin, "error", err)
			}
		}

	case protocol.TableBioData, protocol.TableFace, protocol.TableFingerTmp:
		pin := firstNonEmpty(c.Query("PIN"), c.Query("pin"))
		if err := h.orchestrator.IngestTemplate(ctx, table, pin, body); err != nil {
			slog.Error("ingest template", "device_sn", sn, "table", table, "error", err)
		}
	}

	deviceReply(c, protocol.OKResponse)
}

// handleOperLog processes an OPERLOG push: inline enrollment photos first,
// then enrollment-completion lines. One body can carry both, so the photo
// match never skips the line scan.
func (h *IClockHandler) handleOperLog(c *gin.Context, sn, body string) {
	ctx := c.Request.Context()

	if _, err := h.orchestrator.IngestBioPhoto(ctx, body); err != nil {
		slog.Error("ingest biophoto", "device_sn", sn, "error", err)
	}

	for _, entry := range protocol.ParseOperLog(body) {
		if entry.EnrollMethod == "" {
			continue
		}
		if err := h.orchestrator.IngestOperLogEnrollment(ctx, sn, entry); err != nil {
			slog.Error("ingest operlog enrollment", "device_sn", sn, "pin", entry.PIN, "error", err)
		}
	}
}

// CommandPoll answers GET /iclock/getrequest: at most one queued command per
// poll, or a bare OK when the queue is empty. Doubles as the heartbeat.
func (h *IClockHandler) CommandPoll(c *gin.Context) {
	ctx := c.Request.Context()
	sn := c.Query("SN")
	if sn == "" {
		deviceReply(c, protocol.OKResponse)
		return
	}

	if _, err := h.tracker.RecordHeartbeat(ctx, sn); err != nil {
		deviceReply(c, protocol.OKResponse)
		return
	}

	cmd, err := h.queue.DequeueNext(ctx, sn)
	if err != nil || cmd == nil {
		deviceReply(c, protocol.OKResponse)
		return
	}

	deviceReply(c, protocol.FormatCommand(cmd.ID, cmd.CommandString))
}

// CommandResult handles POST /iclock/devicecmd, the terminal's report on a
// previously dispatched command. One request may carry several results.
func (h *IClockHandler) CommandResult(c *gin.Context) {
	ctx := c.Request.Context()

	raw, err := c.GetRawData()
	if err != nil {
		deviceReply(c, protocol.OKResponse)
		return
	}

	if sn := c.Query("SN"); sn != "" {
		_, _ = h.tracker.RecordHeartbeat(ctx, sn)
	}

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		values, err := url.ParseQuery(line)
		if err != nil {
			continue
		}
		id, ok := protocol.ParseResultID(values.Get("ID"))
		if !ok {
			continue
		}
		if err := h.orchestrator.HandleCommandResult(ctx, id, values.Get("Return")); err != nil {
			slog.Error("handle command result", "command_id", id, "error", err)
		}
	}

	deviceReply(c, protocol.OKResponse)
}

// Registry handles POST /iclock/registry. Newer firmware registers before
// handshaking; the reply is the same option block so either entry point
// configures the terminal.
func (h *IClockHandler) Registry(c *gin.Context) {
	sn := c.Query("SN")
	if sn == "" {
		deviceReply(c, protocol.OKResponse)
		return
	}
	_, _ = h.tracker.RecordHeartbeat(c.Request.Context(), sn)
	deviceReply(c, h.handshake.Build(sn))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
