package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/gatehouse/internal/commands"
	"github.com/your-org/gatehouse/internal/devices"
	"github.com/your-org/gatehouse/internal/enroll"
	"github.com/your-org/gatehouse/internal/protocol"
	"github.com/your-org/gatehouse/pkg/dto"
)

type DeviceHandler struct {
	tracker      *devices.Tracker
	orchestrator *enroll.Orchestrator
	queue        *commands.Queue
}

func NewDeviceHandler(tracker *devices.Tracker, orchestrator *enroll.Orchestrator, queue *commands.Queue) *DeviceHandler {
	return &DeviceHandler{tracker: tracker, orchestrator: orchestrator, queue: queue}
}

// Status lists every known terminal with derived liveness and queue depth.
func (h *DeviceHandler) Status(c *gin.Context) {
	statuses, err := h.tracker.Statuses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.DeviceStatusList{Devices: statuses, Total: len(statuses)})
}

// Restore queues a full replay of users and templates to a factory-reset
// terminal. The terminal drains the queue one command per poll.
func (h *DeviceHandler) Restore(c *gin.Context) {
	var req dto.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	known, err := h.tracker.Known(ctx, req.DeviceSN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	n, err := h.orchestrator.RestoreDevice(ctx, req.DeviceSN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, dto.QueuedResponse{CommandsQueued: n})
}

// Command queues a single maintenance command for a terminal.
func (h *DeviceHandler) Command(c *gin.Context) {
	var req dto.DeviceCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cmd string
	switch req.Action {
	case "reboot":
		cmd = protocol.RebootCommand
	case "clear_log":
		cmd = protocol.ClearLogCommand
	case "clear_data":
		cmd = protocol.ClearDataCommand
	case "info":
		cmd = protocol.InfoCommand
	case "reload_options":
		cmd = protocol.ReloadOptionsCommand
	case "delete_user":
		if req.PIN == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delete_user requires pin"})
			return
		}
		cmd = protocol.DeleteUserCommand(req.PIN)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	ctx := c.Request.Context()

	known, err := h.tracker.Known(ctx, req.DeviceSN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	id, err := h.queue.Enqueue(ctx, req.DeviceSN, cmd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, dto.DeviceCommandResponse{CommandID: id, Action: req.Action})
}
