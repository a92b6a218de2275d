package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/gatehouse/internal/enroll"
	"github.com/your-org/gatehouse/pkg/dto"
)

type EnrollHandler struct {
	orchestrator *enroll.Orchestrator
}

func NewEnrollHandler(orchestrator *enroll.Orchestrator) *EnrollHandler {
	return &EnrollHandler{orchestrator: orchestrator}
}

// Begin starts an enrollment. Card assignment completes synchronously;
// finger and face queue a capture command on the target terminal and the
// outcome arrives on the event feed.
func (h *EnrollHandler) Begin(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	switch req.Method {
	case "card":
		if req.CardNo == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "card_no is required for card enrollment"})
			return
		}
		if err := h.orchestrator.EnrollCard(ctx, req.SubjectID, req.CardNo); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.EnrollResponse{Method: "card"})

	case "finger", "face":
		if req.DeviceSN == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "device_sn is required for biometric enrollment"})
			return
		}
		id, err := h.orchestrator.Begin(ctx, req.SubjectID, req.Method, req.DeviceSN)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, dto.EnrollResponse{CommandID: id, Method: req.Method})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "method must be finger, face, or card"})
	}
}

// Sync pushes a subject's current user record to every terminal.
func (h *EnrollHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := h.orchestrator.SyncSubject(c.Request.Context(), req.SubjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.QueuedResponse{CommandsQueued: n})
}
