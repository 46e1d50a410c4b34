package handler

import (
	"net/http"

	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BotHandler interface {
	ListBots(c *gin.Context)
	Heartbeat(c *gin.Context)
	ListTestRuns(c *gin.Context)
	RecordTestRun(c *gin.Context)
}

type botHandler struct {
	botRepo repository.BotRepository
	logger  *zap.Logger
}

func NewBotHandler(botRepo repository.BotRepository, logger *zap.Logger) BotHandler {
	return &botHandler{botRepo: botRepo, logger: logger}
}

// ListBots handles GET /api/bots
func (h *botHandler) ListBots(c *gin.Context) {
	bots, err := h.botRepo.ListBots()
	if err != nil {
		h.logger.Error("Failed to list bots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bots"})
		return
	}
	if bots == nil {
		bots = []*models.Bot{}
	}

	c.JSON(http.StatusOK, gin.H{"bots": bots})
}

// Heartbeat handles POST /api/bots/:id/heartbeat
type HeartbeatRequest struct {
	Status        string `json:"status" binding:"required,oneof=online offline connecting"`
	MessagesSent  int    `json:"messagesSent" binding:"min=0"`
	UptimeSeconds int64  `json:"uptimeSeconds" binding:"min=0"`
}

func (h *botHandler) Heartbeat(c *gin.Context) {
	botID := c.Param("id")

	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": validationDetails(err)})
		return
	}

	updated, err := h.botRepo.UpdateHeartbeat(botID, req.Status, req.MessagesSent, req.UptimeSeconds)
	if err != nil {
		h.logger.Error("Failed to update bot heartbeat", zap.String("bot_id", botID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bot"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bot not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Heartbeat recorded"})
}

// ListTestRuns handles GET /api/bots/:id/tests
func (h *botHandler) ListTestRuns(c *gin.Context) {
	botID := c.Param("id")
	limit := parseIntParam(c.Query("limit"), 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	runs, err := h.botRepo.ListTestRuns(botID, limit)
	if err != nil {
		h.logger.Error("Failed to list test runs", zap.String("bot_id", botID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test runs"})
		return
	}
	if runs == nil {
		runs = []*models.TestRun{}
	}

	c.JSON(http.StatusOK, gin.H{"test_runs": runs})
}

// RecordTestRun handles POST /api/bots/:id/tests
type RecordTestRunRequest struct {
	Name       string `json:"name" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=passed failed attention"`
	DurationMs int    `json:"durationMs" binding:"min=0"`
	Output     string `json:"output"`
}

func (h *botHandler) RecordTestRun(c *gin.Context) {
	botID := c.Param("id")

	var req RecordTestRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": validationDetails(err)})
		return
	}

	run := &models.TestRun{
		BotID:      botID,
		Name:       req.Name,
		Status:     req.Status,
		DurationMs: req.DurationMs,
		Output:     req.Output,
	}

	if err := h.botRepo.SaveTestRun(run); err != nil {
		h.logger.Error("Failed to save test run", zap.String("bot_id", botID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record test run"})
		return
	}

	c.JSON(http.StatusCreated, run)
}
