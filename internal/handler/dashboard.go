package handler

import (
	"net/http"
	"time"

	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler interface {
	GetDashboard(c *gin.Context)
}

type dashboardHandler struct {
	messageRepo repository.MessageRepository
	logger      *zap.Logger
}

func NewDashboardHandler(messageRepo repository.MessageRepository, logger *zap.Logger) DashboardHandler {
	return &dashboardHandler{messageRepo: messageRepo, logger: logger}
}

// DashboardStats represents the statistics for the dashboard
type DashboardStats struct {
	TotalMessages     int            `json:"total_messages"`
	FlaggedMessages   int            `json:"flagged_messages"`
	Messages24h       int            `json:"messages_24h"`
	FailedDeliveries  int            `json:"failed_deliveries"`
	MessagesByBot     map[string]int `json:"messages_by_bot"`
	MessagesByDir     map[string]int `json:"messages_by_direction"`
	FlagRate          float64        `json:"flag_rate"`
	RecentFlagged     interface{}    `json:"recent_flagged"`
}

// GetDashboard handles GET /api/dashboard
func (h *dashboardHandler) GetDashboard(c *gin.Context) {
	total, err := h.messageRepo.CountMessages()
	if err != nil {
		h.logger.Error("Failed to count messages for dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	flagged, err := h.messageRepo.CountFlagged()
	if err != nil {
		h.logger.Error("Failed to count flagged messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	last24h, err := h.messageRepo.CountSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		h.logger.Error("Failed to count recent messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	failed, err := h.messageRepo.CountFailed()
	if err != nil {
		h.logger.Error("Failed to count failed deliveries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	byBot, err := h.messageRepo.CountByBot()
	if err != nil {
		h.logger.Error("Failed to count messages by bot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	byDirection, err := h.messageRepo.CountByDirection()
	if err != nil {
		h.logger.Error("Failed to count messages by direction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	recentFlagged, err := h.messageRepo.RecentFlagged(10)
	if err != nil {
		h.logger.Error("Failed to get recent flagged messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	flagRate := 0.0
	if total > 0 {
		flagRate = float64(flagged) / float64(total)
	}

	stats := DashboardStats{
		TotalMessages:    total,
		FlaggedMessages:  flagged,
		Messages24h:      last24h,
		FailedDeliveries: failed,
		MessagesByBot:    byBot,
		MessagesByDir:    byDirection,
		FlagRate:         flagRate,
		RecentFlagged:    recentFlagged,
	}

	c.JSON(http.StatusOK, stats)
}
