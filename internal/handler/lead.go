package handler

import (
	"net/http"
	"strconv"
	"time"

	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LeadHandler interface {
	ListLeads(c *gin.Context)
	CreateLead(c *gin.Context)
	UpdateLeadStatus(c *gin.Context)
}

type leadHandler struct {
	leadRepo repository.LeadRepository
	logger   *zap.Logger
}

func NewLeadHandler(leadRepo repository.LeadRepository, logger *zap.Logger) LeadHandler {
	return &leadHandler{leadRepo: leadRepo, logger: logger}
}

// ListLeads handles GET /api/leads
// Query parameters: search, status, channel ("all" disables a filter).
func (h *leadHandler) ListLeads(c *gin.Context) {
	filter := repository.LeadFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Channel: c.Query("channel"),
	}

	leads, err := h.leadRepo.ListLeads(filter)
	if err != nil {
		h.logger.Error("Failed to list leads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leads"})
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}

	counts, err := h.leadRepo.CountByStatus()
	if err != nil {
		h.logger.Error("Failed to count leads by status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads, "counts_by_status": counts})
}

type CreateLeadRequest struct {
	Name          string     `json:"name" binding:"required"`
	Email         string     `json:"email" binding:"required,email"`
	Company       string     `json:"company" binding:"required"`
	Status        string     `json:"status" binding:"omitempty,oneof=new contacted qualified proposal closed-won closed-lost"`
	Channel       string     `json:"channel" binding:"required,oneof=email phone imessage"`
	LastContactAt *time.Time `json:"lastContactAt"`
}

// CreateLead handles POST /api/leads
func (h *leadHandler) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": validationDetails(err)})
		return
	}

	if req.Status == "" {
		req.Status = models.LeadStatusNew
	}

	lead := &models.Lead{
		Name:          req.Name,
		Email:         req.Email,
		Company:       req.Company,
		Status:        req.Status,
		Channel:       req.Channel,
		LastContactAt: req.LastContactAt,
	}

	if err := h.leadRepo.SaveLead(lead); err != nil {
		h.logger.Error("Failed to save lead", zap.String("email", lead.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// UpdateLeadStatus handles PUT /api/leads/:id/status
type UpdateLeadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted qualified proposal closed-won closed-lost"`
}

func (h *leadHandler) UpdateLeadStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid lead ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID"})
		return
	}

	var req UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": validationDetails(err)})
		return
	}

	updated, err := h.leadRepo.UpdateLeadStatus(id, req.Status)
	if err != nil {
		h.logger.Error("Failed to update lead status", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead status"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead status updated successfully"})
}
