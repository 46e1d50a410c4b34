package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"backend/internal/flagging"
	"backend/internal/models"
	"backend/internal/notifier"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type MessageHandler interface {
	CreateMessage(c *gin.Context)
	ListMessages(c *gin.Context)
}

type messageHandler struct {
	messageRepo repository.MessageRepository
	notifier    *notifier.Notifier
	logger      *zap.Logger
}

func NewMessageHandler(messageRepo repository.MessageRepository, notifier *notifier.Notifier, logger *zap.Logger) MessageHandler {
	return &messageHandler{
		messageRepo: messageRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateMessageRequest is the ingestion payload. Flagged/flagReason are
// accepted for compatibility with older bot clients but the flagging
// heuristic always overwrites them.
type CreateMessageRequest struct {
	BotID            string         `json:"botId" binding:"required"`
	BotName          string         `json:"botName" binding:"required"`
	Direction        string         `json:"direction" binding:"required,oneof=inbound outbound"`
	SenderName       *string        `json:"senderName"`
	SenderAddress    *string        `json:"senderAddress"`
	RecipientName    *string        `json:"recipientName"`
	RecipientAddress *string        `json:"recipientAddress"`
	ChatGUID         *string        `json:"chatGuid"`
	ChatName         *string        `json:"chatName"`
	MessageText      *string        `json:"messageText"`
	MessageID        *string        `json:"messageId"`
	HasMedia         bool           `json:"hasMedia"`
	MediaType        *string        `json:"mediaType"`
	IsGroup          bool           `json:"isGroup"`
	Status           string         `json:"status" binding:"required,oneof=sent delivered failed received"`
	ErrorText        *string        `json:"errorText"`
	Flagged          *bool          `json:"flagged"`
	FlagReason       *string        `json:"flagReason"`
	TokenCount       *int           `json:"tokenCount"`
	ResponseTimeMs   *int           `json:"responseTimeMs"`
	CreatedAt        *time.Time     `json:"createdAt"`
	Metadata         models.JSONMap `json:"metadata"`
}

func (req *CreateMessageRequest) toModel() *models.Message {
	msg := &models.Message{
		BotID:            req.BotID,
		BotName:          req.BotName,
		Direction:        req.Direction,
		SenderName:       req.SenderName,
		SenderAddress:    req.SenderAddress,
		RecipientName:    req.RecipientName,
		RecipientAddress: req.RecipientAddress,
		ChatGUID:         req.ChatGUID,
		ChatName:         req.ChatName,
		MessageText:      req.MessageText,
		MessageID:        req.MessageID,
		HasMedia:         req.HasMedia,
		MediaType:        req.MediaType,
		IsGroup:          req.IsGroup,
		Status:           req.Status,
		ErrorText:        req.ErrorText,
		TokenCount:       req.TokenCount,
		ResponseTimeMs:   req.ResponseTimeMs,
		Metadata:         req.Metadata,
	}
	if req.CreatedAt != nil {
		msg.CreatedAt = *req.CreatedAt
	}
	return msg
}

// CreateMessage handles POST /api/messages
func (h *messageHandler) CreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": validationDetails(err),
		})
		return
	}

	msg := req.toModel()

	// The heuristic is authoritative: whatever the client sent in
	// flagged/flagReason is discarded here.
	text := ""
	if msg.MessageText != nil {
		text = *msg.MessageText
	}
	result := flagging.Evaluate(text)
	msg.Flagged = result.Flagged
	if result.Flagged {
		reason := result.Reason
		msg.FlagReason = &reason
	}

	if err := h.messageRepo.SaveMessage(msg); err != nil {
		h.logger.Error("Failed to save message", zap.String("bot_id", msg.BotID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
		return
	}

	if msg.Flagged {
		go h.notifier.NotifyFlagged(msg)
	}

	c.JSON(http.StatusCreated, msg)
}

// ListMessages handles GET /api/messages
// Query parameters: botId, direction, isGroup, flagged, search,
// startDate, endDate, limit, offset. Malformed numeric or date values
// fall back to defaults instead of rejecting the request.
func (h *messageHandler) ListMessages(c *gin.Context) {
	filter := repository.MessageFilter{
		BotID:       c.Query("botId"),
		Direction:   c.Query("direction"),
		Search:      c.Query("search"),
		FlaggedOnly: c.Query("flagged") == "true",
		StartDate:   parseDateParam(c.Query("startDate")),
		EndDate:     parseDateParam(c.Query("endDate")),
		Limit:       parseIntParam(c.Query("limit"), repository.DefaultLimit),
		Offset:      parseIntParam(c.Query("offset"), 0),
	}
	if group := c.Query("isGroup"); group == "true" || group == "false" {
		isGroup := group == "true"
		filter.IsGroup = &isGroup
	}
	filter = filter.Normalized()

	messages, err := h.messageRepo.ListMessages(filter)
	if err != nil {
		h.logger.Error("Failed to list messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"pagination": gin.H{
			"limit":   filter.Limit,
			"offset":  filter.Offset,
			"hasMore": len(messages) == filter.Limit,
		},
	})
}

// validationDetails flattens a binding error into a field-level list so
// the response names every violated field, not just the first.
func validationDetails(err error) []gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, gin.H{"field": fe.Field(), "message": describeFieldError(fe)})
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []gin.H{{"field": typeErr.Field, "message": fmt.Sprintf("must be of type %s", typeErr.Type)}}
	}

	return []gin.H{{"field": "", "message": err.Error()}}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// parseDateParam accepts RFC3339 timestamps or plain dates; anything
// else disables the bound.
func parseDateParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t
	}
	return nil
}
