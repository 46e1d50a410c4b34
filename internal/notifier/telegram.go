// Package notifier pushes ops alerts for flagged messages to a
// Telegram chat. Alerting is best-effort: failures are logged and never
// surfaced to the ingestion caller.
package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
)

// Notifier sends flagged-message alerts. A nil *Notifier is valid and
// does nothing, mirroring the disabled configuration.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewNotifier creates the Telegram notifier, or returns (nil, nil) when
// alerting is disabled in the configuration.
func NewNotifier(cfg *config.Config, logger *zap.Logger) (*Notifier, error) {
	if !cfg.Alerts.Enabled || cfg.Alerts.TelegramBotToken == "" {
		logger.Info("Flag alerting is disabled (alerts.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Alerts.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram alert bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Notifier{
		api:    botAPI,
		chatID: cfg.Alerts.TelegramChatID,
		logger: logger,
	}, nil
}

// NotifyFlagged sends an alert for a message the heuristic flagged.
func (n *Notifier) NotifyFlagged(msg *models.Message) {
	if n == nil {
		return
	}

	reason := ""
	if msg.FlagReason != nil {
		reason = *msg.FlagReason
	}
	excerpt := ""
	if msg.MessageText != nil {
		excerpt = *msg.MessageText
		if len(excerpt) > 200 {
			excerpt = excerpt[:200] + "…"
		}
	}

	text := fmt.Sprintf("⚠️ Flagged message from bot %s (%s)\nReason: %s\nStatus: %s\n\n%s",
		msg.BotName, msg.Direction, reason, msg.Status, excerpt)

	alert := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(alert); err != nil {
		n.logger.Error("Failed to send flag alert",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
}
