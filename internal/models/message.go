package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message delivery statuses.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
	StatusReceived  = "received"
)

// Message represents one bot message stored in the 'bot_messages' table.
type Message struct {
	ID               string    `db:"id" json:"id"`
	BotID            string    `db:"bot_id" json:"botId"`
	BotName          string    `db:"bot_name" json:"botName"`
	Direction        string    `db:"direction" json:"direction"` // "inbound" or "outbound"
	SenderName       *string   `db:"sender_name" json:"senderName,omitempty"`
	SenderAddress    *string   `db:"sender_address" json:"senderAddress,omitempty"` // phone or email
	RecipientName    *string   `db:"recipient_name" json:"recipientName,omitempty"`
	RecipientAddress *string   `db:"recipient_address" json:"recipientAddress,omitempty"`
	ChatGUID         *string   `db:"chat_guid" json:"chatGuid,omitempty"` // group chat identifier
	ChatName         *string   `db:"chat_name" json:"chatName,omitempty"`
	MessageText      *string   `db:"message_text" json:"messageText,omitempty"`
	MessageID        *string   `db:"message_id" json:"messageId,omitempty"` // original ID from the bot
	HasMedia         bool      `db:"has_media" json:"hasMedia"`
	MediaType        *string   `db:"media_type" json:"mediaType,omitempty"` // image/audio/video/pdf
	IsGroup          bool      `db:"is_group" json:"isGroup"`
	Status           string    `db:"status" json:"status"` // "sent" | "delivered" | "failed" | "received"
	ErrorText        *string   `db:"error_text" json:"errorText,omitempty"`
	Flagged          bool      `db:"flagged" json:"flagged"` // QA auto-flag, derived from message text
	FlagReason       *string   `db:"flag_reason" json:"flagReason,omitempty"`
	TokenCount       *int      `db:"token_count" json:"tokenCount,omitempty"`       // LLM tokens used for this response
	ResponseTimeMs   *int      `db:"response_time_ms" json:"responseTimeMs,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	Metadata         JSONMap   `db:"metadata" json:"metadata,omitempty"`
}

// JSONMap stores an open-ended key/value payload in a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", src)
	}
}
