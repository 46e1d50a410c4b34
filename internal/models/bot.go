package models

import "time"

// Bot connection statuses reported by heartbeats.
const (
	BotStatusOnline     = "online"
	BotStatusOffline    = "offline"
	BotStatusConnecting = "connecting"
)

// Bot represents one deployed messaging agent in the fleet.
type Bot struct {
	ID            string     `db:"id" json:"id"` // stable identifier, e.g. "oliver"
	Name          string     `db:"name" json:"name"`
	Status        string     `db:"status" json:"status"`
	LastSeenAt    *time.Time `db:"last_seen_at" json:"lastSeenAt,omitempty"`
	MessagesSent  int        `db:"messages_sent" json:"messagesSent"`
	UptimeSeconds int64      `db:"uptime_seconds" json:"uptimeSeconds"`
}

// Test run results reported by the external test harness.
const (
	TestStatusPassed    = "passed"
	TestStatusFailed    = "failed"
	TestStatusAttention = "attention"
)

type TestRun struct {
	ID         int64     `db:"id" json:"id"`
	BotID      string    `db:"bot_id" json:"botId"`
	Name       string    `db:"name" json:"name"`
	Status     string    `db:"status" json:"status"`
	DurationMs int       `db:"duration_ms" json:"durationMs"`
	Output     string    `db:"output" json:"output"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
