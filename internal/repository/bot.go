package repository

import (
	"time"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type BotRepository interface {
	ListBots() ([]*models.Bot, error)
	UpdateHeartbeat(id, status string, messagesSent int, uptimeSeconds int64) (bool, error)
	SaveTestRun(run *models.TestRun) error
	ListTestRuns(botID string, limit int) ([]*models.TestRun, error)
}

type botRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewBotRepository(db *sqlx.DB, logger *zap.Logger) BotRepository {
	return &botRepository{db: db, logger: logger}
}

func (r *botRepository) ListBots() ([]*models.Bot, error) {
	var bots []*models.Bot
	query := `SELECT id, name, status, last_seen_at, messages_sent, uptime_seconds
	          FROM bots ORDER BY id`
	if err := r.db.Select(&bots, query); err != nil {
		return nil, err
	}
	return bots, nil
}

// UpdateHeartbeat returns false when the bot id is unknown.
func (r *botRepository) UpdateHeartbeat(id, status string, messagesSent int, uptimeSeconds int64) (bool, error) {
	query := `UPDATE bots
	          SET status = $1, messages_sent = $2, uptime_seconds = $3, last_seen_at = $4
	          WHERE id = $5`
	result, err := r.db.Exec(query, status, messagesSent, uptimeSeconds, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *botRepository) SaveTestRun(run *models.TestRun) error {
	query := `INSERT INTO test_runs (bot_id, name, status, duration_ms, output)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query, run.BotID, run.Name, run.Status, run.DurationMs, run.Output).
		Scan(&run.ID, &run.CreatedAt)
}

func (r *botRepository) ListTestRuns(botID string, limit int) ([]*models.TestRun, error) {
	var runs []*models.TestRun
	query := `SELECT id, bot_id, name, status, duration_ms, output, created_at
	          FROM test_runs WHERE bot_id = $1 ORDER BY created_at DESC LIMIT $2`
	if err := r.db.Select(&runs, query, botID, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
