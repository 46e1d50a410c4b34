package repository

import (
	"time"

	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type MessageRepository interface {
	SaveMessage(msg *models.Message) error
	ListMessages(filter MessageFilter) ([]*models.Message, error)
	CountMessages() (int, error)
	CountFlagged() (int, error)
	CountSince(since time.Time) (int, error)
	CountFailed() (int, error)
	CountByBot() (map[string]int, error)
	CountByDirection() (map[string]int, error)
	RecentFlagged(limit int) ([]*models.Message, error)
}

type messageRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewMessageRepository(db *sqlx.DB, logger *zap.Logger) MessageRepository {
	return &messageRepository{db: db, logger: logger}
}

const messageColumns = `id, bot_id, bot_name, direction, sender_name, sender_address,
	recipient_name, recipient_address, chat_guid, chat_name, message_text, message_id,
	has_media, media_type, is_group, status, error_text, flagged, flag_reason,
	token_count, response_time_ms, created_at, metadata`

// SaveMessage inserts one message row. The identifier and the creation
// timestamp are assigned here when the caller did not supply them.
func (r *messageRepository) SaveMessage(msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO bot_messages (` + messageColumns + `)
	          VALUES (:id, :bot_id, :bot_name, :direction, :sender_name, :sender_address,
	                  :recipient_name, :recipient_address, :chat_guid, :chat_name, :message_text, :message_id,
	                  :has_media, :media_type, :is_group, :status, :error_text, :flagged, :flag_reason,
	                  :token_count, :response_time_ms, :created_at, :metadata)`
	_, err := r.db.NamedExec(query, msg)
	return err
}

// ListMessages returns one page of messages matching the filter, newest
// first.
func (r *messageRepository) ListMessages(filter MessageFilter) ([]*models.Message, error) {
	filter = filter.Normalized()

	where, args := filter.Conditions().WhereClause()
	query := `SELECT ` + messageColumns + ` FROM bot_messages` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	var messages []*models.Message
	if err := r.db.Select(&messages, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) CountMessages() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM bot_messages`)
	return count, err
}

func (r *messageRepository) CountFlagged() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM bot_messages WHERE flagged = TRUE`)
	return count, err
}

func (r *messageRepository) CountSince(since time.Time) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM bot_messages WHERE created_at >= $1`, since)
	return count, err
}

func (r *messageRepository) CountFailed() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM bot_messages WHERE status = $1`, models.StatusFailed)
	return count, err
}

func (r *messageRepository) CountByBot() (map[string]int, error) {
	return r.countGrouped(`SELECT bot_id AS k, COUNT(*) AS n FROM bot_messages GROUP BY bot_id`)
}

func (r *messageRepository) CountByDirection() (map[string]int, error) {
	return r.countGrouped(`SELECT direction AS k, COUNT(*) AS n FROM bot_messages GROUP BY direction`)
}

func (r *messageRepository) countGrouped(query string) (map[string]int, error) {
	rows, err := r.db.Queryx(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (r *messageRepository) RecentFlagged(limit int) ([]*models.Message, error) {
	var messages []*models.Message
	query := `SELECT ` + messageColumns + ` FROM bot_messages WHERE flagged = TRUE
	          ORDER BY created_at DESC LIMIT $1`
	if err := r.db.Select(&messages, query, limit); err != nil {
		return nil, err
	}
	return messages, nil
}
