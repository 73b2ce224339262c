package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// Last-message projection text is truncated to this many runes.
const projectionLimit = 100

// MessageRepository abstracts message persistence.
type MessageRepository interface {
	Append(ctx context.Context, msg *models.Message) error
	ListForChat(ctx context.Context, chatID int64) ([]models.MessageWithSender, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ MessageRepository = (*MessageRepo)(nil)

// Append stores the message and updates the parent chat's last-message
// projection in the same transaction, so list views never see one without
// the other.
func (r *MessageRepo) Append(ctx context.Context, msg *models.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, sender_id, sender_name, text, encrypted_text)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		msg.ChatID, msg.SenderID, msg.SenderName, msg.Text, msg.EncryptedText).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE chats
        SET last_message=$1, last_message_sender=$2, last_message_time=$3
        WHERE id=$4`,
		truncate(msg.Text, projectionLimit), msg.SenderName, msg.CreatedAt, msg.ChatID)
	if err != nil {
		return fmt.Errorf("update projection: %w", err)
	}
	if err := requireRow(res, ErrChatNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

// ListForChat returns all chat messages with sender profiles, oldest first.
func (r *MessageRepo) ListForChat(ctx context.Context, chatID int64) ([]models.MessageWithSender, error) {
	query := `SELECT m.id, m.chat_id, m.sender_id, m.sender_name, m.text, m.encrypted_text, m.created_at,
            u.username AS "sender.username", u.avatar AS "sender.avatar",
            u.first_name AS "sender.first_name", u.last_name AS "sender.last_name"
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id = $1
        ORDER BY m.created_at, m.id`
	messages := []models.MessageWithSender{}
	err := r.db.SelectContext(ctx, &messages, query, chatID)
	return messages, err
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
