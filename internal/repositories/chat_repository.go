package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/models"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrSelfChat     = errors.New("cannot create chat with self")
)

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateOrGetPrivate(ctx context.Context, userID, otherID int64) (models.Chat, error)
	CreateGroup(ctx context.Context, name string, createdBy *int64, participantIDs []int64) (models.Chat, error)
	GetChat(ctx context.Context, chatID int64) (models.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]models.ChatSummary, error)
	Pin(ctx context.Context, userID, chatID int64) error
	Unpin(ctx context.Context, userID, chatID int64) error
	Delete(ctx context.Context, chatID int64) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

var _ ChatRepository = (*ChatRepo)(nil)

const selectChat = `SELECT id, type, name, created_by, user1_id, user2_id,
    last_message, last_message_sender, last_message_time, created_at FROM chats`

// normalizePair sorts a user pair so both orderings address the same chat row.
func normalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// CreateOrGetPrivate returns the private chat for the pair, creating it if
// absent. The UNIQUE(user1_id, user2_id) constraint over the sorted pair makes
// concurrent creators converge on a single row.
func (r *ChatRepo) CreateOrGetPrivate(ctx context.Context, userID, otherID int64) (models.Chat, error) {
	if userID == otherID {
		return models.Chat{}, ErrSelfChat
	}
	user1, user2 := normalizePair(userID, otherID)

	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, selectChat+` WHERE type='private' AND user1_id=$1 AND user2_id=$2`, user1, user2)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, fmt.Errorf("lookup private chat: %w", err)
	}

	chat, err = r.insertPrivate(ctx, user1, user2)
	if isUniqueViolation(err) {
		// Lost the race; the winner's row is the chat for this pair.
		err = r.db.GetContext(ctx, &chat, selectChat+` WHERE type='private' AND user1_id=$1 AND user2_id=$2`, user1, user2)
	}
	if err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

func (r *ChatRepo) insertPrivate(ctx context.Context, user1, user2 int64) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var chat models.Chat
	err = tx.QueryRowxContext(ctx, `INSERT INTO chats (type, user1_id, user2_id)
        VALUES ('private', $1, $2)
        RETURNING id, type, name, created_by, user1_id, user2_id, last_message, last_message_sender, last_message_time, created_at`,
		user1, user2).StructScan(&chat)
	if err != nil {
		return models.Chat{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2), ($1, $3)`,
		chat.ID, user1, user2); err != nil {
		return models.Chat{}, fmt.Errorf("insert participants: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Chat{}, fmt.Errorf("commit: %w", err)
	}
	return chat, nil
}

// CreateGroup creates a group chat with the given participants. The chat row
// and participant rows commit together or not at all. A nil createdBy stores
// NULL, keeping the creator column optional.
func (r *ChatRepo) CreateGroup(ctx context.Context, name string, createdBy *int64, participantIDs []int64) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var chat models.Chat
	err = tx.QueryRowxContext(ctx, `INSERT INTO chats (type, name, created_by)
        VALUES ('group', $1, $2)
        RETURNING id, type, name, created_by, user1_id, user2_id, last_message, last_message_sender, last_message_time, created_at`,
		name, createdBy).StructScan(&chat)
	if err != nil {
		return models.Chat{}, err
	}

	seen := make(map[int64]struct{}, len(participantIDs))
	for _, userID := range participantIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)`, chat.ID, userID); err != nil {
			return models.Chat{}, fmt.Errorf("insert participant %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Chat{}, fmt.Errorf("commit: %w", err)
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int64) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, selectChat+` WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// ListForUser returns the user's chats with last-message projection, most
// recently active first. The pin flag only annotates; it does not reorder.
func (r *ChatRepo) ListForUser(ctx context.Context, userID int64) ([]models.ChatSummary, error) {
	query := `SELECT c.id, c.type, c.name, c.created_by, c.user1_id, c.user2_id,
            c.last_message, c.last_message_sender, c.last_message_time, c.created_at,
            (p.chat_id IS NOT NULL) AS is_pinned
        FROM chats c
        JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = $1
        LEFT JOIN pinned_chats p ON p.chat_id = c.id AND p.user_id = $1
        ORDER BY c.last_message_time DESC NULLS LAST, c.created_at DESC`
	summaries := []models.ChatSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, userID); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	chatIDs := make([]int64, 0, len(summaries))
	for _, summary := range summaries {
		chatIDs = append(chatIDs, summary.ID)
	}

	participants, err := r.participantsByChat(ctx, chatIDs)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Participants = participants[summaries[i].ID]
		if summaries[i].Participants == nil {
			summaries[i].Participants = []models.PublicUser{}
		}
	}
	return summaries, nil
}

func (r *ChatRepo) participantsByChat(ctx context.Context, chatIDs []int64) (map[int64][]models.PublicUser, error) {
	query := `SELECT cp.chat_id, u.id, u.username, u.avatar, u.first_name, u.last_name, u.bio, u.is_online, u.last_seen, u.public_key
        FROM chat_participants cp
        JOIN users u ON u.id = cp.user_id
        WHERE cp.chat_id = ANY($1)
        ORDER BY cp.joined_at`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(chatIDs))
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()

	byChat := make(map[int64][]models.PublicUser, len(chatIDs))
	for rows.Next() {
		var chatID int64
		var user models.PublicUser
		if err := rows.Scan(&chatID, &user.ID, &user.Username, &user.Avatar, &user.FirstName,
			&user.LastName, &user.Bio, &user.IsOnline, &user.LastSeen, &user.PublicKey); err != nil {
			return nil, err
		}
		byChat[chatID] = append(byChat[chatID], user)
	}
	return byChat, rows.Err()
}

// Pin marks a chat pinned for the user. Idempotent.
func (r *ChatRepo) Pin(ctx context.Context, userID, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO pinned_chats (user_id, chat_id) VALUES ($1, $2)
        ON CONFLICT (user_id, chat_id) DO NOTHING`, userID, chatID)
	return err
}

// Unpin removes the pin marker for the user. Idempotent.
func (r *ChatRepo) Unpin(ctx context.Context, userID, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pinned_chats WHERE user_id=$1 AND chat_id=$2`, userID, chatID)
	return err
}

// Delete removes the chat; messages, participants and pins cascade.
func (r *ChatRepo) Delete(ctx context.Context, chatID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, chatID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrChatNotFound)
}
