package models

import "time"

// Chat kinds.
const (
	ChatPrivate = "private"
	ChatGroup   = "group"
)

// Chat represents a private or group chat. For private chats User1ID/User2ID
// hold the sorted participant pair and carry the per-pair uniqueness
// constraint; participants of every chat also live in chat_participants.
type Chat struct {
	ID                int64      `db:"id" json:"id"`
	Type              string     `db:"type" json:"type"`
	Name              string     `db:"name" json:"name"`
	CreatedBy         *int64     `db:"created_by" json:"created_by,omitempty"`
	User1ID           *int64     `db:"user1_id" json:"-"`
	User2ID           *int64     `db:"user2_id" json:"-"`
	LastMessage       string     `db:"last_message" json:"last_message"`
	LastMessageSender string     `db:"last_message_sender" json:"last_message_sender"`
	LastMessageTime   *time.Time `db:"last_message_time" json:"last_message_time,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// ChatSummary is a chat annotated for one user's list view.
type ChatSummary struct {
	Chat
	IsPinned     bool         `db:"is_pinned" json:"is_pinned"`
	Participants []PublicUser `json:"participants"`
}

// PinnedChat marks a chat pinned by a user, independent of chat lifecycle.
type PinnedChat struct {
	UserID int64 `db:"user_id" json:"user_id"`
	ChatID int64 `db:"chat_id" json:"chat_id"`
}
