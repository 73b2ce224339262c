package models

import "time"

// Message is immutable once created and owned by its chat: deleting the chat
// cascades to its messages.
type Message struct {
	ID            int64     `db:"id" json:"id"`
	ChatID        int64     `db:"chat_id" json:"chat_id"`
	SenderID      int64     `db:"sender_id" json:"sender_id"`
	SenderName    string    `db:"sender_name" json:"sender_name"`
	Text          string    `db:"text" json:"text"`
	EncryptedText string    `db:"encrypted_text" json:"encrypted_text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// MessageWithSender is a message joined with the sender's profile for listing.
type MessageWithSender struct {
	Message
	Sender struct {
		Username  string `db:"username" json:"username"`
		Avatar    string `db:"avatar" json:"avatar"`
		FirstName string `db:"first_name" json:"first_name"`
		LastName  string `db:"last_name" json:"last_name"`
	} `db:"sender" json:"sender"`
}
