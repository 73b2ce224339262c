package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the database and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            username VARCHAR(50) UNIQUE NOT NULL,
            hashed_password VARCHAR(255) NOT NULL,
            public_key TEXT NOT NULL DEFAULT '',
            private_key TEXT NOT NULL DEFAULT '',
            avatar TEXT NOT NULL DEFAULT '😊',
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            bio TEXT NOT NULL DEFAULT '',
            is_online BOOLEAN NOT NULL DEFAULT FALSE,
            last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS friend_requests (
            id BIGSERIAL PRIMARY KEY,
            from_user_id BIGINT NOT NULL REFERENCES users(id),
            to_user_id BIGINT NOT NULL REFERENCES users(id),
            status VARCHAR(10) NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// One pending request per unordered pair, enforced by the store so
		// concurrent check-then-insert callers cannot race past each other.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_pending_pair
            ON friend_requests (LEAST(from_user_id, to_user_id), GREATEST(from_user_id, to_user_id))
            WHERE status = 'pending';`,
		`CREATE TABLE IF NOT EXISTS friendships (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            friend_id BIGINT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(user_id, friend_id)
        );`,
		// user1_id/user2_id hold the sorted pair for private chats; both stay
		// NULL for groups so the UNIQUE constraint only binds private pairs.
		`CREATE TABLE IF NOT EXISTS chats (
            id BIGSERIAL PRIMARY KEY,
            type VARCHAR(10) NOT NULL CHECK (type IN ('private', 'group')),
            name TEXT NOT NULL DEFAULT '',
            created_by BIGINT REFERENCES users(id),
            user1_id BIGINT,
            user2_id BIGINT,
            last_message TEXT NOT NULL DEFAULT '',
            last_message_sender TEXT NOT NULL DEFAULT '',
            last_message_time TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(user1_id, user2_id)
        );`,
		`CREATE TABLE IF NOT EXISTS chat_participants (
            chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            user_id BIGINT NOT NULL REFERENCES users(id),
            joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (chat_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            sender_id BIGINT NOT NULL REFERENCES users(id),
            sender_name TEXT NOT NULL,
            text TEXT NOT NULL DEFAULT '',
            encrypted_text TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS pinned_chats (
            user_id BIGINT NOT NULL REFERENCES users(id),
            chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            PRIMARY KEY (user_id, chat_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_friend_requests_to_user ON friend_requests(to_user_id) WHERE status = 'pending';`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_user ON friendships(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at);`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
