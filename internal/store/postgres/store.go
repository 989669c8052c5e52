package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// UpsertUser inserts the user on first login and refreshes profile fields and
// last_login_at on subsequent logins.
func (s *PostgresStore) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, picture, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    picture = EXCLUDED.picture,
		    last_login_at = NOW()`

	_, err := s.db.Exec(ctx, query, user.ID, user.Email, user.Name, user.Picture)
	if err != nil {
		logPgError("UpsertUser", user.ID, err)
		return fmt.Errorf("database error upserting user: %w", err)
	}

	log.Printf("[PostgresStore] UpsertUser: Recorded login for user %s", user.ID)
	return nil
}

func (s *PostgresStore) ListChats(ctx context.Context, ownerID string) ([]models.Chat, error) {
	query := `
		SELECT id, owner_id, title, created_at, updated_at
		FROM chats
		WHERE owner_id = $1`

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		logPgError("ListChats", ownerID, err)
		return nil, fmt.Errorf("database error listing chats: %w", err)
	}
	defer rows.Close()

	chats := make([]models.Chat, 0)
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.OwnerID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			log.Printf("ERROR [PostgresStore] ListChats: Failed to scan chat row for owner %s: %v", ownerID, err)
			return nil, fmt.Errorf("database error scanning chat: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating chats: %w", err)
	}

	return chats, nil
}

func (s *PostgresStore) CreateChat(ctx context.Context, ownerID, title string) (*models.Chat, error) {
	if title == "" {
		title = store.DefaultChatTitle
	}

	chat := &models.Chat{
		ID:      fmt.Sprintf("chat_%s", uuid.NewString()),
		OwnerID: ownerID,
		Title:   title,
	}

	query := `
		INSERT INTO chats (id, owner_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query, chat.ID, chat.OwnerID, chat.Title).
		Scan(&chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		logPgError("CreateChat", ownerID, err)
		return nil, fmt.Errorf("database error creating chat: %w", err)
	}

	log.Printf("[PostgresStore] CreateChat: Created chat %s for owner %s", chat.ID, ownerID)
	return chat, nil
}

// DeleteChat removes the chat and all of its messages. Deleting an unknown
// chat ID is a no-op.
func (s *PostgresStore) DeleteChat(ctx context.Context, chatID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database error starting delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE chat_id = $1`, chatID); err != nil {
		logPgError("DeleteChat(messages)", chatID, err)
		return fmt.Errorf("database error deleting chat messages: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID); err != nil {
		logPgError("DeleteChat(chat)", chatID, err)
		return fmt.Errorf("database error deleting chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database error committing delete: %w", err)
	}

	log.Printf("[PostgresStore] DeleteChat: Deleted chat %s (if it existed)", chatID)
	return nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, chatID, role, content string) (*models.Message, error) {
	msg := &models.Message{
		ID:        fmt.Sprintf("msg_%s", uuid.NewString()),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting append transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO messages (id, chat_id, role, content, timestamp)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, insert, msg.ID, msg.ChatID, msg.Role, msg.Content, msg.Timestamp); err != nil {
		logPgError("AppendMessage(insert)", chatID, err)
		return nil, fmt.Errorf("database error inserting message: %w", err)
	}

	// The parent chat's updated_at is the chat-list sort key; keep it equal
	// to the newest message's timestamp.
	bump := `UPDATE chats SET updated_at = $2 WHERE id = $1`
	if _, err := tx.Exec(ctx, bump, chatID, msg.Timestamp); err != nil {
		logPgError("AppendMessage(bump)", chatID, err)
		return nil, fmt.Errorf("database error updating chat timestamp: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing append: %w", err)
	}

	return msg, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	query := `
		SELECT id, chat_id, role, content, timestamp
		FROM messages
		WHERE chat_id = $1
		ORDER BY timestamp ASC`

	rows, err := s.db.Query(ctx, query, chatID)
	if err != nil {
		logPgError("ListMessages", chatID, err)
		return nil, fmt.Errorf("database error listing messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			log.Printf("ERROR [PostgresStore] ListMessages: Failed to scan message row for chat %s: %v", chatID, err)
			return nil, fmt.Errorf("database error scanning message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating messages: %w", err)
	}

	return msgs, nil
}

// logPgError logs a database error, surfacing PostgreSQL error details when
// available.
func logPgError(op, key string, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		log.Printf("ERROR [PostgresStore] %s: PostgreSQL error for %s: Code=%s, Message=%s, Detail=%s",
			op, key, pgErr.Code, pgErr.Message, pgErr.Detail)
		return
	}
	if errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[PostgresStore] %s: No rows for %s", op, key)
		return
	}
	log.Printf("ERROR [PostgresStore] %s: Failed for %s: %v", op, key, err)
}
