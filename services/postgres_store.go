package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/sahilsama/calmi/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	connStr := databaseURL
	if !strings.Contains(databaseURL, "sslmode=") {
		if strings.Contains(databaseURL, "?") {
			connStr += "&sslmode=disable"
		} else if strings.HasPrefix(databaseURL, "postgres://") {
			connStr += "?sslmode=disable"
		} else {
			connStr += " sslmode=disable"
		}
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %v", err)
	}

	// 接続テスト
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %v", err)
	}

	return &PostgresStore{db: db}, nil
}

// EnsureSchema は起動時にテーブルを用意する。メッセージはセッション削除で
// 連鎖削除される
func (s *PostgresStore) EnsureSchema() error {
	schema := `
        CREATE TABLE IF NOT EXISTS sessions (
            id                  TEXT PRIMARY KEY,
            name                TEXT NOT NULL,
            identity            TEXT NOT NULL,
            age_range           TEXT NOT NULL,
            relationship_status TEXT NOT NULL,
            support_type        TEXT NOT NULL,
            communication_type  TEXT NOT NULL,
            system_prompt       TEXT NOT NULL,
            created_at          TIMESTAMPTZ NOT NULL
        );
        CREATE TABLE IF NOT EXISTS messages (
            id         TEXT PRIMARY KEY,
            session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
            role       TEXT NOT NULL,
            content    TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_messages_session_created
            ON messages (session_id, created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %v", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateSession(session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO sessions
        (id, name, identity, age_range, relationship_status, support_type, communication_type, system_prompt, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := s.db.Exec(query,
		session.ID,
		session.Name,
		session.Identity,
		session.AgeRange,
		session.RelationshipStatus,
		session.SupportType,
		session.CommunicationType,
		session.SystemPrompt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %v", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(id string) (*models.Session, error) {
	query := `
        SELECT id, name, identity, age_range, relationship_status, support_type, communication_type, system_prompt, created_at
        FROM sessions
        WHERE id = $1
    `

	var session models.Session
	err := s.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.Name,
		&session.Identity,
		&session.AgeRange,
		&session.RelationshipStatus,
		&session.SupportType,
		&session.CommunicationType,
		&session.SystemPrompt,
		&session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %v", err)
	}
	return &session, nil
}

func (s *PostgresStore) SaveMessage(sessionID, role, content string) (*models.Message, error) {
	message := models.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	query := `
        INSERT INTO messages (id, session_id, role, content, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := s.db.Exec(query, message.ID, message.SessionID, message.Role, message.Content, message.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %v", err)
	}
	return &message, nil
}

// SaveExchange はユーザー発話とアシスタント応答を同一トランザクションで保存する
func (s *PostgresStore) SaveExchange(sessionID, userContent, assistantContent string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO messages (id, session_id, role, content, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	now := time.Now().UTC()
	if _, err := tx.Exec(query, uuid.New().String(), sessionID, models.RoleUser, userContent, now); err != nil {
		return fmt.Errorf("failed to insert user message: %v", err)
	}
	// 同時刻だと並び順が不定になるのでわずかにずらす
	if _, err := tx.Exec(query, uuid.New().String(), sessionID, models.RoleAssistant, assistantContent, now.Add(time.Microsecond)); err != nil {
		return fmt.Errorf("failed to insert assistant message: %v", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) RecentMessages(sessionID string, limit int) ([]models.Message, error) {
	query := `
        SELECT id, session_id, role, content, created_at
        FROM messages
        WHERE session_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := s.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %v", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// 新しい順で取っているので時系列に戻す
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *PostgresStore) ListMessages(sessionID string) ([]models.Message, error) {
	query := `
        SELECT id, session_id, role, content, created_at
        FROM messages
        WHERE session_id = $1
        ORDER BY created_at ASC
    `

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %v", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// DeleteSession はセッションを削除する。メッセージは外部キーの連鎖削除に任せる
func (s *PostgresStore) DeleteSession(id string) error {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSessionsBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %v", err)
	}
	return result.RowsAffected()
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("row scan failed: %v", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
