package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/tripdesk/internal/models"
)

// CreateSession persists a new chat session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if session.CreatedAt == 0 {
		session.CreatedAt = now
	}
	if session.UpdatedAt == 0 {
		session.UpdatedAt = session.CreatedAt
	}
	if session.Title == "" {
		session.Title = "New Chat"
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		session.ID, session.UserID, session.Title, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, created_at, updated_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessions returns all sessions owned by a user, most recently updated first.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, title, created_at, updated_at FROM sessions WHERE user_id = ? ORDER BY updated_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session := &models.Session{}
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSessionTitle renames a session.
func (s *SQLiteStore) UpdateSessionTitle(ctx context.Context, sessionID, title string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?",
		title, time.Now().Unix(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

// DeleteSession removes a session; messages, expenses and flights cascade.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

// AppendMessage adds a message to a session and bumps the session's UpdatedAt.
func (s *SQLiteStore) AppendMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt == 0 {
		message.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
		message.ID, message.SessionID, message.Role, message.Content, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = ? WHERE id = ?",
		message.CreatedAt, message.SessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListMessages returns a session's messages in chronological order.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		// rowid tiebreak keeps same-second messages in insertion order
		"SELECT id, session_id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY created_at, rowid",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message := &models.Message{}
		if err := rows.Scan(&message.ID, &message.SessionID, &message.Role, &message.Content, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}
