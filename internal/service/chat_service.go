package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tripdesk/tripdesk/internal/assistant"
	"github.com/tripdesk/tripdesk/internal/flightparse"
	"github.com/tripdesk/tripdesk/internal/metrics"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/storage"
)

// maxTitleRunes caps auto-generated session titles.
const maxTitleRunes = 50

// ChatService owns chat sessions and the assistant round trip. Assistant
// replies are scanned for flight payloads before they are stored; the stored
// message is always the cleaned text.
type ChatService struct {
	store     storage.Store
	completer assistant.Completer
}

// NewChatService creates a chat service backed by the given store and
// completion provider.
func NewChatService(store storage.Store, completer assistant.Completer) *ChatService {
	return &ChatService{store: store, completer: completer}
}

// StartSession creates a new chat session for the user.
func (s *ChatService) StartSession(ctx context.Context, userID, title string) (*models.Session, error) {
	session := &models.Session{
		UserID: userID,
		Title:  title,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]*models.Session, error) {
	return s.store.ListSessions(ctx, userID)
}

// GetSession returns a session with its messages after checking ownership.
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID string) (*models.Session, []*models.Message, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return session, messages, nil
}

// DeleteSession removes a session and everything attached to it.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, sessionID)
}

// SendMessage records a user message, obtains the assistant's reply,
// extracts any flight payload from it and returns the stored assistant
// message together with the flights it carried.
func (s *ChatService) SendMessage(ctx context.Context, userID, sessionID, content string) (*models.Message, []models.Flight, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, ErrEmptyMessage
	}

	userMsg := &models.Message{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   content,
	}
	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, nil, fmt.Errorf("failed to store message: %w", err)
	}

	// First message names the session.
	if session.Title == "" || session.Title == "New Chat" {
		if err := s.store.UpdateSessionTitle(ctx, sessionID, titleFrom(content)); err != nil {
			slog.Warn("Failed to update session title", "session_id", sessionID, "error", err)
		}
	}

	history, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list messages: %w", err)
	}

	reply, err := s.completer.Complete(ctx, history)
	if err != nil {
		metrics.AssistantErrors.Inc()
		return nil, nil, fmt.Errorf("assistant call failed: %w", err)
	}

	clean, flights := flightparse.ExtractPayload(reply)
	if len(flights) > 0 {
		if err := s.store.SaveFlights(ctx, sessionID, flights); err != nil {
			return nil, nil, fmt.Errorf("failed to save flights: %w", err)
		}
		metrics.FlightsExtracted.Add(float64(len(flights)))
		slog.Info("Extracted flight records", "session_id", sessionID, "count", len(flights))
	}

	assistantMsg := &models.Message{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   clean,
	}
	if err := s.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, nil, fmt.Errorf("failed to store message: %w", err)
	}

	return assistantMsg, flights, nil
}

// ownedSession loads a session and verifies the caller owns it.
func (s *ChatService) ownedSession(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

// titleFrom derives a session title from the first user message.
func titleFrom(content string) string {
	runes := []rune(content)
	if len(runes) <= maxTitleRunes {
		return content
	}
	return string(runes[:maxTitleRunes]) + "…"
}
