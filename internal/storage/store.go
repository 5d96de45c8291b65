// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tripdesk/tripdesk/internal/models"
)

// Store defines the persistence interface for users, chat sessions and the
// trip data attached to them. The abstraction allows swapping storage
// backends (SQLite, PostgreSQL, etc.) without changing the service layer.
type Store interface {
	// CreateUser persists a new user. ID and CreatedAt are assigned by the
	// store when unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateSession persists a new chat session owned by a user.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// ListSessions returns all sessions owned by a user, most recently
	// updated first.
	ListSessions(ctx context.Context, userID string) ([]*models.Session, error)

	// UpdateSessionTitle renames a session.
	UpdateSessionTitle(ctx context.Context, sessionID, title string) error

	// DeleteSession removes a session and everything attached to it
	// (messages, expenses, flights).
	DeleteSession(ctx context.Context, sessionID string) error

	// AppendMessage adds a message to a session and bumps the session's
	// UpdatedAt.
	AppendMessage(ctx context.Context, message *models.Message) error

	// ListMessages returns a session's messages in chronological order.
	ListMessages(ctx context.Context, sessionID string) ([]*models.Message, error)

	// CreateExpense persists a new expense with its split list.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns a session's expenses in insertion order, with
	// split lists in the order they were entered.
	ListExpenses(ctx context.Context, sessionID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// SaveFlights persists a batch of extracted flights for a session.
	SaveFlights(ctx context.Context, sessionID string, flights []models.Flight) error

	// ListFlights returns a session's flight tickets in insertion order.
	ListFlights(ctx context.Context, sessionID string) ([]*models.Flight, error)

	// DeleteFlight removes a flight ticket by ID.
	DeleteFlight(ctx context.Context, flightID string) error

	// Close releases any resources held by the store.
	Close() error
}
