package models

// Message roles. The assistant role is whatever the completion provider
// returns; the user role marks turns typed by a person.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session represents one conversation with the travel assistant.
// Expenses and flight tickets hang off a session, so deleting a session
// removes its whole trip plan.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string `json:"id"`

	// UserID is the account that owns this session.
	UserID string `json:"userId"`

	// Title is the human-readable name shown in the session list.
	// Generated from the first user message when not set explicitly.
	Title string `json:"title"`

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last message or edit.
	UpdatedAt int64 `json:"updatedAt"`
}

// Message represents a single chat turn within a session.
type Message struct {
	// ID is the unique identifier for the message (UUID format).
	ID string `json:"id"`

	// SessionID is the session this message belongs to.
	SessionID string `json:"sessionId"`

	// Role is RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Content is the message text. For assistant messages this is the
	// cleaned content with flight payload artifacts stripped.
	Content string `json:"content"`

	// CreatedAt is the Unix timestamp when the message was recorded.
	CreatedAt int64 `json:"createdAt"`
}
