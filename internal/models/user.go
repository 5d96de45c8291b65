package models

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"createdAt"`
}

// NewUser creates an unsaved user. The store assigns ID and CreatedAt on insert.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	}
}
