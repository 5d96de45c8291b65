// Package service implements the application logic between the HTTP layer
// and storage: authentication, chat sessions, expense splitting and flight
// tickets.
package service

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the resource exists but belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidExpense indicates an expense failed validation.
	ErrInvalidExpense = errors.New("invalid expense")

	// ErrEmptyMessage indicates a chat message with no content.
	ErrEmptyMessage = errors.New("message content is empty")
)
