package models

// Money is an amount with a currency code.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Flight represents a flight ticket extracted from an assistant reply.
// Fields beyond From/To are best effort: the extractor fills what it can
// recover from structured JSON or from free text.
type Flight struct {
	// ID is the unique identifier (UUID format), generated when the
	// source payload carries none.
	ID string `json:"id"`

	// SessionID is the session this ticket was extracted in.
	SessionID string `json:"sessionId,omitempty"`

	// From and To are the textual origin and destination. Both required;
	// a candidate missing either is discarded during extraction.
	From string `json:"from"`
	To   string `json:"to"`

	// Departure and Arrival are ISO-8601 datetimes. Empty when the
	// extractor could not recover a time from free text.
	Departure string `json:"departure,omitempty"`
	Arrival   string `json:"arrival,omitempty"`

	Airline      string `json:"airline,omitempty"`
	Number       string `json:"number,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`

	Cost *Money `json:"cost,omitempty"`

	// Notes holds free text; for text-derived flights this is the
	// originating paragraph, kept as an audit trail for the heuristic.
	Notes string `json:"notes,omitempty"`

	// CreatedAt is the Unix timestamp when the ticket was saved.
	CreatedAt int64 `json:"createdAt,omitempty"`
}
