package models

// Expense represents a shared trip cost fronted by one participant.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// SessionID is the session (trip) this expense belongs to.
	SessionID string `json:"sessionId,omitempty"`

	// Description is a free text label (e.g. "Hotel night 1").
	Description string `json:"description"`

	// Amount is the total cost. Must be positive.
	Amount float64 `json:"amount"`

	// Currency is an ISO-like currency code. Defaults to "USD".
	Currency string `json:"currency"`

	// PaidBy is the participant who fronted the money.
	PaidBy string `json:"paidBy"`

	// SplitBetween lists the participants sharing the cost, in the order
	// they were entered. Must be non-empty and include PaidBy.
	SplitBetween []string `json:"splitBetween"`

	// Date is an informational ISO timestamp for when the cost occurred.
	Date string `json:"date,omitempty"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"createdAt"`
}
