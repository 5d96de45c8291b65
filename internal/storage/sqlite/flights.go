package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/tripdesk/internal/models"
)

// SaveFlights persists a batch of extracted flights for a session.
func (s *SQLiteStore) SaveFlights(ctx context.Context, sessionID string, flights []models.Flight) error {
	if len(flights) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for i := range flights {
		flight := &flights[i]
		if flight.ID == "" {
			flight.ID = uuid.New().String()
		}
		if flight.CreatedAt == 0 {
			flight.CreatedAt = now
		}
		flight.SessionID = sessionID

		var costAmount, costCurrency interface{}
		if flight.Cost != nil {
			costAmount = flight.Cost.Amount
			costCurrency = flight.Cost.Currency
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO flights (id, session_id, origin, destination, departure, arrival,
			                      airline, number, confirmation, cost_amount, cost_currency, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			flight.ID, sessionID, flight.From, flight.To, flight.Departure, flight.Arrival,
			flight.Airline, flight.Number, flight.Confirmation, costAmount, costCurrency,
			flight.Notes, flight.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert flight: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListFlights returns a session's flight tickets in insertion order.
func (s *SQLiteStore) ListFlights(ctx context.Context, sessionID string) ([]*models.Flight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, origin, destination, departure, arrival,
		        airline, number, confirmation, cost_amount, cost_currency, notes, created_at
		 FROM flights WHERE session_id = ? ORDER BY created_at, rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	defer rows.Close()

	var flights []*models.Flight
	for rows.Next() {
		flight := &models.Flight{}
		var costAmount sql.NullFloat64
		var costCurrency sql.NullString

		if err := rows.Scan(&flight.ID, &flight.SessionID, &flight.From, &flight.To,
			&flight.Departure, &flight.Arrival, &flight.Airline, &flight.Number,
			&flight.Confirmation, &costAmount, &costCurrency, &flight.Notes, &flight.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}

		if costAmount.Valid {
			flight.Cost = &models.Money{Amount: costAmount.Float64}
			if costCurrency.Valid {
				flight.Cost.Currency = costCurrency.String
			}
		}
		flights = append(flights, flight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flights: %w", err)
	}
	return flights, nil
}

// DeleteFlight removes a flight ticket by ID.
func (s *SQLiteStore) DeleteFlight(ctx context.Context, flightID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM flights WHERE id = ?", flightID)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("flight not found: %s", flightID)
	}
	return nil
}
