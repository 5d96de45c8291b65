package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/tripdesk/internal/models"
)

// CreateExpense persists a new expense with its split list.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Currency == "" {
		expense.Currency = "USD"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, session_id, description, amount, currency, paid_by, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.SessionID, expense.Description, expense.Amount,
		expense.Currency, expense.PaidBy, expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, participant := range expense.SplitBetween {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, participant, position) VALUES (?, ?, ?)",
			expense.ID, participant, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpenses returns a session's expenses in insertion order, each with
// its split list in entry order.
func (s *SQLiteStore) ListExpenses(ctx context.Context, sessionID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, description, amount, currency, paid_by, date, created_at
		 FROM expenses WHERE session_id = ? ORDER BY created_at, rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(&expense.ID, &expense.SessionID, &expense.Description, &expense.Amount,
			&expense.Currency, &expense.PaidBy, &expense.Date, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		splitRows, err := s.db.QueryContext(ctx,
			"SELECT participant FROM expense_splits WHERE expense_id = ? ORDER BY position",
			expense.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get expense splits: %w", err)
		}
		for splitRows.Next() {
			var participant string
			if err := splitRows.Scan(&participant); err != nil {
				splitRows.Close()
				return nil, fmt.Errorf("failed to scan expense split: %w", err)
			}
			expense.SplitBetween = append(expense.SplitBetween, participant)
		}
		splitRows.Close()
		if err := splitRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
		}
	}

	return expenses, nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense not found: %s", expenseID)
	}
	return nil
}
