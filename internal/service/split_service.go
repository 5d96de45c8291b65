package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/tripdesk/internal/metrics"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/settle"
	"github.com/tripdesk/tripdesk/internal/storage"
)

// SplitService manages shared expenses and computes settlement plans.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a split service backed by the given store.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// AddExpense validates and records a shared expense on a session.
// Amounts are normalized to two decimal places before storage so the
// settlement arithmetic never sees sub-cent inputs.
func (s *SplitService) AddExpense(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error) {
	if _, err := s.ownedSession(ctx, userID, expense.SessionID); err != nil {
		return nil, err
	}

	amount := decimal.NewFromFloat(expense.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if expense.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidExpense)
	}
	if len(expense.SplitBetween) == 0 {
		return nil, fmt.Errorf("%w: splitBetween must name at least one participant", ErrInvalidExpense)
	}
	if expense.PaidBy == "" {
		return nil, fmt.Errorf("%w: paidBy is required", ErrInvalidExpense)
	}
	if !lo.Contains(expense.SplitBetween, expense.PaidBy) {
		return nil, fmt.Errorf("%w: paidBy must be included in splitBetween", ErrInvalidExpense)
	}

	expense.Amount = amount.Round(2).InexactFloat64()
	if expense.Currency == "" {
		expense.Currency = "USD"
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns a session's expenses in insertion order.
func (s *SplitService) ListExpenses(ctx context.Context, userID, sessionID string) ([]*models.Expense, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, sessionID)
}

// RemoveExpense deletes an expense from a session.
func (s *SplitService) RemoveExpense(ctx context.Context, userID, sessionID, expenseID string) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return ErrNotFound
	}
	return nil
}

// GetSplits computes per-participant balances and the settlement plan for a
// session's current expenses.
func (s *SplitService) GetSplits(ctx context.Context, userID, sessionID string) ([]settle.Balance, []settle.Settlement, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	balances, settlements := settle.Compute(lo.Map(expenses, func(e *models.Expense, _ int) models.Expense {
		return *e
	}))
	metrics.SettlementsComputed.Inc()
	return balances, settlements, nil
}

func (s *SplitService) ownedSession(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}
