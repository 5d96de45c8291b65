package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tripdesk/tripdesk/internal/models"
)

func TestSQLiteStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "tripdesk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" || user.CreatedAt == 0 {
		t.Fatal("Expected user ID and CreatedAt to be generated")
	}

	t.Run("GetUserByEmail round trip", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID || got.Name != "Alice" {
			t.Errorf("got %+v, want stored user", got)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other Alice", "hash2")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("Expected error for duplicate email, got nil")
		}
	})

	session := &models.Session{UserID: user.ID}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	t.Run("CreateSession generates ID and default title", func(t *testing.T) {
		if session.ID == "" {
			t.Error("Expected session ID to be generated")
		}
		if session.Title != "New Chat" {
			t.Errorf("Title = %q, want default", session.Title)
		}
	})

	t.Run("messages keep chronological order", func(t *testing.T) {
		for _, m := range []*models.Message{
			{SessionID: session.ID, Role: models.RoleUser, Content: "plan me a trip"},
			{SessionID: session.ID, Role: models.RoleAssistant, Content: "sure, where to?"},
			{SessionID: session.ID, Role: models.RoleUser, Content: "Tokyo"},
		} {
			if err := store.AppendMessage(ctx, m); err != nil {
				t.Fatalf("AppendMessage failed: %v", err)
			}
		}

		messages, err := store.ListMessages(ctx, session.ID)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(messages) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(messages))
		}
		if messages[0].Content != "plan me a trip" || messages[2].Content != "Tokyo" {
			t.Errorf("messages out of order: %q ... %q", messages[0].Content, messages[2].Content)
		}
	})

	t.Run("expense round trip preserves split order", func(t *testing.T) {
		expense := &models.Expense{
			SessionID:    session.ID,
			Description:  "Dinner",
			Amount:       90,
			PaidBy:       "Alice",
			SplitBetween: []string{"Carol", "Alice", "Bob"},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.Currency != "USD" {
			t.Errorf("Currency = %q, want USD default", expense.Currency)
		}

		expenses, err := store.ListExpenses(ctx, session.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 1 {
			t.Fatalf("expected 1 expense, got %d", len(expenses))
		}
		got := expenses[0]
		want := []string{"Carol", "Alice", "Bob"}
		if len(got.SplitBetween) != len(want) {
			t.Fatalf("split list = %v, want %v", got.SplitBetween, want)
		}
		for i := range want {
			if got.SplitBetween[i] != want[i] {
				t.Errorf("split order not preserved: %v, want %v", got.SplitBetween, want)
				break
			}
		}
	})

	t.Run("flights round trip with and without cost", func(t *testing.T) {
		flights := []models.Flight{
			{From: "JFK", To: "LAX", Departure: "2026-01-15T10:30:00Z",
				Cost: &models.Money{Amount: 289, Currency: "USD"}},
			{From: "LAX", To: "HNL"},
		}
		if err := store.SaveFlights(ctx, session.ID, flights); err != nil {
			t.Fatalf("SaveFlights failed: %v", err)
		}

		got, err := store.ListFlights(ctx, session.ID)
		if err != nil {
			t.Fatalf("ListFlights failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 flights, got %d", len(got))
		}
		if got[0].Cost == nil || got[0].Cost.Amount != 289 {
			t.Errorf("first flight cost = %+v, want 289 USD", got[0].Cost)
		}
		if got[1].Cost != nil {
			t.Errorf("second flight cost = %+v, want nil", got[1].Cost)
		}
	})

	t.Run("delete expense", func(t *testing.T) {
		expenses, _ := store.ListExpenses(ctx, session.ID)
		if err := store.DeleteExpense(ctx, expenses[0].ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, "nonexistent"); err == nil {
			t.Error("Expected error for nonexistent expense, got nil")
		}
	})

	t.Run("ListSessions orders by recent activity", func(t *testing.T) {
		second := &models.Session{UserID: user.ID, Title: "Older trip", CreatedAt: 1, UpdatedAt: 1}
		if err := store.CreateSession(ctx, second); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		sessions, err := store.ListSessions(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(sessions))
		}
		if sessions[0].ID != session.ID {
			t.Errorf("expected most recently updated session first")
		}
	})

	t.Run("DeleteSession cascades", func(t *testing.T) {
		if err := store.DeleteSession(ctx, session.ID); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		if _, err := store.GetSession(ctx, session.ID); err == nil {
			t.Error("Expected error for deleted session, got nil")
		}
		messages, err := store.ListMessages(ctx, session.ID)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(messages) != 0 {
			t.Errorf("expected messages to cascade, got %d", len(messages))
		}
		flights, err := store.ListFlights(ctx, session.ID)
		if err != nil {
			t.Fatalf("ListFlights failed: %v", err)
		}
		if len(flights) != 0 {
			t.Errorf("expected flights to cascade, got %d", len(flights))
		}
	})
}
