package settle

import (
	"math"
	"testing"

	"github.com/tripdesk/tripdesk/internal/models"
)

func expense(paidBy string, amount float64, split ...string) models.Expense {
	return models.Expense{
		Description:  "test",
		Amount:       amount,
		Currency:     "USD",
		PaidBy:       paidBy,
		SplitBetween: split,
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		expenses     []models.Expense
		validateFunc func(t *testing.T, balances []Balance, settlements []Settlement)
	}{
		{
			name:     "empty input yields empty output",
			expenses: nil,
			validateFunc: func(t *testing.T, balances []Balance, settlements []Settlement) {
				if len(balances) != 0 || len(settlements) != 0 {
					t.Errorf("expected empty results, got %d balances, %d settlements", len(balances), len(settlements))
				}
			},
		},
		{
			name: "one payer, three-way split",
			expenses: []models.Expense{
				expense("Alice", 90, "Alice", "Bob", "Carol"),
			},
			validateFunc: func(t *testing.T, balances []Balance, settlements []Settlement) {
				// Alice +60, Bob -30, Carol -30
				if len(balances) != 3 {
					t.Fatalf("expected 3 balances, got %d", len(balances))
				}
				if balances[0].User != "Alice" || math.Abs(balances[0].Amount-60) > 0.001 {
					t.Errorf("balances[0] = %+v, want Alice +60", balances[0])
				}
				if len(settlements) != 2 {
					t.Fatalf("expected 2 settlements, got %d", len(settlements))
				}
				for _, s := range settlements {
					if s.To != "Alice" || math.Abs(s.Amount-30) > 0.001 {
						t.Errorf("settlement = %+v, want 30 to Alice", s)
					}
				}
			},
		},
		{
			name: "mutual expenses cancel out",
			expenses: []models.Expense{
				expense("Alice", 30, "Alice", "Bob"),
				expense("Bob", 30, "Alice", "Bob"),
			},
			validateFunc: func(t *testing.T, balances []Balance, settlements []Settlement) {
				if len(balances) != 0 {
					t.Errorf("expected all settled, got balances %+v", balances)
				}
				if len(settlements) != 0 {
					t.Errorf("expected no settlements, got %+v", settlements)
				}
			},
		},
		{
			name: "uneven thirds round to cents",
			expenses: []models.Expense{
				expense("Alice", 100, "Alice", "Bob", "Carol"),
			},
			validateFunc: func(t *testing.T, balances []Balance, settlements []Settlement) {
				// Shares are 33.333...: Alice +66.67, Bob and Carol -33.33 each.
				if len(balances) != 3 {
					t.Fatalf("expected 3 balances, got %d", len(balances))
				}
				if math.Abs(balances[0].Amount-66.67) > 0.001 {
					t.Errorf("creditor balance = %v, want 66.67", balances[0].Amount)
				}
				if math.Abs(balances[1].Amount+33.33) > 0.001 {
					t.Errorf("debtor balance = %v, want -33.33", balances[1].Amount)
				}
			},
		},
		{
			name: "payer outside the split owes nothing",
			expenses: []models.Expense{
				expense("Alice", 40, "Bob", "Carol"),
			},
			validateFunc: func(t *testing.T, balances []Balance, settlements []Settlement) {
				if len(settlements) != 2 {
					t.Fatalf("expected 2 settlements, got %d", len(settlements))
				}
				for _, s := range settlements {
					if s.To != "Alice" || math.Abs(s.Amount-20) > 0.001 {
						t.Errorf("settlement = %+v, want 20 to Alice", s)
					}
				}
			},
		},
		{
			name: "settlement currency follows last expense",
			expenses: []models.Expense{
				expense("Alice", 50, "Alice", "Bob"),
				{
					Amount:       20,
					Currency:     "EUR",
					PaidBy:       "Bob",
					SplitBetween: []string{"Alice", "Bob"},
				},
			},
			validateFunc: func(t *testing.T, balances []Balance, settlements []Settlement) {
				for _, b := range balances {
					if b.Currency != "EUR" {
						t.Errorf("balance currency = %q, want EUR", b.Currency)
					}
				}
				for _, s := range settlements {
					if s.Currency != "EUR" {
						t.Errorf("settlement currency = %q, want EUR", s.Currency)
					}
				}
			},
		},
		{
			name: "empty split list does not divide by zero",
			expenses: []models.Expense{
				{Amount: 25, PaidBy: "Alice", SplitBetween: nil},
			},
			validateFunc: func(t *testing.T, balances []Balance, settlements []Settlement) {
				// Alice is credited the full amount with nobody owing it.
				if len(balances) != 1 || balances[0].User != "Alice" {
					t.Fatalf("balances = %+v, want single Alice entry", balances)
				}
				if len(settlements) != 0 {
					t.Errorf("expected no settlements, got %+v", settlements)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, settlements := Compute(tt.expenses)
			tt.validateFunc(t, balances, settlements)
		})
	}
}

// TestCompute_ZeroSum checks that balances always sum to zero within
// rounding tolerance, and that applying every settlement zeroes them.
func TestCompute_ZeroSum(t *testing.T) {
	expenses := []models.Expense{
		expense("Alice", 123.45, "Alice", "Bob", "Carol"),
		expense("Bob", 19.99, "Bob", "Carol"),
		expense("Carol", 77.10, "Alice", "Carol"),
		expense("Dave", 8.01, "Alice", "Bob", "Carol", "Dave"),
	}

	balances, settlements := Compute(expenses)

	var sum float64
	remaining := make(map[string]float64)
	for _, b := range balances {
		sum += b.Amount
		remaining[b.User] = b.Amount
	}
	if math.Abs(sum) > 0.02 {
		t.Errorf("balances sum to %v, want 0 within 0.02", sum)
	}

	for _, s := range settlements {
		if s.Amount <= 0 {
			t.Errorf("non-positive settlement amount: %+v", s)
		}
		remaining[s.From] += s.Amount
		remaining[s.To] -= s.Amount
	}
	for user, amount := range remaining {
		if math.Abs(amount) > 0.02 {
			t.Errorf("user %s left with %v after applying settlements", user, amount)
		}
	}
}

// TestCompute_Minimality checks the n-1 bound of greedy debt simplification.
func TestCompute_Minimality(t *testing.T) {
	expenses := []models.Expense{
		expense("Alice", 100, "Alice", "Bob", "Carol", "Dave"),
		expense("Bob", 60, "Bob", "Carol"),
		expense("Carol", 45, "Alice", "Dave"),
	}

	balances, settlements := Compute(expenses)
	if max := len(balances) - 1; len(settlements) > max {
		t.Errorf("got %d settlements for %d non-zero balances, want at most %d",
			len(settlements), len(balances), max)
	}
}

// TestCompute_BalancesSorted checks creditors-first descending order.
func TestCompute_BalancesSorted(t *testing.T) {
	expenses := []models.Expense{
		expense("Alice", 90, "Alice", "Bob", "Carol"),
		expense("Bob", 30, "Bob", "Carol"),
	}

	balances, _ := Compute(expenses)
	for i := 1; i < len(balances); i++ {
		if balances[i-1].Amount < balances[i].Amount {
			t.Errorf("balances not sorted descending: %+v", balances)
		}
	}
}

// TestCompute_Deterministic checks that repeated runs agree, including the
// pairing chosen among equal-magnitude parties.
func TestCompute_Deterministic(t *testing.T) {
	expenses := []models.Expense{
		expense("Alice", 60, "Bob", "Carol"),
		expense("Dave", 60, "Bob", "Carol"),
	}

	firstBalances, firstSettlements := Compute(expenses)
	for range 10 {
		balances, settlements := Compute(expenses)
		if len(balances) != len(firstBalances) || len(settlements) != len(firstSettlements) {
			t.Fatal("result sizes changed between runs")
		}
		for i := range balances {
			if balances[i] != firstBalances[i] {
				t.Fatalf("balances differ between runs: %+v vs %+v", balances[i], firstBalances[i])
			}
		}
		for i := range settlements {
			if settlements[i] != firstSettlements[i] {
				t.Fatalf("settlements differ between runs: %+v vs %+v", settlements[i], firstSettlements[i])
			}
		}
	}
}
