// Package settle computes per-person balances and a minimal transfer plan
// for a list of shared expenses.
package settle

import (
	"math"
	"sort"

	"github.com/tripdesk/tripdesk/internal/models"
)

// Balance is one participant's net position across all expenses.
// Positive means the group owes them money, negative means they owe.
type Balance struct {
	User     string  `json:"user"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Settlement is a single proposed payment from one participant to another.
type Settlement struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// party tracks a remaining owed amount during greedy matching.
// amount is always positive; for debtors it is the magnitude of the debt.
type party struct {
	user   string
	amount float64
}

// round2 rounds to 2 decimal places, half up, with an epsilon nudge so that
// binary float artifacts like 29.999999999999996 land on 30.00.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5+1e-9) / 100
}

// Compute derives balances and settlements from the given expenses.
//
// Each expense credits the payer with the full amount and debits every
// member of the split with an equal share; a payer who is also in the split
// nets naturally. Balances within 0.01 of zero are treated as settled and
// dropped. Settlements are produced by greedily matching the largest
// remaining debtor against the largest remaining creditor, which yields at
// most n-1 transfers for n participants with non-zero balances.
//
// The settlement currency is the currency of the last expense (default
// "USD"); no conversion is performed. Compute is a pure function and never
// fails: an empty split list is tolerated by clamping the divisor to 1,
// though callers are expected to validate expenses before recording them.
func Compute(expenses []models.Expense) ([]Balance, []Settlement) {
	if len(expenses) == 0 {
		return nil, nil
	}

	// Accumulate net positions, preserving first-seen participant order so
	// that equal-magnitude ties resolve deterministically.
	totals := make(map[string]float64)
	var order []string
	add := func(user string, amount float64) {
		if _, seen := totals[user]; !seen {
			order = append(order, user)
		}
		totals[user] += amount
	}

	for _, exp := range expenses {
		count := len(exp.SplitBetween)
		if count == 0 {
			count = 1
		}
		share := exp.Amount / float64(count)

		add(exp.PaidBy, exp.Amount)
		for _, person := range exp.SplitBetween {
			add(person, -share)
		}
	}

	currency := expenses[len(expenses)-1].Currency
	if currency == "" {
		currency = "USD"
	}

	var balances []Balance
	var debtors, creditors []party
	for _, user := range order {
		rounded := round2(totals[user])
		switch {
		case rounded > 0.01:
			creditors = append(creditors, party{user: user, amount: rounded})
		case rounded < -0.01:
			debtors = append(debtors, party{user: user, amount: -rounded})
		default:
			continue // settled
		}
		balances = append(balances, Balance{User: user, Amount: rounded, Currency: currency})
	}

	sort.SliceStable(balances, func(i, j int) bool { return balances[i].Amount > balances[j].Amount })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })

	// Greedy simplify: largest debtor pays largest creditor.
	var settlements []Settlement
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]
		amount := round2(math.Min(debtor.amount, creditor.amount))

		if amount > 0 {
			settlements = append(settlements, Settlement{
				From:     debtor.user,
				To:       creditor.user,
				Amount:   amount,
				Currency: currency,
			})
		}

		debtor.amount = round2(debtor.amount - amount)
		creditor.amount = round2(creditor.amount - amount)

		if debtor.amount <= 0.01 {
			i++
		}
		if creditor.amount <= 0.01 {
			j++
		}
	}

	return balances, settlements
}
