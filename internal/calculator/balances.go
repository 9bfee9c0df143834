package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
)

// DefaultDustThreshold is the SIMPLIFY epsilon. Integer minor units leave no rounding
// dust, so by default every non-zero position takes part.
const DefaultDustThreshold money.Amount = 0

// Balance is one outstanding debt: From owes To Amount (always positive).
type Balance struct {
	From   string
	To     string
	Amount money.Amount
}

// Settle applies the settlement policy selected by mode to the raw graph.
func Settle(g *Graph, mode models.SettlementMode, dustThreshold money.Amount) ([]Balance, error) {
	switch mode {
	case models.ModePairwise:
		return Pairwise(g), nil
	case models.ModeSimplify:
		return Simplify(g, dustThreshold), nil
	}
	return nil, fmt.Errorf("%w: settlement mode %q", ErrUnknownPolicy, mode)
}

// Pairwise nets each pair of users that ever transacted and keeps the bilateral structure.
// Every unordered pair is visited once under its canonical key (smaller ID first), so
// both directions are never emitted. Output is ordered by canonical pair.
func Pairwise(g *Graph) []Balance {
	type pair struct{ lo, hi string }

	seen := make(map[pair]bool)
	var pairs []pair
	for debtor, row := range g.owes {
		for creditor := range row {
			p := pair{debtor, creditor}
			if creditor < debtor {
				p = pair{creditor, debtor}
			}
			if !seen[p] {
				seen[p] = true
				pairs = append(pairs, p)
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].lo != pairs[j].lo {
			return pairs[i].lo < pairs[j].lo
		}
		return pairs[i].hi < pairs[j].hi
	})

	var balances []Balance
	for _, p := range pairs {
		net := g.Edge(p.lo, p.hi) - g.Edge(p.hi, p.lo)
		switch {
		case net > 0:
			balances = append(balances, Balance{From: p.lo, To: p.hi, Amount: net})
		case net < 0:
			balances = append(balances, Balance{From: p.hi, To: p.lo, Amount: -net})
		}
	}
	return balances
}

type position struct {
	userID string
	amount money.Amount
}

// Simplify collapses the graph to net positions and greedily matches the largest debtor
// with the largest creditor until everyone is settled.
//
// Users whose position is within dustThreshold of zero are treated as settled. Ties in
// position are broken by user ID so identical input always yields identical transfers.
// The greedy match is not guaranteed to reach the minimal transfer count.
func Simplify(g *Graph, dustThreshold money.Amount) []Balance {
	var debtors, creditors []position
	for userID, amount := range g.Positions() {
		switch {
		case amount < -dustThreshold:
			debtors = append(debtors, position{userID, amount})
		case amount > dustThreshold:
			creditors = append(creditors, position{userID, amount})
		}
	}

	// Most negative first.
	sort.Slice(debtors, func(i, j int) bool {
		if debtors[i].amount != debtors[j].amount {
			return debtors[i].amount < debtors[j].amount
		}
		return debtors[i].userID < debtors[j].userID
	})
	// Largest first.
	sort.Slice(creditors, func(i, j int) bool {
		if creditors[i].amount != creditors[j].amount {
			return creditors[i].amount > creditors[j].amount
		}
		return creditors[i].userID < creditors[j].userID
	})

	var balances []Balance
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := min(-d.amount, c.amount)
		if amount > 0 {
			balances = append(balances, Balance{From: d.userID, To: c.userID, Amount: amount})
		}

		d.amount += amount
		c.amount -= amount

		if d.amount >= -dustThreshold {
			i++
		}
		if c.amount <= dustThreshold {
			j++
		}
	}
	return balances
}
