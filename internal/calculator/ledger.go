package calculator

import (
	"fmt"
	"math"
	"sort"

	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
)

// Graph is the raw directed debt graph of a group: owes[debtor][creditor] = amount.
// Both directions of a pair may be non-zero at once; netting is left to the policies.
// Only edges touched by a split or settlement exist.
//
// Every user's volume (the sum of |amount| over all additions touching them) is capped
// at MaxVolume. Any edge, position or pairwise difference is then bounded by twice that,
// so the policies can work on plain int64 arithmetic.
type Graph struct {
	owes   map[string]map[string]money.Amount
	volume map[string]money.Amount
}

// MaxVolume is the largest gross amount a single user may move through one graph.
const MaxVolume = money.Amount(math.MaxInt64 / 2)

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		owes:   make(map[string]map[string]money.Amount),
		volume: make(map[string]money.Amount),
	}
}

// Add records that debtor owes creditor amount more (negative amounts reduce the debt).
func (g *Graph) Add(debtor, creditor string, amount money.Amount) error {
	if debtor == creditor || amount < -money.MaxAmount || amount > money.MaxAmount {
		return fmt.Errorf("%w: edge %s -> %s of %d", ErrInvalidAmount, debtor, creditor, amount)
	}
	debtorVolume, err := g.grow(debtor, amount.Abs())
	if err != nil {
		return err
	}
	creditorVolume, err := g.grow(creditor, amount.Abs())
	if err != nil {
		return err
	}

	row, ok := g.owes[debtor]
	if !ok {
		row = make(map[string]money.Amount)
		g.owes[debtor] = row
	}
	sum, err := money.Add(row[creditor], amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	row[creditor] = sum
	g.volume[debtor] = debtorVolume
	g.volume[creditor] = creditorVolume
	return nil
}

// grow returns user's volume after moving amount more, without recording it.
func (g *Graph) grow(user string, amount money.Amount) (money.Amount, error) {
	v, err := money.Add(g.volume[user], amount)
	if err != nil || v > MaxVolume {
		return 0, fmt.Errorf("%w: history for %q exceeds %s", ErrInvalidAmount, user, MaxVolume)
	}
	return v, nil
}

// Edge returns what debtor owes creditor on the raw graph.
func (g *Graph) Edge(debtor, creditor string) money.Amount {
	return g.owes[debtor][creditor]
}

// Users returns every user on either end of an edge, sorted.
func (g *Graph) Users() []string {
	set := make(map[string]struct{})
	for debtor, row := range g.owes {
		set[debtor] = struct{}{}
		for creditor := range row {
			set[creditor] = struct{}{}
		}
	}
	users := make([]string, 0, len(set))
	for u := range set {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// Positions collapses the graph to one net amount per user:
// position[u] = sum over v of owes[v][u] - owes[u][v]. Positive means net creditor.
// |position[u]| never exceeds the user's volume, so the sums cannot overflow.
func (g *Graph) Positions() map[string]money.Amount {
	positions := make(map[string]money.Amount)
	for debtor, row := range g.owes {
		for creditor, amount := range row {
			positions[debtor] -= amount
			positions[creditor] += amount
		}
	}
	return positions
}

// Aggregate builds the raw debt graph from a group's history.
// Each split adds to owes[debtor][payer]; each settlement subtracts from owes[payer][payee].
func Aggregate(expenses []models.Expense, settlements []models.Settlement) (*Graph, error) {
	g := NewGraph()

	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.UserID == e.PayerID {
				continue
			}
			if !s.Amount.Valid() {
				return nil, fmt.Errorf("%w: split of %d for %q on expense %s", ErrInvalidAmount, s.Amount, s.UserID, e.ID)
			}
			if err := g.Add(s.UserID, e.PayerID, s.Amount); err != nil {
				return nil, err
			}
		}
	}

	for _, s := range settlements {
		if s.PayerID == s.PayeeID {
			return nil, fmt.Errorf("%w: settlement %s pays itself", ErrInvalidAmount, s.ID)
		}
		if s.Amount <= 0 || s.Amount > money.MaxAmount {
			return nil, fmt.Errorf("%w: settlement %s of %d", ErrInvalidAmount, s.ID, s.Amount)
		}
		if err := g.Add(s.PayerID, s.PayeeID, -s.Amount); err != nil {
			return nil, err
		}
	}

	return g, nil
}
