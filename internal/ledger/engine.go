// Package ledger is the entry point for balance and split computation over a group's
// recorded history.
//
// The Engine holds no state between calls: every ComputeBalances call reads the full
// expense and settlement history from its Source and derives balances from scratch.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/circleledger/internal/calculator"
	"github.com/mmynk/circleledger/internal/metrics"
	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
)

// Source supplies a group's recorded history. Implementations must return expenses
// together with all of their splits (never a header without its splits).
type Source interface {
	ListExpensesWithSplits(ctx context.Context, groupID string) ([]models.Expense, error)
	ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error)
	ListMembers(ctx context.Context, groupID string) ([]models.User, error)
}

// Position summarizes one user's standing in a group.
// Paid is what the user fronted for others plus settlements they paid; Owed is their
// split debts plus settlements they received. Net = Paid - Owed; positive means owed money.
type Position struct {
	UserID string
	Paid   money.Amount
	Owed   money.Amount
	Net    money.Amount
}

// Result is the outcome of a balance computation.
type Result struct {
	GroupID   string
	Mode      models.SettlementMode
	Balances  []calculator.Balance
	Positions []Position
}

// Settled reports whether nothing is outstanding in the group.
func (r *Result) Settled() bool {
	return len(r.Balances) == 0
}

// Engine computes splits and balances for groups backed by a Source.
type Engine struct {
	src           Source
	dustThreshold money.Amount
}

// Option configures an Engine.
type Option func(*Engine)

// WithDustThreshold sets the SIMPLIFY epsilon below which a net position counts as settled.
func WithDustThreshold(threshold money.Amount) Option {
	return func(e *Engine) {
		if threshold >= 0 {
			e.dustThreshold = threshold
		}
	}
}

// New creates an Engine reading from src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, dustThreshold: calculator.DefaultDustThreshold}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeSplits splits total for an expense in groupID paid by payerID.
// Nothing is persisted; the caller stores the returned allocation's splits.
func (e *Engine) ComputeSplits(ctx context.Context, groupID string, total money.Amount, policy models.SplitType, payerID string, inputs []calculator.SplitInput) (*calculator.Allocation, error) {
	members, err := e.src.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}

	alloc, err := calculator.ComputeSplits(total, policy, memberIDs, payerID, inputs)
	if err != nil {
		if reason := calculator.Reason(err); reason != "" {
			metrics.SplitRejections.WithLabelValues(reason).Inc()
		}
		return nil, err
	}

	slog.Debug("Splits computed",
		"group_id", groupID,
		"split_type", policy,
		"total", total,
		"shares", len(alloc.Shares),
	)
	return alloc, nil
}

// ComputeBalances derives the outstanding debts of groupID under mode.
func (e *Engine) ComputeBalances(ctx context.Context, groupID string, mode models.SettlementMode) (*Result, error) {
	if mode != models.ModePairwise && mode != models.ModeSimplify {
		metrics.BalanceComputations.WithLabelValues("unknown", "error").Inc()
		return nil, fmt.Errorf("%w: settlement mode %q", calculator.ErrUnknownPolicy, mode)
	}

	start := time.Now()
	result, err := e.computeBalances(ctx, groupID, mode)
	metrics.BalanceDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BalanceComputations.WithLabelValues(string(mode), "error").Inc()
		return nil, err
	}

	metrics.BalanceComputations.WithLabelValues(string(mode), "ok").Inc()
	metrics.BalanceEdges.WithLabelValues(string(mode)).Observe(float64(len(result.Balances)))
	return result, nil
}

func (e *Engine) computeBalances(ctx context.Context, groupID string, mode models.SettlementMode) (*Result, error) {
	expenses, err := e.src.ListExpensesWithSplits(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	settlements, err := e.src.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	members, err := e.src.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	graph, err := calculator.Aggregate(expenses, settlements)
	if err != nil {
		return nil, err
	}
	balances, err := calculator.Settle(graph, mode, e.dustThreshold)
	if err != nil {
		return nil, err
	}

	positions, err := buildPositions(members, expenses, settlements, graph)
	if err != nil {
		return nil, err
	}

	slog.Debug("Balances computed",
		"group_id", groupID,
		"mode", mode,
		"expenses", len(expenses),
		"settlements", len(settlements),
		"balances", len(balances),
	)

	return &Result{
		GroupID:   groupID,
		Mode:      mode,
		Balances:  balances,
		Positions: positions,
	}, nil
}

// buildPositions lists every member in join order, followed by any other user on the graph.
func buildPositions(members []models.User, expenses []models.Expense, settlements []models.Settlement, graph *calculator.Graph) ([]Position, error) {
	byUser := make(map[string]*Position)
	var order []string
	get := func(userID string) *Position {
		p, ok := byUser[userID]
		if !ok {
			p = &Position{UserID: userID}
			byUser[userID] = p
			order = append(order, userID)
		}
		return p
	}

	for _, m := range members {
		get(m.ID)
	}
	for _, userID := range graph.Users() {
		get(userID)
	}

	credit := func(payer, debtor string, amount money.Amount) error {
		p, d := get(payer), get(debtor)
		paid, err := money.Add(p.Paid, amount)
		if err != nil {
			return fmt.Errorf("%w: paid by %s: %v", calculator.ErrInvalidAmount, payer, err)
		}
		owed, err := money.Add(d.Owed, amount)
		if err != nil {
			return fmt.Errorf("%w: owed by %s: %v", calculator.ErrInvalidAmount, debtor, err)
		}
		p.Paid, d.Owed = paid, owed
		return nil
	}
	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.UserID == e.PayerID {
				continue
			}
			if err := credit(e.PayerID, s.UserID, s.Amount); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range settlements {
		if err := credit(s.PayerID, s.PayeeID, s.Amount); err != nil {
			return nil, err
		}
	}

	net := graph.Positions()
	out := make([]Position, len(order))
	for i, userID := range order {
		p := byUser[userID]
		p.Net = net[userID]
		out[i] = *p
	}
	return out, nil
}
