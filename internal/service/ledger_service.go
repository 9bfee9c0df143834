package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/circleledger/internal/calculator"
	"github.com/mmynk/circleledger/internal/ledger"
	"github.com/mmynk/circleledger/internal/metrics"
	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
	"github.com/mmynk/circleledger/internal/storage"
	"github.com/mmynk/circleledger/pkg/api"
	"github.com/mmynk/circleledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	store  storage.Store
	engine *ledger.Engine
}

// NewLedgerService creates a new LedgerService backed by store, computing through engine.
func NewLedgerService(store storage.Store, engine *ledger.Engine) *LedgerService {
	return &LedgerService{store: store, engine: engine}
}

func parseSplitType(s string) (models.SplitType, error) {
	policy, err := models.ParseSplitType(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", calculator.ErrUnknownPolicy, err)
	}
	return policy, nil
}

// PreviewSplit computes the shares of a prospective expense without recording it.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	slog.Info("PreviewSplit request received",
		"group_id", req.Msg.GroupId,
		"split_type", req.Msg.SplitType,
		"amount", req.Msg.Amount,
		"participants", len(req.Msg.Splits),
	)

	policy, err := parseSplitType(req.Msg.SplitType)
	if err != nil {
		return nil, connectError(err)
	}

	alloc, err := s.engine.ComputeSplits(ctx, req.Msg.GroupId, money.Amount(req.Msg.Amount), policy, req.Msg.PayerId, fromAPISplitInputs(req.Msg.Splits))
	if err != nil {
		slog.Warn("PreviewSplit failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.PreviewSplitResponse{
		Shares:     toAPIShares(alloc.Shares),
		PayerShare: int64(alloc.PayerShare()),
	}), nil
}

// AddExpense splits an expense and records it with its splits.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupId,
		"payer_id", req.Msg.PayerId,
		"split_type", req.Msg.SplitType,
		"amount", req.Msg.Amount,
	)

	policy, err := parseSplitType(req.Msg.SplitType)
	if err != nil {
		return nil, connectError(err)
	}

	alloc, err := s.engine.ComputeSplits(ctx, req.Msg.GroupId, money.Amount(req.Msg.Amount), policy, req.Msg.PayerId, fromAPISplitInputs(req.Msg.Splits))
	if err != nil {
		slog.Warn("AddExpense rejected", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	expense := &models.Expense{
		GroupID:     req.Msg.GroupId,
		PayerID:     alloc.PayerID,
		Amount:      alloc.Total,
		Description: strings.TrimSpace(req.Msg.Description),
		SplitType:   policy,
		Splits:      alloc.Splits(),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}
	metrics.ExpensesRecorded.WithLabelValues(string(policy)).Inc()

	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"payer_share", alloc.PayerShare(),
		"splits", len(expense.Splits),
	)

	return connect.NewResponse(&api.AddExpenseResponse{
		Expense: toAPIExpense(expense),
		Shares:  toAPIShares(alloc.Shares),
	}), nil
}

// ListExpenses returns a group's expenses oldest first, with their splits.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupId)

	expenses, err := s.store.ListExpensesWithSplits(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	apiExpenses := make([]*api.Expense, len(expenses))
	for i := range expenses {
		apiExpenses[i] = toAPIExpense(&expenses[i])
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupId, "count", len(expenses))

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: apiExpenses}), nil
}

// GetExpense returns one expense with its splits.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseId)

	if req.Msg.ExpenseId == "" {
		return nil, invalidArgument("expense_id is required")
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		slog.Warn("GetExpense failed", "expense_id", req.Msg.ExpenseId, "error", err)
		return nil, connectError(err)
	}

	slog.Info("GetExpense successful", "expense_id", expense.ID)

	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense and its splits. Balances follow on the next read.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseId)

	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseId); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseId, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseId)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// SettleUp records a payment from one member to another. Overpaying is allowed; it
// reverses the direction of the pair's debt.
func (s *LedgerService) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	slog.Info("SettleUp request received",
		"group_id", req.Msg.GroupId,
		"payer_id", req.Msg.PayerId,
		"payee_id", req.Msg.PayeeId,
		"amount", req.Msg.Amount,
	)

	amount := money.Amount(req.Msg.Amount)
	if amount <= 0 || !amount.Valid() {
		return nil, connectError(fmt.Errorf("%w: settlement amount must be between 1 and %d minor units, got %d",
			calculator.ErrInvalidAmount, money.MaxAmount, req.Msg.Amount))
	}
	if req.Msg.PayerId == req.Msg.PayeeId {
		return nil, invalidArgument("payer and payee must be different users")
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("SettleUp failed - group lookup", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}
	for _, userID := range []string{req.Msg.PayerId, req.Msg.PayeeId} {
		if !group.HasMember(userID) {
			return nil, connectError(fmt.Errorf("%w: %q", calculator.ErrNotAMember, userID))
		}
	}

	settlement := &models.Settlement{
		GroupID: group.ID,
		PayerID: req.Msg.PayerId,
		PayeeID: req.Msg.PayeeId,
		Amount:  amount,
		Note:    strings.TrimSpace(req.Msg.Note),
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("SettleUp failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}
	metrics.SettlementsRecorded.Inc()

	slog.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", group.ID, "amount", amount)

	return connect.NewResponse(&api.SettleUpResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListSettlements returns a group's settlements oldest first.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupId)

	settlements, err := s.store.ListSettlements(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	apiSettlements := make([]*api.Settlement, len(settlements))
	for i := range settlements {
		apiSettlements[i] = toAPISettlement(&settlements[i])
	}

	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: apiSettlements}), nil
}

// GetBalances reports who owes whom in a group. The request's mode wins over the
// group's own mode when set.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	groupID := req.Msg.GroupId
	slog.Info("GetBalances request received", "group_id", groupID, "mode", req.Msg.Mode)

	if groupID == "" {
		return nil, invalidArgument("group_id is required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetBalances failed - group not found", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}
	mode, err := parseMode(req.Msg.Mode, group.Mode)
	if err != nil {
		return nil, connectError(err)
	}

	result, err := s.engine.ComputeBalances(ctx, groupID, mode)
	if err != nil {
		slog.Error("GetBalances failed", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("GetBalances successful",
		"group_id", groupID,
		"mode", mode,
		"balances_count", len(result.Balances),
	)

	return connect.NewResponse(toAPIBalances(result)), nil
}
