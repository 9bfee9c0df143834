package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/circleledger/pkg/api"
)

type circle struct {
	testClients
	groupID           string
	alice, bob, carol string
}

func setupCircle(t *testing.T) circle {
	t.Helper()
	c := setupTestServer(t)
	alice := createUser(t, c, "alice")
	bob := createUser(t, c, "bob")
	carol := createUser(t, c, "carol")
	return circle{
		testClients: c,
		groupID:     createGroup(t, c, "Flat", alice, bob, carol),
		alice:       alice,
		bob:         bob,
		carol:       carol,
	}
}

func (c circle) balances(t *testing.T, mode string) *api.GetBalancesResponse {
	t.Helper()
	resp, err := c.ledger.GetBalances(context.Background(), connect.NewRequest(&api.GetBalancesRequest{
		GroupId: c.groupID,
		Mode:    mode,
	}))
	require.NoError(t, err)
	return resp.Msg
}

func balance(from, to string, amount int64) *api.Balance {
	return &api.Balance{From: from, To: to, Amount: amount}
}

func TestLedger_EndToEnd(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()

	added, err := c.ledger.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		GroupId:     c.groupID,
		PayerId:     c.alice,
		Amount:      900,
		Description: "Groceries",
		SplitType:   "EQUAL",
	}))
	require.NoError(t, err)

	assert.Equal(t, []*api.Share{
		{UserId: c.alice, Amount: 300},
		{UserId: c.bob, Amount: 300},
		{UserId: c.carol, Amount: 300},
	}, added.Msg.Shares)
	assert.ElementsMatch(t, []*api.ExpenseSplit{
		{UserId: c.bob, Amount: 300},
		{UserId: c.carol, Amount: 300},
	}, added.Msg.Expense.Splits, "payer's own share is not persisted")

	got := c.balances(t, "")
	assert.Equal(t, "PAIRWISE", got.Mode)
	assert.False(t, got.Settled)
	assert.ElementsMatch(t, []*api.Balance{
		balance(c.bob, c.alice, 300),
		balance(c.carol, c.alice, 300),
	}, got.Balances)
	assert.Equal(t, []*api.Position{
		{UserId: c.alice, Paid: 600, Owed: 0, Net: 600},
		{UserId: c.bob, Paid: 0, Owed: 300, Net: -300},
		{UserId: c.carol, Paid: 0, Owed: 300, Net: -300},
	}, got.Positions)

	settled, err := c.ledger.SettleUp(ctx, connect.NewRequest(&api.SettleUpRequest{
		GroupId: c.groupID,
		PayerId: c.bob,
		PayeeId: c.alice,
		Amount:  300,
		Note:    "cash",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, settled.Msg.Settlement.Id)
	assert.Equal(t, "cash", settled.Msg.Settlement.Note)

	got = c.balances(t, "")
	assert.Equal(t, []*api.Balance{balance(c.carol, c.alice, 300)}, got.Balances)

	list, err := c.ledger.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{GroupId: c.groupID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Settlements, 1)
	assert.Equal(t, int64(300), list.Msg.Settlements[0].Amount)
}

func TestLedger_SimplifyCollapsesChain(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()

	// alice owes bob 100, bob owes carol 100.
	for _, e := range []struct{ payer, debtor string }{{c.bob, c.alice}, {c.carol, c.bob}} {
		_, err := c.ledger.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
			GroupId: c.groupID, PayerId: e.payer, Amount: 100, SplitType: "EXACT",
			Splits: []*api.SplitInput{{UserId: e.debtor, Amount: 100}},
		}))
		require.NoError(t, err)
	}

	pairwise := c.balances(t, "PAIRWISE")
	assert.ElementsMatch(t, []*api.Balance{
		balance(c.alice, c.bob, 100),
		balance(c.bob, c.carol, 100),
	}, pairwise.Balances)

	simplified := c.balances(t, "simplify")
	assert.Equal(t, "SIMPLIFY", simplified.Mode)
	assert.Equal(t, []*api.Balance{balance(c.alice, c.carol, 100)}, simplified.Balances)

	// The group's own mode is used when the request leaves it empty.
	_, err := c.groups.SetMode(ctx, connect.NewRequest(&api.SetModeRequest{GroupId: c.groupID, Mode: "SIMPLIFY"}))
	require.NoError(t, err)
	assert.Equal(t, simplified.Balances, c.balances(t, "").Balances)
}

func TestLedger_PreviewSplit(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()

	resp, err := c.ledger.PreviewSplit(ctx, connect.NewRequest(&api.PreviewSplitRequest{
		GroupId:   c.groupID,
		PayerId:   c.alice,
		Amount:    1001,
		SplitType: "PERCENT",
		Splits: []*api.SplitInput{
			{UserId: c.alice, Percent: decimal.NewFromInt(50)},
			{UserId: c.bob, Percent: decimal.NewFromInt(50)},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, []*api.Share{
		{UserId: c.alice, Amount: 500},
		{UserId: c.bob, Amount: 501},
	}, resp.Msg.Shares)
	assert.Equal(t, int64(500), resp.Msg.PayerShare)

	expenses, err := c.ledger.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupId: c.groupID}))
	require.NoError(t, err)
	assert.Empty(t, expenses.Msg.Expenses, "preview must not persist anything")
}

func TestLedger_GetExpense(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()

	added, err := c.ledger.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		GroupId:     c.groupID,
		PayerId:     c.bob,
		Amount:      300,
		Description: "Taxi",
		SplitType:   "EQUAL",
	}))
	require.NoError(t, err)

	got, err := c.ledger.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseId: added.Msg.Expense.Id}))
	require.NoError(t, err)
	assert.Equal(t, added.Msg.Expense.Id, got.Msg.Expense.Id)
	assert.Equal(t, "Taxi", got.Msg.Expense.Description)
	assert.Equal(t, int64(300), got.Msg.Expense.Amount)
	assert.ElementsMatch(t, []*api.ExpenseSplit{
		{UserId: c.alice, Amount: 100},
		{UserId: c.carol, Amount: 100},
	}, got.Msg.Expense.Splits)

	_, err = c.ledger.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseId: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = c.ledger.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestLedger_AddExpenseRejections(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()
	outsider := createUser(t, c.testClients, "mallory")

	tests := []struct {
		name string
		req  *api.AddExpenseRequest
		code connect.Code
	}{
		{
			name: "exact mismatch",
			req: &api.AddExpenseRequest{GroupId: c.groupID, PayerId: c.alice, Amount: 1000, SplitType: "EXACT",
				Splits: []*api.SplitInput{{UserId: c.bob, Amount: 400}, {UserId: c.carol, Amount: 500}}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "percentages short of 100",
			req: &api.AddExpenseRequest{GroupId: c.groupID, PayerId: c.alice, Amount: 1000, SplitType: "PERCENT",
				Splits: []*api.SplitInput{{UserId: c.bob, Percent: decimal.NewFromInt(40)}, {UserId: c.carol, Percent: decimal.NewFromInt(50)}}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "payer outside the group",
			req:  &api.AddExpenseRequest{GroupId: c.groupID, PayerId: outsider, Amount: 1000, SplitType: "EQUAL"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "participant outside the group",
			req: &api.AddExpenseRequest{GroupId: c.groupID, PayerId: c.alice, Amount: 1000, SplitType: "EQUAL",
				Splits: []*api.SplitInput{{UserId: c.bob}, {UserId: outsider}}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "zero amount",
			req:  &api.AddExpenseRequest{GroupId: c.groupID, PayerId: c.alice, Amount: 0, SplitType: "EQUAL"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown split type",
			req:  &api.AddExpenseRequest{GroupId: c.groupID, PayerId: c.alice, Amount: 100, SplitType: "SHARES"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown group",
			req:  &api.AddExpenseRequest{GroupId: "missing", PayerId: c.alice, Amount: 100, SplitType: "EQUAL"},
			code: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ledger.AddExpense(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, tt.code)
		})
	}

	expenses, err := c.ledger.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupId: c.groupID}))
	require.NoError(t, err)
	assert.Empty(t, expenses.Msg.Expenses, "rejected expenses must leave no trace")
	assert.True(t, c.balances(t, "").Settled)
}

func TestLedger_SettleUpRejections(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()
	outsider := createUser(t, c.testClients, "mallory")

	tests := []struct {
		name string
		req  *api.SettleUpRequest
		code connect.Code
	}{
		{"self settlement", &api.SettleUpRequest{GroupId: c.groupID, PayerId: c.bob, PayeeId: c.bob, Amount: 10}, connect.CodeInvalidArgument},
		{"zero amount", &api.SettleUpRequest{GroupId: c.groupID, PayerId: c.bob, PayeeId: c.alice}, connect.CodeInvalidArgument},
		{"negative amount", &api.SettleUpRequest{GroupId: c.groupID, PayerId: c.bob, PayeeId: c.alice, Amount: -5}, connect.CodeInvalidArgument},
		{"payee outside the group", &api.SettleUpRequest{GroupId: c.groupID, PayerId: c.bob, PayeeId: outsider, Amount: 10}, connect.CodeInvalidArgument},
		{"unknown group", &api.SettleUpRequest{GroupId: "missing", PayerId: c.bob, PayeeId: c.alice, Amount: 10}, connect.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ledger.SettleUp(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, tt.code)
		})
	}
}

func TestLedger_OverpaymentReversesDebt(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()

	_, err := c.ledger.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		GroupId: c.groupID, PayerId: c.alice, Amount: 100, SplitType: "EXACT",
		Splits: []*api.SplitInput{{UserId: c.bob, Amount: 100}},
	}))
	require.NoError(t, err)

	_, err = c.ledger.SettleUp(ctx, connect.NewRequest(&api.SettleUpRequest{
		GroupId: c.groupID, PayerId: c.bob, PayeeId: c.alice, Amount: 150,
	}))
	require.NoError(t, err)

	assert.Equal(t, []*api.Balance{balance(c.alice, c.bob, 50)}, c.balances(t, "PAIRWISE").Balances)
}

func TestLedger_DeleteExpense(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()

	added, err := c.ledger.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		GroupId: c.groupID, PayerId: c.carol, Amount: 301, SplitType: "EQUAL",
	}))
	require.NoError(t, err)
	assert.False(t, c.balances(t, "").Settled)

	_, err = c.ledger.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseId: added.Msg.Expense.Id}))
	require.NoError(t, err)
	assert.True(t, c.balances(t, "").Settled)

	_, err = c.ledger.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseId: added.Msg.Expense.Id}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestLedger_GetBalancesErrors(t *testing.T) {
	c := setupCircle(t)
	ctx := context.Background()

	_, err := c.ledger.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupId: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = c.ledger.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = c.ledger.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupId: c.groupID, Mode: "ROUND_ROBIN"}))
	requireCode(t, err, connect.CodeInvalidArgument)
}
