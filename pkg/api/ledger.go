// Package api defines the circleledger.v1 wire messages.
//
// Amounts are integer minor units (cents). Percentages are decimals encoded as JSON
// strings, e.g. "33.33".
package api

import "github.com/shopspring/decimal"

type User struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

type Group struct {
	Id        string   `json:"id"`
	Name      string   `json:"name"`
	Mode      string   `json:"mode"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

// SplitInput is one participant of a split request. Amount is read for EXACT splits,
// Percent for PERCENT splits; EQUAL splits only use UserId.
type SplitInput struct {
	UserId  string          `json:"userId"`
	Amount  int64           `json:"amount,omitempty"`
	Percent decimal.Decimal `json:"percent"`
}

type Share struct {
	UserId string `json:"userId"`
	Amount int64  `json:"amount"`
}

type ExpenseSplit struct {
	UserId string `json:"userId"`
	Amount int64  `json:"amount"`
}

type Expense struct {
	Id          string          `json:"id"`
	GroupId     string          `json:"groupId"`
	PayerId     string          `json:"payerId"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	SplitType   string          `json:"splitType"`
	CreatedAt   int64           `json:"createdAt"`
	Splits      []*ExpenseSplit `json:"splits"`
}

type Settlement struct {
	Id        string `json:"id"`
	GroupId   string `json:"groupId"`
	PayerId   string `json:"payerId"`
	PayeeId   string `json:"payeeId"`
	Amount    int64  `json:"amount"`
	Note      string `json:"note,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Balance is an outstanding debt: From owes To Amount.
type Balance struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Position summarizes one member: what they paid for others, what they owe others,
// and the net (positive means the member is owed money).
type Position struct {
	UserId string `json:"userId"`
	Paid   int64  `json:"paid"`
	Owed   int64  `json:"owed"`
	Net    int64  `json:"net"`
}

// UserService

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateUserResponse struct {
	User *User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

type DeleteUserRequest struct {
	UserId string `json:"userId"`
}

type DeleteUserResponse struct{}

// GroupService

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
	// Mode defaults to PAIRWISE when empty.
	Mode string `json:"mode,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type AddMemberRequest struct {
	GroupId string `json:"groupId"`
	UserId  string `json:"userId"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type ListMembersRequest struct {
	GroupId string `json:"groupId"`
}

type ListMembersResponse struct {
	Members []*User `json:"members"`
}

type SetModeRequest struct {
	GroupId string `json:"groupId"`
	Mode    string `json:"mode"`
}

type SetModeResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupId string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// LedgerService

type PreviewSplitRequest struct {
	GroupId   string        `json:"groupId"`
	PayerId   string        `json:"payerId"`
	Amount    int64         `json:"amount"`
	SplitType string        `json:"splitType"`
	Splits    []*SplitInput `json:"splits"`
}

type PreviewSplitResponse struct {
	Shares []*Share `json:"shares"`
	// PayerShare is what the payer bears of their own expense; zero if they did not take part.
	PayerShare int64 `json:"payerShare"`
}

type AddExpenseRequest struct {
	GroupId     string        `json:"groupId"`
	PayerId     string        `json:"payerId"`
	Amount      int64         `json:"amount"`
	Description string        `json:"description"`
	SplitType   string        `json:"splitType"`
	Splits      []*SplitInput `json:"splits"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
	// Shares includes the payer's own share, which is not persisted as a split.
	Shares []*Share `json:"shares"`
}

type ListExpensesRequest struct {
	GroupId string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type SettleUpRequest struct {
	GroupId string `json:"groupId"`
	PayerId string `json:"payerId"`
	PayeeId string `json:"payeeId"`
	Amount  int64  `json:"amount"`
	Note    string `json:"note,omitempty"`
}

type SettleUpResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupId string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type GetBalancesRequest struct {
	GroupId string `json:"groupId"`
	// Mode overrides the group's settlement mode when set.
	Mode string `json:"mode,omitempty"`
}

type GetBalancesResponse struct {
	GroupId   string      `json:"groupId"`
	Mode      string      `json:"mode"`
	Balances  []*Balance  `json:"balances"`
	Positions []*Position `json:"positions"`
	Settled   bool        `json:"settled"`
}
