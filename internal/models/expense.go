package models

import (
	"fmt"
	"strings"

	"github.com/mmynk/circleledger/internal/money"
)

// SplitType is the policy used to divide an expense among participants.
type SplitType string

const (
	SplitEqual   SplitType = "EQUAL"
	SplitExact   SplitType = "EXACT"
	SplitPercent SplitType = "PERCENT"
)

// ParseSplitType parses a split type name case-insensitively.
func ParseSplitType(s string) (SplitType, error) {
	switch SplitType(strings.ToUpper(strings.TrimSpace(s))) {
	case SplitEqual:
		return SplitEqual, nil
	case SplitExact:
		return SplitExact, nil
	case SplitPercent:
		return SplitPercent, nil
	}
	return "", fmt.Errorf("unknown split type %q", s)
}

// Expense represents one payment made by a group member on behalf of others.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid the full amount.
	PayerID string

	// Amount is the total paid.
	Amount money.Amount

	// Description is a free-form label (e.g., "Dinner").
	Description string

	// SplitType records which policy produced Splits.
	SplitType SplitType

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// Splits are the debts toward this expense. The payer never appears here.
	Splits []ExpenseSplit
}

// ExpenseSplit is the amount one user owes toward an expense.
type ExpenseSplit struct {
	ExpenseID string
	UserID    string
	Amount    money.Amount
}
