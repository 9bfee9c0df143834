package models

import (
	"fmt"
	"strings"
)

// SettlementMode selects how a group's outstanding debts are presented.
type SettlementMode string

const (
	// ModePairwise nets debts within each pair of users and keeps who-owes-whom intact.
	ModePairwise SettlementMode = "PAIRWISE"
	// ModeSimplify collapses all debts to net positions and emits a greedy minimal transfer set.
	ModeSimplify SettlementMode = "SIMPLIFY"
)

// ParseSettlementMode parses a mode name case-insensitively.
func ParseSettlementMode(s string) (SettlementMode, error) {
	switch SettlementMode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModePairwise:
		return ModePairwise, nil
	case ModeSimplify:
		return ModeSimplify, nil
	}
	return "", fmt.Errorf("unknown settlement mode %q", s)
}

// Group represents a circle of users sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Mode selects the settlement policy used for the group's balances.
	Mode SettlementMode

	// Members is the list of member user IDs in join order.
	// Join order is the default participant order for EQUAL splits.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
