// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/circleledger/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique record is created twice.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict is returned when a change would break referential integrity.
	ErrConflict = errors.New("conflict")
)

// Store defines the record store behind the ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer. It satisfies ledger.Source.
type Store interface {
	// CreateUser persists a new user. user.ID and user.CreatedAt are populated by the store.
	// Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// ListUsers returns every user, oldest first.
	ListUsers(ctx context.Context) ([]models.User, error)

	// DeleteUser removes a user and their memberships.
	// Returns ErrConflict if the user appears in any expense, split, or settlement.
	DeleteUser(ctx context.Context, userID string) error

	// CreateGroup persists a new group together with its initial members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns every group, newest first.
	ListGroups(ctx context.Context) ([]models.Group, error)

	// SetGroupMode changes the settlement mode of a group.
	SetGroupMode(ctx context.Context, groupID string, mode models.SettlementMode) error

	// AddGroupMember appends a user to a group's membership.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// ListMembers returns a group's members in join order.
	ListMembers(ctx context.Context, groupID string) ([]models.User, error)

	// DeleteGroup removes a group and all of its history.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense header and its splits atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesWithSplits returns a group's expenses, oldest first, each with all splits.
	ListExpensesWithSplits(ctx context.Context, groupID string) ([]models.Expense, error)

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement appends a settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements returns a group's settlements, oldest first.
	ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error)

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
