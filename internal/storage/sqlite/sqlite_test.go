package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func createUsers(t *testing.T, store *SQLiteStore, names ...string) []string {
	t.Helper()
	ids := make([]string, len(names))
	for i, name := range names {
		u := &models.User{Name: name, Email: name + "@example.com"}
		require.NoError(t, store.CreateUser(context.Background(), u))
		ids[i] = u.ID
	}
	return ids
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and normalizes email", func(t *testing.T) {
		u := &models.User{Name: "Alice", Email: "  Alice@Example.COM "}
		require.NoError(t, store.CreateUser(ctx, u))

		assert.NotEmpty(t, u.ID)
		assert.NotZero(t, u.CreatedAt)
		assert.Equal(t, "alice@example.com", u.Email)

		got, err := store.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		err := store.CreateUser(ctx, &models.User{Name: "Alice Again", Email: "ALICE@example.com"})
		require.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("GetUser returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUser(ctx, "nonexistent-id")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListUsers returns oldest first", func(t *testing.T) {
		createUsers(t, store, "bob")
		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Alice", users[0].Name)
		assert.Equal(t, "bob", users[1].Name)
	})
}

func TestSQLiteStore_DeleteUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	group := &models.Group{Name: "Flat", Members: ids}
	require.NoError(t, store.CreateGroup(ctx, group))

	// carol is only a member: deleting her drops the membership too.
	require.NoError(t, store.DeleteUser(ctx, carol))
	members, err := store.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, store.CreateExpense(ctx, &models.Expense{
		GroupID: group.ID, PayerID: alice, Amount: 100, SplitType: models.SplitEqual,
		Splits: []models.ExpenseSplit{{UserID: bob, Amount: 50}},
	}))

	require.ErrorIs(t, store.DeleteUser(ctx, alice), storage.ErrConflict)
	require.ErrorIs(t, store.DeleteUser(ctx, bob), storage.ErrConflict)
	require.ErrorIs(t, store.DeleteUser(ctx, "ghost"), storage.ErrNotFound)

	// Once the history is gone the user can be removed.
	require.NoError(t, store.DeleteGroup(ctx, group.ID))
	require.NoError(t, store.DeleteUser(ctx, bob))
}

func TestSQLiteStore_DeleteUserWithSettlement(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "alice", "bob")

	group := &models.Group{Name: "Pair", Members: ids}
	require.NoError(t, store.CreateGroup(ctx, group))
	require.NoError(t, store.CreateSettlement(ctx, &models.Settlement{
		GroupID: group.ID, PayerID: ids[1], PayeeID: ids[0], Amount: 10,
	}))

	require.ErrorIs(t, store.DeleteUser(ctx, ids[0]), storage.ErrConflict)
	require.ErrorIs(t, store.DeleteUser(ctx, ids[1]), storage.ErrConflict)
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "carol", "alice", "bob")

	group := &models.Group{Name: "Trip", Members: ids[:2]}

	t.Run("CreateGroup defaults to pairwise mode", func(t *testing.T) {
		require.NoError(t, store.CreateGroup(ctx, group))
		assert.NotEmpty(t, group.ID)
		assert.Equal(t, models.ModePairwise, group.Mode)
	})

	t.Run("AddGroupMember keeps join order", func(t *testing.T) {
		require.NoError(t, store.AddGroupMember(ctx, group.ID, ids[2]))

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, ids, got.Members)

		members, err := store.ListMembers(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, members, 3)
		assert.Equal(t, "carol", members[0].Name)
		assert.Equal(t, "bob", members[2].Name)
	})

	t.Run("AddGroupMember rejects duplicates and unknown records", func(t *testing.T) {
		require.ErrorIs(t, store.AddGroupMember(ctx, group.ID, ids[0]), storage.ErrAlreadyExists)
		require.ErrorIs(t, store.AddGroupMember(ctx, group.ID, "ghost"), storage.ErrNotFound)
		require.ErrorIs(t, store.AddGroupMember(ctx, "no-group", ids[0]), storage.ErrNotFound)
	})

	t.Run("SetGroupMode", func(t *testing.T) {
		require.NoError(t, store.SetGroupMode(ctx, group.ID, models.ModeSimplify))
		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ModeSimplify, got.Mode)

		require.ErrorIs(t, store.SetGroupMode(ctx, "no-group", models.ModeSimplify), storage.ErrNotFound)
	})

	t.Run("ListGroups includes members", func(t *testing.T) {
		groups, err := store.ListGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, ids, groups[0].Members)
	})

	t.Run("CreateGroup with unknown member fails atomically", func(t *testing.T) {
		err := store.CreateGroup(ctx, &models.Group{Name: "Broken", Members: []string{ids[0], "ghost"}})
		require.ErrorIs(t, err, storage.ErrNotFound)

		groups, err := store.ListGroups(ctx)
		require.NoError(t, err)
		assert.Len(t, groups, 1)
	})

	t.Run("ListMembers of unknown group", func(t *testing.T) {
		_, err := store.ListMembers(ctx, "no-group")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestSQLiteStore_ExpensesAndSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	group := &models.Group{Name: "Flat", Members: ids}
	require.NoError(t, store.CreateGroup(ctx, group))

	first := &models.Expense{
		GroupID: group.ID, PayerID: alice, Amount: 900, Description: "Groceries",
		SplitType: models.SplitEqual, CreatedAt: 100,
		Splits: []models.ExpenseSplit{{UserID: bob, Amount: 300}, {UserID: carol, Amount: 300}},
	}
	second := &models.Expense{
		GroupID: group.ID, PayerID: bob, Amount: 50, Description: "Milk",
		SplitType: models.SplitExact, CreatedAt: 200,
		Splits: []models.ExpenseSplit{{UserID: alice, Amount: 50}},
	}
	require.NoError(t, store.CreateExpense(ctx, first))
	require.NoError(t, store.CreateExpense(ctx, second))
	assert.Equal(t, first.ID, first.Splits[0].ExpenseID)

	t.Run("GetExpense returns splits", func(t *testing.T) {
		got, err := store.GetExpense(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		_, err = store.GetExpense(ctx, "missing")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListExpensesWithSplits orders oldest first", func(t *testing.T) {
		expenses, err := store.ListExpensesWithSplits(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, *first, expenses[0])
		assert.Equal(t, *second, expenses[1])
	})

	t.Run("CreateExpense rolls back when a split is invalid", func(t *testing.T) {
		err := store.CreateExpense(ctx, &models.Expense{
			GroupID: group.ID, PayerID: alice, Amount: 10, SplitType: models.SplitExact,
			Splits: []models.ExpenseSplit{{UserID: bob, Amount: 5}, {UserID: "ghost", Amount: 5}},
		})
		require.Error(t, err)

		expenses, err := store.ListExpensesWithSplits(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, expenses, 2, "half-written expense must not be visible")
	})

	t.Run("Settlements are listed oldest first", func(t *testing.T) {
		require.NoError(t, store.CreateSettlement(ctx, &models.Settlement{
			GroupID: group.ID, PayerID: bob, PayeeID: alice, Amount: 300, Note: "rent", CreatedAt: 300,
		}))
		require.NoError(t, store.CreateSettlement(ctx, &models.Settlement{
			GroupID: group.ID, PayerID: carol, PayeeID: alice, Amount: 100, CreatedAt: 400,
		}))

		settlements, err := store.ListSettlements(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, settlements, 2)
		assert.Equal(t, "rent", settlements[0].Note)
		assert.Equal(t, carol, settlements[1].PayerID)
		assert.Empty(t, settlements[1].Note)
	})

	t.Run("DeleteExpense cascades splits", func(t *testing.T) {
		require.NoError(t, store.DeleteExpense(ctx, second.ID))
		require.ErrorIs(t, store.DeleteExpense(ctx, second.ID), storage.ErrNotFound)

		expenses, err := store.ListExpensesWithSplits(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Equal(t, first.ID, expenses[0].ID)
	})

	t.Run("DeleteGroup cascades history", func(t *testing.T) {
		require.NoError(t, store.DeleteGroup(ctx, group.ID))
		require.ErrorIs(t, store.DeleteGroup(ctx, group.ID), storage.ErrNotFound)

		_, err := store.ListExpensesWithSplits(ctx, group.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetExpense(ctx, first.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
