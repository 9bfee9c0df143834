package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/circleledger/internal/ledger"
	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/storage/sqlite"
	"github.com/mmynk/circleledger/pkg/api"
	"github.com/mmynk/circleledger/pkg/api/apiconnect"
)

type testClients struct {
	users  apiconnect.UserServiceClient
	groups apiconnect.GroupServiceClient
	ledger apiconnect.LedgerServiceClient
}

// setupTestServer serves all three services over httptest, backed by a temp-file SQLite store.
func setupTestServer(t *testing.T) testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")

	engine := ledger.New(store)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewUserServiceHandler(NewUserService(store)))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, engine, models.ModePairwise)))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(store, engine)))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return testClients{
		users:  apiconnect.NewUserServiceClient(http.DefaultClient, server.URL),
		groups: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
	}
}

func createUser(t *testing.T, c testClients, name string) string {
	t.Helper()
	resp, err := c.users.CreateUser(context.Background(), connect.NewRequest(&api.CreateUserRequest{
		Name:  name,
		Email: name + "@example.com",
	}))
	require.NoError(t, err, "CreateUser(%s)", name)
	return resp.Msg.User.Id
}

func createGroup(t *testing.T, c testClients, name string, members ...string) string {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    name,
		Members: members,
	}))
	require.NoError(t, err, "CreateGroup(%s)", name)
	return resp.Msg.Group.Id
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "unexpected error: %v", err)
}
