package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/storage"
	"github.com/mmynk/circleledger/pkg/api"
	"github.com/mmynk/circleledger/pkg/api/apiconnect"
)

// UserService implements the Connect UserService
type UserService struct {
	apiconnect.UnimplementedUserServiceHandler
	store storage.Store
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// CreateUser registers a new user. Emails are unique, compared case-insensitively.
func (s *UserService) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	slog.Info("CreateUser request received", "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name is required")
	}
	email := models.NormalizeEmail(req.Msg.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalidArgument("a valid email is required")
	}

	user := &models.User{Name: name, Email: email}
	if err := s.store.CreateUser(ctx, user); err != nil {
		slog.Error("CreateUser failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("User created", "user_id", user.ID)

	return connect.NewResponse(&api.CreateUserResponse{User: toAPIUser(user)}), nil
}

// ListUsers returns every user, oldest first.
func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	slog.Info("ListUsers request received")

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		slog.Error("ListUsers failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("ListUsers successful", "count", len(users))

	return connect.NewResponse(&api.ListUsersResponse{Users: toAPIUsers(users)}), nil
}

// DeleteUser removes a user. Users with expense or settlement history cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, req *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error) {
	slog.Info("DeleteUser request received", "user_id", req.Msg.UserId)

	if req.Msg.UserId == "" {
		return nil, invalidArgument("user_id is required")
	}

	if err := s.store.DeleteUser(ctx, req.Msg.UserId); err != nil {
		slog.Error("DeleteUser failed", "user_id", req.Msg.UserId, "error", err)
		return nil, connectError(err)
	}

	slog.Info("User deleted", "user_id", req.Msg.UserId)

	return connect.NewResponse(&api.DeleteUserResponse{}), nil
}
