package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/circleledger/pkg/api"
)

// UserServiceName is the fully-qualified name of the UserService service.
const UserServiceName = "circleledger.v1.UserService"

// Procedure paths of UserService.
const (
	UserServiceCreateUserProcedure = "/circleledger.v1.UserService/CreateUser"
	UserServiceListUsersProcedure  = "/circleledger.v1.UserService/ListUsers"
	UserServiceDeleteUserProcedure = "/circleledger.v1.UserService/DeleteUser"
)

// UserServiceHandler is implemented by the UserService server.
// UserService manages the people who can join groups.
type UserServiceHandler interface {
	CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	DeleteUser(context.Context, *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error)
}

// NewUserServiceHandler builds an HTTP handler serving every UserService procedure.
// It returns the path prefix to mount the handler on.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	createUserHandler := connect.NewUnaryHandler(UserServiceCreateUserProcedure, svc.CreateUser, opts...)
	listUsersHandler := connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...)
	deleteUserHandler := connect.NewUnaryHandler(UserServiceDeleteUserProcedure, svc.DeleteUser, opts...)
	return "/" + UserServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case UserServiceCreateUserProcedure:
			createUserHandler.ServeHTTP(w, r)
		case UserServiceListUsersProcedure:
			listUsersHandler.ServeHTTP(w, r)
		case UserServiceDeleteUserProcedure:
			deleteUserHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedUserServiceHandler returns CodeUnimplemented from every method.
type UnimplementedUserServiceHandler struct{}

func (UnimplementedUserServiceHandler) CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circleledger.v1.UserService.CreateUser is not implemented"))
}

func (UnimplementedUserServiceHandler) ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circleledger.v1.UserService.ListUsers is not implemented"))
}

func (UnimplementedUserServiceHandler) DeleteUser(context.Context, *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circleledger.v1.UserService.DeleteUser is not implemented"))
}

// UserServiceClient is a client for the circleledger.v1.UserService service.
type UserServiceClient interface {
	CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	DeleteUser(context.Context, *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error)
}

// NewUserServiceClient constructs a client for the UserService served at baseURL,
// e.g. http://localhost:8080.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &userServiceClient{
		createUser: connect.NewClient[api.CreateUserRequest, api.CreateUserResponse](httpClient, baseURL+UserServiceCreateUserProcedure, opts...),
		listUsers:  connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, opts...),
		deleteUser: connect.NewClient[api.DeleteUserRequest, api.DeleteUserResponse](httpClient, baseURL+UserServiceDeleteUserProcedure, opts...),
	}
}

type userServiceClient struct {
	createUser *connect.Client[api.CreateUserRequest, api.CreateUserResponse]
	listUsers  *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	deleteUser *connect.Client[api.DeleteUserRequest, api.DeleteUserResponse]
}

func (c *userServiceClient) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	return c.createUser.CallUnary(ctx, req)
}

func (c *userServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *userServiceClient) DeleteUser(ctx context.Context, req *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error) {
	return c.deleteUser.CallUnary(ctx, req)
}
