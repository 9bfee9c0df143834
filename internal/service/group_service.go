package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/circleledger/internal/calculator"
	"github.com/mmynk/circleledger/internal/ledger"
	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/storage"
	"github.com/mmynk/circleledger/pkg/api"
	"github.com/mmynk/circleledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store       storage.Store
	engine      *ledger.Engine
	defaultMode models.SettlementMode
}

// NewGroupService creates a new GroupService. New groups without an explicit mode
// get defaultMode.
func NewGroupService(store storage.Store, engine *ledger.Engine, defaultMode models.SettlementMode) *GroupService {
	if defaultMode == "" {
		defaultMode = models.ModePairwise
	}
	return &GroupService{store: store, engine: engine, defaultMode: defaultMode}
}

// parseMode resolves a requested mode name, falling back when it is empty.
func parseMode(s string, fallback models.SettlementMode) (models.SettlementMode, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	mode, err := models.ParseSettlementMode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", calculator.ErrUnknownPolicy, err)
	}
	return mode, nil
}

// CreateGroup creates a new group with its initial members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
		"mode", req.Msg.Mode,
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name is required")
	}
	mode, err := parseMode(req.Msg.Mode, s.defaultMode)
	if err != nil {
		return nil, connectError(err)
	}

	group := &models.Group{
		Name:    name,
		Mode:    mode,
		Members: req.Msg.Members,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	// Re-read so duplicate member IDs in the request collapse the way storage stored them.
	created, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to fetch created group", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group created", "group_id", created.ID, "mode", created.Mode)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(created)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	apiGroups := make([]*api.Group, len(groups))
	for i := range groups {
		apiGroups[i] = toAPIGroup(&groups[i])
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: apiGroups}), nil
}

// AddMember appends a user to a group. Members keep their join order.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupId, "user_id", req.Msg.UserId)

	if req.Msg.GroupId == "" || req.Msg.UserId == "" {
		return nil, invalidArgument("group_id and user_id are required")
	}

	if err := s.store.AddGroupMember(ctx, req.Msg.GroupId, req.Msg.UserId); err != nil {
		slog.Error("AddMember failed", "group_id", req.Msg.GroupId, "user_id", req.Msg.UserId, "error", err)
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("Failed to fetch updated group", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Member added", "group_id", group.ID, "members_count", len(group.Members))

	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

// ListMembers returns the users of a group in join order.
func (s *GroupService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	slog.Info("ListMembers request received", "group_id", req.Msg.GroupId)

	members, err := s.store.ListMembers(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("ListMembers failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.ListMembersResponse{Members: toAPIUsers(members)}), nil
}

// SetMode changes the group's default settlement mode. History is untouched; balances
// are recomputed under the new mode on the next read.
func (s *GroupService) SetMode(ctx context.Context, req *connect.Request[api.SetModeRequest]) (*connect.Response[api.SetModeResponse], error) {
	slog.Info("SetMode request received", "group_id", req.Msg.GroupId, "mode", req.Msg.Mode)

	if strings.TrimSpace(req.Msg.Mode) == "" {
		return nil, invalidArgument("mode is required")
	}
	mode, err := parseMode(req.Msg.Mode, "")
	if err != nil {
		return nil, connectError(err)
	}

	if err := s.store.SetGroupMode(ctx, req.Msg.GroupId, mode); err != nil {
		slog.Error("SetMode failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("Failed to fetch updated group", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group mode updated", "group_id", group.ID, "mode", group.Mode)

	return connect.NewResponse(&api.SetModeResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group and its history. Groups with outstanding balances
// cannot be deleted.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	groupID := req.Msg.GroupId
	slog.Info("DeleteGroup request received", "group_id", groupID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Warn("DeleteGroup failed - group lookup", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}

	// The group counts as settled under its own mode, the same view GetBalances shows by default.
	result, err := s.engine.ComputeBalances(ctx, groupID, group.Mode)
	if err != nil {
		slog.Error("DeleteGroup failed - could not compute balances", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}
	if !result.Settled() {
		err := fmt.Errorf("group %s has %d outstanding %s balances: %w", groupID, len(result.Balances), group.Mode, storage.ErrConflict)
		slog.Warn("DeleteGroup rejected", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group deleted", "group_id", groupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
