// Package service implements the application services on top of the store
// and the settlement engine. Services own validation, membership rules and
// write serialization; all balance math lives in the calculator package.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// GroupService manages groups and their membership.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group. BaseCurrency defaults to USD.
func (s *GroupService) CreateGroup(ctx context.Context, name, baseCurrency string, members []models.Member) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", models.ErrInvalidGroup)
	}
	baseCurrency = strings.ToUpper(baseCurrency)
	if baseCurrency != "" && len(baseCurrency) != 3 {
		return nil, fmt.Errorf("%w: base currency must be a 3-letter code, got %q", models.ErrInvalidGroup, baseCurrency)
	}

	group := &models.Group{
		Name:         name,
		BaseCurrency: baseCurrency,
		Members:      members,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// UpdateGroup replaces a group's name and member set.
func (s *GroupService) UpdateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, err
	}
	return s.store.GetGroup(ctx, group.ID)
}

// DeleteGroup removes a group and all of its records.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// AddMembers adds members to a group, skipping ones already present.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, members []models.Member) error {
	return s.store.AddGroupMembers(ctx, groupID, members)
}
