// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/hearth/internal/platform/dberr"
	"github.com/taibuivan/hearth/internal/platform/validate"
	"github.com/taibuivan/hearth/pkg/pagination"
	"github.com/taibuivan/hearth/pkg/uuid"
)

// # Service Layer

// maxNameLength bounds group names in characters.
const maxNameLength = 200

// Service orchestrates group creation and read access to memberships.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new group [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Group Management

/*
GetGroup retrieves a group by its UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Group: Hydrated group entity
  - error: ErrGroupNotFound if missing
*/
func (service *Service) GetGroup(context context.Context, id string) (*Group, error) {
	group, err := service.repo.FindGroupByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	return group, err
}

/*
CreateGroup initialises a shared group and makes the creator its admin.

Parameters:
  - context: context.Context
  - group: *Group
  - creatorID: string

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateGroup(context context.Context, group *Group, creatorID string) error {
	if err := validateGroup(group); err != nil {
		return err
	}

	group.ID = uuid.New()
	group.Type = TypeGroup
	group.OwnerID = nil

	if err := service.repo.CreateGroup(context, group, founder(group.ID, creatorID)); err != nil {
		return err
	}

	service.logger.Info("group_created",
		slog.String("group_id", group.ID),
		slog.String("creator_id", creatorID),
	)

	return nil
}

/*
EnsurePersonalGroup returns the user's personal group, creating it on first use.

Description: Safe to call on every login. A concurrent creation that loses the
unique-owner race falls back to reading the winner's row.

Parameters:
  - context: context.Context
  - userID: string
  - name: string (display name for a new group)

Returns:
  - *Group: The personal group
  - bool: true when the group was created by this call
  - error: Validation or persistence failures
*/
func (service *Service) EnsurePersonalGroup(context context.Context, userID, name string) (*Group, bool, error) {
	existing, err := service.repo.FindPersonalGroup(context, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, false, err
	}

	group := &Group{
		ID:      uuid.New(),
		Name:    name,
		Type:    TypeUser,
		OwnerID: &userID,
	}
	if err := validateGroup(group); err != nil {
		return nil, false, err
	}

	err = service.repo.CreateGroup(context, group, founder(group.ID, userID))
	if errors.Is(err, dberr.ErrConflict) {
		existing, err := service.repo.FindPersonalGroup(context, userID)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}

	service.logger.Info("personal_group_created",
		slog.String("group_id", group.ID),
		slog.String("user_id", userID),
	)

	return group, true, nil
}

// # Membership Management

/*
ListMembers returns one page of a group's memberships.

Parameters:
  - context: context.Context
  - groupID: string
  - cursor: string
  - limit: int

Returns:
  - pagination.Page[*Membership]: Members in join order
  - error: ErrGroupNotFound if the group has no members
*/
func (service *Service) ListMembers(context context.Context, groupID, cursor string, limit int) (pagination.Page[*Membership], error) {
	return service.repo.ListGroupMembers(context, groupID, cursor, limit)
}

/*
AddMember inserts a membership into an existing group.

Parameters:
  - context: context.Context
  - groupID: string
  - userID: string
  - roles: []Role

Returns:
  - *Membership: The stored membership
  - error: ErrEmptyRoleSet, ErrGroupNotFound, ErrConflict for existing members
*/
func (service *Service) AddMember(context context.Context, groupID, userID string, roles []Role) (*Membership, error) {
	set, err := NewRoleSet(roles...)
	if err != nil {
		return nil, err
	}

	if _, err := service.GetGroup(context, groupID); err != nil {
		return nil, err
	}

	membership := &Membership{GroupID: groupID, UserID: userID, Roles: set}
	if err := service.repo.AddMembership(context, membership); err != nil {
		return nil, err
	}

	service.logger.Info("member_added",
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
		slog.String("roles", set.String()),
	)

	return membership, nil
}

// # Helpers

func validateGroup(group *Group) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, group.Name).MaxLen(FieldName, group.Name, maxNameLength)
	if group.Image != nil {
		validator.URL(FieldImage, *group.Image)
	}
	return validator.Err()
}

// founder is the first membership of a new group.
func founder(groupID, userID string) *Membership {
	return &Membership{
		GroupID: groupID,
		UserID:  userID,
		Roles:   roleAdmin.With(RoleMember),
	}
}

var roleAdmin = Only(RoleAdmin)
