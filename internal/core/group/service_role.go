// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// # Role Change

// RoleChangeService assigns a role to a set of members without ever leaving
// the group adminless.
type RoleChangeService struct {
	repo    Repository
	options Options
	logger  *slog.Logger
}

// NewRoleChangeService constructs a [RoleChangeService].
func NewRoleChangeService(repo Repository, options Options, logger *slog.Logger) *RoleChangeService {
	return &RoleChangeService{
		repo:    repo,
		options: options,
		logger:  logger,
	}
}

/*
ChangeRole replaces the role set of each named member with {role}.

Description: The whole membership of the group is loaded and the change is
decided in memory. If no admin would remain, nothing is written. Ids that are
not members of the group are ignored.

Parameters:
  - context: context.Context
  - groupID: string
  - userIDs: []string
  - role: Role

Returns:
  - []string: User ids whose membership changed, in membership order
  - error: ErrInvalidRole, ErrGroupNotFound, ErrGroupWithoutAdmins or persistence failures
*/
func (service *RoleChangeService) ChangeRole(context context.Context, groupID string, userIDs []string, role Role) ([]string, error) {
	ids := idSet(userIDs)
	if len(ids) == 0 {
		return []string{}, nil
	}

	roles, err := NewRoleSet(role)
	if err != nil {
		return nil, err
	}

	members, err := loadGroupMembers(context, service.repo, groupID, service.options.pageSize())
	if err != nil {
		return nil, err
	}

	toChange, unaffected := splitByUserIDs(members, ids)

	// Admins after the change: untouched admins, plus every changed member when promoting.
	prospective := admins(unaffected)
	if roles.Has(RoleAdmin) {
		prospective = append(prospective, toChange...)
	}
	if !roles.Has(RoleAdmin) && len(prospective) == 0 {
		service.logger.Warn("role_change_rejected",
			slog.String("group_id", groupID),
			slog.String("role", string(role)),
			slog.Int("requested", len(ids)),
		)
		return nil, ErrGroupWithoutAdmins
	}

	if len(toChange) == 0 {
		return []string{}, nil
	}

	updated := lo.Map(toChange, func(member *Membership, _ int) *Membership {
		changed := *member
		changed.Roles = roles
		return &changed
	})

	if err := service.repo.SaveMemberships(context, updated); err != nil {
		return nil, err
	}

	changed := userIDsOf(updated)
	service.logger.Info("member_roles_changed",
		slog.String("group_id", groupID),
		slog.String("role", string(role)),
		slog.Any("user_ids", changed),
	)

	return changed, nil
}
