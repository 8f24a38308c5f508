// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// # Member Removal

// MemberRemovalService removes members from a group. It refuses removals that
// would empty the group or strip it of every admin, and never promotes.
type MemberRemovalService struct {
	repo    Repository
	options Options
	logger  *slog.Logger
}

// NewMemberRemovalService constructs a [MemberRemovalService].
func NewMemberRemovalService(repo Repository, options Options, logger *slog.Logger) *MemberRemovalService {
	return &MemberRemovalService{
		repo:    repo,
		options: options,
		logger:  logger,
	}
}

/*
RemoveMembers deletes the memberships of the named users from a group.

Description: When a removal would both empty the group and remove every admin,
[ErrCannotEmptyGroup] is reported. Ids that are not members are ignored; if
none match, storage is left untouched.

Parameters:
  - context: context.Context
  - groupID: string
  - userIDs: []string

Returns:
  - []string: User ids actually removed
  - error: ErrCannotEmptyGroup, ErrGroupWithoutAdmins or persistence failures
*/
func (service *MemberRemovalService) RemoveMembers(context context.Context, groupID string, userIDs []string) ([]string, error) {
	ids := lo.Uniq(lo.Compact(userIDs))
	if len(ids) == 0 {
		return []string{}, nil
	}

	matched, err := service.repo.FindGroupMembersByUserIDs(context, groupID, ids)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return []string{}, nil
	}

	total, err := service.repo.CountGroupMembers(context, groupID)
	if err != nil {
		return nil, err
	}
	if len(matched) >= total {
		service.reject(groupID, "would_empty_group", len(matched))
		return nil, ErrCannotEmptyGroup
	}

	currentAdmins, err := service.repo.FindGroupMembersByRole(context, groupID, RoleAdmin)
	if err != nil {
		return nil, err
	}

	removing := idSet(userIDsOf(matched))
	allAdminsRemoved := lo.EveryBy(currentAdmins, func(admin *Membership) bool {
		_, ok := removing[admin.UserID]
		return ok
	})
	if allAdminsRemoved {
		service.reject(groupID, "would_remove_all_admins", len(matched))
		return nil, ErrGroupWithoutAdmins
	}

	if err := service.repo.RemoveMemberships(context, matched); err != nil {
		return nil, err
	}

	removed := userIDsOf(matched)
	service.logger.Info("members_removed",
		slog.String("group_id", groupID),
		slog.Any("user_ids", removed),
	)

	return removed, nil
}

func (service *MemberRemovalService) reject(groupID, reason string, matched int) {
	service.logger.Warn("member_removal_rejected",
		slog.String("group_id", groupID),
		slog.String("reason", reason),
		slog.Int("matched", matched),
	)
}
