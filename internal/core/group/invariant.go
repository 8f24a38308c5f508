// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"

	"github.com/samber/lo"

	"github.com/taibuivan/hearth/pkg/pagination"
)

// DefaultPageSize is used when [Options.PageSize] is not positive.
const DefaultPageSize = 50

// Options carries the limits shared by the membership services.
type Options struct {
	// PageSize bounds every paginated repository read.
	PageSize int
}

func (options Options) pageSize() int {
	if options.PageSize < 1 {
		return DefaultPageSize
	}
	return options.PageSize
}

// # Membership Loading

// loadGroupMembers drains every page of a group's memberships.
// A group with no memberships surfaces as [ErrGroupNotFound].
func loadGroupMembers(context context.Context, repo Repository, groupID string, pageSize int) ([]*Membership, error) {
	members, err := pagination.Collect(context, pagination.NewIterator(groupMembersFetch(repo, groupID), pageSize))
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrGroupNotFound
	}
	return members, nil
}

func groupMembersFetch(repo Repository, groupID string) pagination.Fetch[*Membership] {
	return func(ctx context.Context, cursor string, limit int) (pagination.Page[*Membership], error) {
		return repo.ListGroupMembers(ctx, groupID, cursor, limit)
	}
}

func userMembershipsFetch(repo Repository, userID string) pagination.Fetch[*Membership] {
	return func(ctx context.Context, cursor string, limit int) (pagination.Page[*Membership], error) {
		return repo.ListUserMemberships(ctx, userID, cursor, limit)
	}
}

// # Set Helpers

// idSet indexes non-blank ids for membership tests.
func idSet(ids []string) map[string]struct{} {
	return lo.Associate(lo.Compact(ids), func(id string) (string, struct{}) {
		return id, struct{}{}
	})
}

// splitByUserIDs partitions members into those named in ids and the rest,
// each keeping repository order.
func splitByUserIDs(members []*Membership, ids map[string]struct{}) (named, rest []*Membership) {
	for _, member := range members {
		if _, ok := ids[member.UserID]; ok {
			named = append(named, member)
		} else {
			rest = append(rest, member)
		}
	}
	return named, rest
}

func userIDsOf(members []*Membership) []string {
	return lo.Map(members, func(member *Membership, _ int) string {
		return member.UserID
	})
}

// # Admin Rule

// admins returns the members carrying ADMIN.
func admins(members []*Membership) []*Membership {
	return lo.Filter(members, func(member *Membership, _ int) bool {
		return member.IsAdmin()
	})
}

func hasAdmin(members []*Membership) bool {
	return lo.SomeBy(members, func(member *Membership) bool {
		return member.IsAdmin()
	})
}

// pickReplacementAdmin chooses who inherits administration when the last admin
// leaves: the earliest remaining membership. Nil when none remain.
func pickReplacementAdmin(remaining []*Membership) *Membership {
	if len(remaining) == 0 {
		return nil
	}
	return remaining[0]
}
